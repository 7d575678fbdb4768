// Package export is the pluggable sink receiving application export payloads.
package export

import "context"

// Sink stores a payload under key in the given bucket at the given host.
// Retry and backoff policy is the implementation's business.
type Sink interface {
	Put(ctx context.Context, host, bucket, key string, payload []byte) error
}
