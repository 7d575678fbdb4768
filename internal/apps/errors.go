package apps

import (
	"errors"
	"fmt"
)

// ErrDuplicateRecords signals that a unique-key lookup returned more than one
// row. This is a data-integrity violation in the store; it is never retried.
var ErrDuplicateRecords = errors.New("duplicate records for unique lookup")

// UnknownApiKeyError reports a token lookup that found nothing.
type UnknownApiKeyError struct {
	Key string
}

func (e *UnknownApiKeyError) Error() string {
	return fmt.Sprintf("unknown api key %q", e.Key)
}

// RevokedApiKeyError reports a token that exists but has been revoked.
// Distinguished from UnknownApiKeyError so audits can tell a stale credential
// from a fabricated one.
type RevokedApiKeyError struct {
	Key string
}

func (e *RevokedApiKeyError) Error() string {
	return fmt.Sprintf("revoked api key %q used", e.Key)
}

// UnknownApplicationError reports an application lookup that found nothing.
type UnknownApplicationError struct {
	Key string
}

func (e *UnknownApplicationError) Error() string {
	return fmt.Sprintf("unknown application %q", e.Key)
}
