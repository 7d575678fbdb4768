// Package apps holds the application (tenant) and API token domain: creation,
// token issuance and revocation, per-application configuration and exports.
// Every application partitions the shared graph; a token can only reach data
// that resolves through its owning application.
package apps

import (
	"time"

	"graphgate/pkg/store"
)

// Namespace is the local vocabulary and node namespace.
const Namespace = "urn:graphgate:apps:"

// RDFType is the standard rdf:type predicate.
const RDFType = store.IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")

// Vocabulary: applications and tokens are typed nodes with the predicates below.
var (
	ApplicationType = store.IRI(Namespace + "Application")
	TokenType       = store.IRI(Namespace + "ApplicationToken")

	HasKey             = store.IRI(Namespace + "has-key")
	HasLabel           = store.IRI(Namespace + "has-label")
	IsPersistent       = store.IRI(Namespace + "is-persistent")
	HasS3Host          = store.IRI(Namespace + "has-s3-host")
	HasS3BucketID      = store.IRI(Namespace + "has-s3-bucket-id")
	HasExportFrequency = store.IRI(Namespace + "has-export-frequency")
	HasAPIKey          = store.IRI(Namespace + "has-api-key")
	HasIssueDate       = store.IRI(Namespace + "has-issue-date")
	IsActive           = store.IRI(Namespace + "is-active")
	OfApplication      = store.IRI(Namespace + "of-application")
)

// Application is one tenant of the shared store. Key is the only handle
// presented externally; it is immutable and unique.
type Application struct {
	Node       store.IRI
	Key        string
	Label      string
	Persistent bool
}

// Token is a revocable bearer credential owned by exactly one application.
type Token struct {
	Node        store.IRI
	Key         string
	Label       string
	Active      bool
	IssuedAt    time.Time
	Application Application
}

// Config is the export configuration attached to an application.
type Config struct {
	Label           string
	Persistent      bool
	S3Host          string
	S3BucketID      string
	ExportFrequency string
}

// ExportInfo locates an application's export in the configured sink.
type ExportInfo struct {
	S3Host     string
	S3BucketID string
	S3ObjectID string
}

// NodeForKey derives the node reference for a freshly generated key.
func NodeForKey(key string) store.IRI {
	return store.IRI(Namespace + key)
}
