package apps

import (
	"graphgate/pkg/store"
)

// Query construction is pure: domain parameters in, store descriptors out.
// Every bounded lookup caps its result set at 2 so "more than one match" is
// detectable without scanning an unbounded stream.

// Output variables shared between queries and the row mappers in service.go.
const (
	varApp           = store.Var("app")
	varAppKey        = store.Var("appKey")
	varAppLabel      = store.Var("appLabel")
	varAppPersistent = store.Var("appPersistent")

	varToken       = store.Var("token")
	varTokenKey    = store.Var("tokenKey")
	varTokenLabel  = store.Var("tokenLabel")
	varTokenIssued = store.Var("tokenIssued")
	varTokenActive = store.Var("tokenActive")

	varS3Host    = store.Var("s3Host")
	varS3Bucket  = store.Var("s3Bucket")
	varFrequency = store.Var("exportFrequency")
)

// listLimit is the pagination ceiling for application listings. Deliberate
// bound; callers needing more page upstream.
const listLimit = 100

// ApplicationByKeyQuery matches the application with the given key, label and
// persistence flag bound as outputs.
func ApplicationByKeyQuery(key string) store.SelectQuery {
	return store.SelectQuery{
		Where: []store.Pattern{
			{Subject: varApp, Predicate: RDFType, Object: ApplicationType},
			{Subject: varApp, Predicate: HasKey, Object: store.Literal(key)},
			{Subject: varApp, Predicate: HasLabel, Object: varAppLabel},
			{Subject: varApp, Predicate: IsPersistent, Object: varAppPersistent},
		},
		Limit: 2,
	}
}

// ApplicationListQuery matches all applications, capped at the listing ceiling.
func ApplicationListQuery() store.SelectQuery {
	return store.SelectQuery{
		Where: []store.Pattern{
			{Subject: varApp, Predicate: RDFType, Object: ApplicationType},
			{Subject: varApp, Predicate: HasKey, Object: varAppKey},
			{Subject: varApp, Predicate: HasLabel, Object: varAppLabel},
			{Subject: varApp, Predicate: IsPersistent, Object: varAppPersistent},
		},
		Limit: listLimit,
	}
}

// TokenByKeyQuery joins a token (by key) to its owning application.
func TokenByKeyQuery(key string) store.SelectQuery {
	return store.SelectQuery{
		Where: append(
			[]store.Pattern{
				{Subject: varToken, Predicate: HasKey, Object: store.Literal(key)},
			},
			tokenJoinPatterns(varAppKey)...,
		),
		Limit: 2,
	}
}

// TokensForApplicationQuery matches every token of one application, token key
// projected as output. Listings are zero-or-many; no cap.
func TokensForApplicationQuery(appKey string) store.SelectQuery {
	return store.SelectQuery{
		Where: append(
			[]store.Pattern{
				{Subject: varToken, Predicate: HasKey, Object: varTokenKey},
			},
			tokenJoinPatterns(store.Literal(appKey))...,
		),
	}
}

// TokenByNameQuery matches one application's token by its label.
func TokenByNameQuery(appKey, name string) store.SelectQuery {
	return store.SelectQuery{
		Where: []store.Pattern{
			{Subject: varToken, Predicate: HasKey, Object: varTokenKey},
			{Subject: varToken, Predicate: HasLabel, Object: store.Literal(name)},
			{Subject: varToken, Predicate: IsActive, Object: varTokenActive},
			{Subject: varToken, Predicate: OfApplication, Object: varApp},
			{Subject: varApp, Predicate: HasKey, Object: store.Literal(appKey)},
		},
		Limit: 2,
	}
}

// tokenJoinPatterns is the shared token-to-application join. appKey is either
// a literal (fixed application) or a var (projected).
func tokenJoinPatterns(appKey store.Elem) []store.Pattern {
	return []store.Pattern{
		{Subject: varToken, Predicate: HasLabel, Object: varTokenLabel},
		{Subject: varToken, Predicate: HasIssueDate, Object: varTokenIssued},
		{Subject: varToken, Predicate: IsActive, Object: varTokenActive},
		{Subject: varToken, Predicate: OfApplication, Object: varApp},
		{Subject: varApp, Predicate: HasKey, Object: appKey},
		{Subject: varApp, Predicate: HasLabel, Object: varAppLabel},
		{Subject: varApp, Predicate: IsPersistent, Object: varAppPersistent},
	}
}

// ConfigUpsert overwrites the export configuration of an application as one
// delete-then-insert delta. The gateway executes it as a single call, but if
// the underlying store is not atomic a crash mid-delta can leave stale or
// missing configuration; that failure mode is accepted, not masked.
func ConfigUpsert(appKey, s3Host, s3BucketID, exportFrequency string) store.ModifyQuery {
	return store.ModifyQuery{
		Where: []store.Pattern{
			{Subject: varApp, Predicate: RDFType, Object: ApplicationType},
			{Subject: varApp, Predicate: HasKey, Object: store.Literal(appKey)},
		},
		Delete: []store.Pattern{
			{Subject: varApp, Predicate: HasS3Host, Object: varS3Host},
			{Subject: varApp, Predicate: HasS3BucketID, Object: varS3Bucket},
			{Subject: varApp, Predicate: HasExportFrequency, Object: varFrequency},
		},
		Insert: []store.Pattern{
			{Subject: varApp, Predicate: HasS3Host, Object: store.Literal(s3Host)},
			{Subject: varApp, Predicate: HasS3BucketID, Object: store.Literal(s3BucketID)},
			{Subject: varApp, Predicate: HasExportFrequency, Object: store.Literal(exportFrequency)},
		},
	}
}

// RevokeTokenModify flips the token's active flag to false. Re-running it on
// an already revoked token deletes and reinserts "false", so revocation is
// idempotent.
func RevokeTokenModify(appKey, name string) store.ModifyQuery {
	return store.ModifyQuery{
		Where: []store.Pattern{
			{Subject: varToken, Predicate: HasLabel, Object: store.Literal(name)},
			{Subject: varToken, Predicate: OfApplication, Object: varApp},
			{Subject: varApp, Predicate: HasKey, Object: store.Literal(appKey)},
		},
		Delete: []store.Pattern{
			{Subject: varToken, Predicate: IsActive, Object: varTokenActive},
		},
		Insert: []store.Pattern{
			{Subject: varToken, Predicate: IsActive, Object: store.Bool(false)},
		},
	}
}

// ConfigReadQuery projects an application together with its full export
// configuration.
func ConfigReadQuery(appKey string) store.SelectQuery {
	return store.SelectQuery{
		Where: []store.Pattern{
			{Subject: varApp, Predicate: RDFType, Object: ApplicationType},
			{Subject: varApp, Predicate: HasKey, Object: store.Literal(appKey)},
			{Subject: varApp, Predicate: HasLabel, Object: varAppLabel},
			{Subject: varApp, Predicate: IsPersistent, Object: varAppPersistent},
			{Subject: varApp, Predicate: HasS3Host, Object: varS3Host},
			{Subject: varApp, Predicate: HasS3BucketID, Object: varS3Bucket},
			{Subject: varApp, Predicate: HasExportFrequency, Object: varFrequency},
		},
		Limit: 2,
	}
}

// ExportReadQuery projects what an export hand-off needs: label plus sink
// host and bucket.
func ExportReadQuery(appKey string) store.SelectQuery {
	return store.SelectQuery{
		Where: []store.Pattern{
			{Subject: varApp, Predicate: RDFType, Object: ApplicationType},
			{Subject: varApp, Predicate: HasKey, Object: store.Literal(appKey)},
			{Subject: varApp, Predicate: HasLabel, Object: varAppLabel},
			{Subject: varApp, Predicate: IsPersistent, Object: varAppPersistent},
			{Subject: varApp, Predicate: HasS3Host, Object: varS3Host},
			{Subject: varApp, Predicate: HasS3BucketID, Object: varS3Bucket},
		},
		Limit: 2,
	}
}

// ApplicationFacts assembles the type assertion and attribute triples for a
// new application.
func ApplicationFacts(app Application) []store.Triple {
	return []store.Triple{
		{Subject: app.Node, Predicate: RDFType, Object: ApplicationType},
		{Subject: app.Node, Predicate: HasKey, Object: store.Literal(app.Key)},
		{Subject: app.Node, Predicate: HasLabel, Object: store.Literal(app.Label)},
		{Subject: app.Node, Predicate: IsPersistent, Object: store.Bool(app.Persistent)},
	}
}

// TokenFacts assembles a new token's triples: type, attributes, the owning
// link and the back-link from the application.
func TokenFacts(t Token) []store.Triple {
	return []store.Triple{
		{Subject: t.Node, Predicate: RDFType, Object: TokenType},
		{Subject: t.Node, Predicate: HasKey, Object: store.Literal(t.Key)},
		{Subject: t.Node, Predicate: HasLabel, Object: store.Literal(t.Label)},
		{Subject: t.Node, Predicate: HasIssueDate, Object: store.Timestamp(t.IssuedAt)},
		{Subject: t.Node, Predicate: IsActive, Object: store.Bool(t.Active)},
		{Subject: t.Node, Predicate: OfApplication, Object: t.Application.Node},
		{Subject: t.Application.Node, Predicate: HasAPIKey, Object: t.Node},
	}
}
