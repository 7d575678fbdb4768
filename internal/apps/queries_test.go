package apps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"graphgate/pkg/store"
)

func TestApplicationListQueryIsCapped(t *testing.T) {
	assert.Equal(t, 100, ApplicationListQuery().Limit)
}

func TestBoundedLookupsDetectAmbiguity(t *testing.T) {
	// Cap at 2 so a second row is observable without an unbounded scan.
	assert.Equal(t, 2, ApplicationByKeyQuery("k").Limit)
	assert.Equal(t, 2, TokenByKeyQuery("k").Limit)
	assert.Equal(t, 2, TokenByNameQuery("k", "ci").Limit)
	assert.Equal(t, 2, ConfigReadQuery("k").Limit)
	assert.Equal(t, 2, ExportReadQuery("k").Limit)
}

func TestConfigUpsertDeletesBeforeInserting(t *testing.T) {
	q := ConfigUpsert("k", "host", "bucket", "daily")

	assert.Len(t, q.Delete, 3)
	for _, pat := range q.Delete {
		_, isVar := pat.Object.(store.Var)
		assert.True(t, isVar, "delete templates must wildcard existing values")
	}
	assert.Contains(t, q.Insert, store.Pattern{Subject: varApp, Predicate: HasS3Host, Object: store.Literal("host")})
	assert.Contains(t, q.Insert, store.Pattern{Subject: varApp, Predicate: HasS3BucketID, Object: store.Literal("bucket")})
	assert.Contains(t, q.Insert, store.Pattern{Subject: varApp, Predicate: HasExportFrequency, Object: store.Literal("daily")})
}

func TestTokenFactsLinkBothDirections(t *testing.T) {
	app := Application{Node: NodeForKey("appkey"), Key: "appkey", Label: "Acme", Persistent: true}
	tok := Token{
		Node:        NodeForKey("nodeid"),
		Key:         "tokenkey",
		Label:       "ci",
		Active:      true,
		IssuedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Application: app,
	}
	facts := TokenFacts(tok)

	assert.Contains(t, facts, store.Triple{Subject: tok.Node, Predicate: OfApplication, Object: app.Node})
	assert.Contains(t, facts, store.Triple{Subject: app.Node, Predicate: HasAPIKey, Object: tok.Node})
	assert.Contains(t, facts, store.Triple{Subject: tok.Node, Predicate: HasIssueDate, Object: store.Literal("2024-05-01T12:00:00Z")})
	assert.Contains(t, facts, store.Triple{Subject: tok.Node, Predicate: IsActive, Object: store.Literal("true")})
}

func TestRevokeTokenModifyFlipsActiveFlag(t *testing.T) {
	q := RevokeTokenModify("appkey", "ci")

	assert.Equal(t, []store.Pattern{
		{Subject: varToken, Predicate: IsActive, Object: varTokenActive},
	}, q.Delete)
	assert.Equal(t, []store.Pattern{
		{Subject: varToken, Predicate: IsActive, Object: store.Bool(false)},
	}, q.Insert)
}
