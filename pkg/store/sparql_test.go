package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSelect(t *testing.T) {
	q := SelectQuery{
		Where: []Pattern{
			{Subject: Var("a"), Predicate: IRI(ns + "key"), Object: Literal("k1")},
			{Subject: Var("a"), Predicate: IRI(ns + "label"), Object: Var("l")},
		},
		Limit: 2,
	}
	assert.Equal(t,
		`SELECT ?a ?l WHERE { ?a <urn:test:key> "k1" . ?a <urn:test:label> ?l . } LIMIT 2`,
		RenderSelect(q))
}

func TestRenderSelectNoVars(t *testing.T) {
	q := SelectQuery{
		Where: []Pattern{{Subject: IRI(ns + "a"), Predicate: IRI(ns + "p"), Object: Literal("v")}},
	}
	assert.Equal(t, `SELECT * WHERE { <urn:test:a> <urn:test:p> "v" . }`, RenderSelect(q))
}

func TestRenderModifyWrapsWildcardDeletesInOptional(t *testing.T) {
	q := ModifyQuery{
		Where: []Pattern{
			{Subject: Var("a"), Predicate: IRI(ns + "key"), Object: Literal("k1")},
		},
		Delete: []Pattern{
			{Subject: Var("a"), Predicate: IRI(ns + "host"), Object: Var("h")},
		},
		Insert: []Pattern{
			{Subject: Var("a"), Predicate: IRI(ns + "host"), Object: Literal("new")},
		},
	}
	out := RenderModify(q)
	assert.Contains(t, out, `DELETE { ?a <urn:test:host> ?h . }`)
	assert.Contains(t, out, `INSERT { ?a <urn:test:host> "new" . }`)
	assert.Contains(t, out, `OPTIONAL { ?a <urn:test:host> ?h . }`)
}

func TestRenderInsertDataEscapesLiterals(t *testing.T) {
	out := RenderInsertData([]Triple{
		{IRI(ns + "a"), IRI(ns + "label"), Literal(`say "hi"` + "\n")},
	})
	assert.Equal(t, `INSERT DATA { <urn:test:a> <urn:test:label> "say \"hi\"\n" . }`, out)
}

func TestParseNTriples(t *testing.T) {
	doc := `<urn:test:a> <urn:test:key> "k1" .
# comment
<urn:test:a> <urn:test:owner> <urn:test:root> .

<urn:test:a> <urn:test:label> "say \"hi\"" .`
	facts, err := parseNTriples(doc)
	require.NoError(t, err)
	assert.Equal(t, []Triple{
		{"urn:test:a", "urn:test:key", Literal("k1")},
		{"urn:test:a", "urn:test:owner", IRI("urn:test:root")},
		{"urn:test:a", "urn:test:label", Literal(`say "hi"`)},
	}, facts)
}

func TestParseNTriplesRejectsGarbage(t *testing.T) {
	_, err := parseNTriples(`not a triple`)
	require.Error(t, err)
}
