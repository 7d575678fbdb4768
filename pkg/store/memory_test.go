package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	sysAuth = Authentication{Subject: "tester", Authorities: []Authority{AuthoritySystem}}
	appAuth = Authentication{Subject: "tester", Authorities: []Authority{AuthorityApplication}}
)

const ns = "urn:test:"

func seeded(t *testing.T, facts ...Triple) *MemoryGateway {
	t.Helper()
	g := NewMemoryGateway(zap.NewNop().Sugar())
	require.NoError(t, g.Insert(context.Background(), facts, sysAuth, AuthoritySystem))
	return g
}

func TestSelectJoinsOnSharedVars(t *testing.T) {
	g := seeded(t,
		Triple{ns + "t1", ns + "of", IRI(ns + "a1")},
		Triple{ns + "t1", ns + "label", Literal("ci")},
		Triple{ns + "t2", ns + "of", IRI(ns + "a2")},
		Triple{ns + "t2", ns + "label", Literal("deploy")},
		Triple{ns + "a1", ns + "key", Literal("k1")},
		Triple{ns + "a2", ns + "key", Literal("k2")},
	)

	rows, err := g.Select(context.Background(), SelectQuery{
		Where: []Pattern{
			{Subject: Var("t"), Predicate: IRI(ns + "of"), Object: Var("a")},
			{Subject: Var("a"), Predicate: IRI(ns + "key"), Object: Literal("k2")},
			{Subject: Var("t"), Predicate: IRI(ns + "label"), Object: Var("l")},
		},
	}, appAuth, AuthorityApplication)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	label, err := rows[0].Text("l")
	require.NoError(t, err)
	assert.Equal(t, "deploy", label)

	node, err := rows[0].IRI("t")
	require.NoError(t, err)
	assert.Equal(t, IRI(ns+"t2"), node)
}

func TestSelectHonorsLimit(t *testing.T) {
	g := NewMemoryGateway(zap.NewNop().Sugar())
	for i := 0; i < 10; i++ {
		k := string(rune('a' + i))
		require.NoError(t, g.Insert(context.Background(), []Triple{
			{IRI(ns + k), ns + "key", Literal(k)},
		}, sysAuth, AuthoritySystem))
	}
	rows, err := g.Select(context.Background(), SelectQuery{
		Where: []Pattern{{Subject: Var("n"), Predicate: IRI(ns + "key"), Object: Var("k")}},
		Limit: 3,
	}, appAuth, AuthorityApplication)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAuthorizationEnforced(t *testing.T) {
	g := seeded(t, Triple{ns + "n", ns + "p", Literal("v")})

	_, err := g.Select(context.Background(), SelectQuery{}, appAuth, AuthoritySystem)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	_, err = g.Select(context.Background(), SelectQuery{}, Authentication{}, AuthorityApplication)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	// SYSTEM outranks APPLICATION.
	_, err = g.Select(context.Background(), SelectQuery{}, sysAuth, AuthorityApplication)
	assert.NoError(t, err)
}

func TestModifyDeleteThenInsert(t *testing.T) {
	g := seeded(t,
		Triple{ns + "a1", ns + "type", IRI(ns + "App")},
		Triple{ns + "a1", ns + "key", Literal("k1")},
		Triple{ns + "a1", ns + "host", Literal("old-host")},
	)

	q := ModifyQuery{
		Where: []Pattern{
			{Subject: Var("a"), Predicate: IRI(ns + "key"), Object: Literal("k1")},
		},
		Delete: []Pattern{
			// var unbound by Where: wildcard over existing host triples
			{Subject: Var("a"), Predicate: IRI(ns + "host"), Object: Var("h")},
		},
		Insert: []Pattern{
			{Subject: Var("a"), Predicate: IRI(ns + "host"), Object: Literal("new-host")},
		},
	}
	require.NoError(t, g.Modify(context.Background(), q, appAuth, AuthorityApplication))

	rows, err := g.Select(context.Background(), SelectQuery{
		Where: []Pattern{{Subject: IRI(ns + "a1"), Predicate: IRI(ns + "host"), Object: Var("h")}},
	}, appAuth, AuthorityApplication)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	host, err := rows[0].Text("h")
	require.NoError(t, err)
	assert.Equal(t, "new-host", host)
}

func TestModifyNoMatchIsNoOp(t *testing.T) {
	g := seeded(t, Triple{ns + "a1", ns + "key", Literal("k1")})
	q := ModifyQuery{
		Where:  []Pattern{{Subject: Var("a"), Predicate: IRI(ns + "key"), Object: Literal("nope")}},
		Insert: []Pattern{{Subject: Var("a"), Predicate: IRI(ns + "host"), Object: Literal("h")}},
	}
	require.NoError(t, g.Modify(context.Background(), q, appAuth, AuthorityApplication))
	assert.Equal(t, 1, g.Size())
}

func TestConstructReturnsSubgraph(t *testing.T) {
	g := seeded(t,
		Triple{ns + "a1", ns + "key", Literal("k1")},
		Triple{ns + "a1", ns + "label", Literal("Acme")},
		Triple{ns + "a2", ns + "key", Literal("k2")},
	)
	facts, err := g.Construct(context.Background(), SelectQuery{
		Where: []Pattern{
			{Subject: Var("a"), Predicate: IRI(ns + "key"), Object: Literal("k1")},
			{Subject: Var("a"), Predicate: IRI(ns + "label"), Object: Var("l")},
		},
	}, appAuth, AuthorityApplication)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Triple{
		{ns + "a1", ns + "key", Literal("k1")},
		{ns + "a1", ns + "label", Literal("Acme")},
	}, facts)
}

func TestBindingsAccessorsFailLoudly(t *testing.T) {
	b := Bindings{"n": IRI(ns + "x"), "flag": Literal("true"), "junk": Literal("maybe")}

	_, err := b.Text("missing")
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, Var("missing"), derr.Var)

	_, err = b.IRI("flag")
	assert.ErrorAs(t, err, &derr)

	ok, err := b.Bool("flag")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = b.Bool("junk")
	assert.ErrorAs(t, err, &derr)

	_, err = b.Time("junk")
	assert.ErrorAs(t, err, &derr)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- subject: urn:test:a1
  predicate: urn:test:key
  object: k1
- subject: urn:test:a1
  predicate: urn:test:owner
  object: urn:test:root
  iri: true
`), 0o600))

	g := NewMemoryGateway(zap.NewNop().Sugar())
	require.NoError(t, g.LoadSeed(path))
	assert.Equal(t, 2, g.Size())

	rows, err := g.Select(context.Background(), SelectQuery{
		Where: []Pattern{{Subject: IRI(ns + "a1"), Predicate: IRI(ns + "owner"), Object: Var("o")}},
	}, appAuth, AuthorityApplication)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	owner, err := rows[0].IRI("o")
	require.NoError(t, err)
	assert.Equal(t, IRI(ns+"root"), owner)
}
