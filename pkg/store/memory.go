package store

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// MemoryGateway is an in-process triple store for development and tests.
// All public methods are safe for concurrent use.
type MemoryGateway struct {
	log *zap.SugaredLogger

	mu      sync.RWMutex
	triples map[string]Triple
}

func NewMemoryGateway(log *zap.SugaredLogger) *MemoryGateway {
	return &MemoryGateway{log: log, triples: map[string]Triple{}}
}

// seedTriple is one line of the YAML seed file.
type seedTriple struct {
	Subject   string `yaml:"subject"`
	Predicate string `yaml:"predicate"`
	Object    string `yaml:"object"`
	IRI       bool   `yaml:"iri"`
}

// LoadSeed loads triples from a YAML file into the store. Used for local
// bring-up, mirroring the seed-from-env pattern of the tenant provider this
// gateway descends from.
func (g *MemoryGateway) LoadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []seedTriple
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range entries {
		var o Term
		if e.IRI {
			o = IRI(e.Object)
		} else {
			o = Literal(e.Object)
		}
		t := Triple{Subject: IRI(e.Subject), Predicate: IRI(e.Predicate), Object: o}
		g.triples[tripleKey(t)] = t
	}
	g.log.Infow("seeded memory store", "path", path, "triples", len(entries))
	return nil
}

// match enumerates stored triples; callers hold the appropriate lock.
func (g *MemoryGateway) match(ctx context.Context, s *IRI, p *IRI, o Term) ([]Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Triple
	for _, t := range g.triples {
		if s != nil && t.Subject != *s {
			continue
		}
		if p != nil && t.Predicate != *p {
			continue
		}
		if o != nil && !sameTerm(t.Object, o) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (g *MemoryGateway) Select(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Bindings, error) {
	if err := authorize(auth, required); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return solve(ctx, g, q.Where, q.Limit)
}

func (g *MemoryGateway) Insert(ctx context.Context, facts []Triple, auth Authentication, required Authority) error {
	if err := authorize(auth, required); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range facts {
		g.triples[tripleKey(t)] = t
	}
	return nil
}

func (g *MemoryGateway) Modify(ctx context.Context, q ModifyQuery, auth Authentication, required Authority) error {
	if err := authorize(auth, required); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	del, ins, err := expandModify(ctx, g, q)
	if err != nil {
		return err
	}
	for _, t := range del {
		delete(g.triples, tripleKey(t))
	}
	for _, t := range ins {
		g.triples[tripleKey(t)] = t
	}
	return nil
}

func (g *MemoryGateway) Construct(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Triple, error) {
	if err := authorize(auth, required); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	rows, err := solve(ctx, g, q.Where, q.Limit)
	if err != nil {
		return nil, err
	}
	return constructTriples(q.Where, rows), nil
}

// Size reports the number of stored triples.
func (g *MemoryGateway) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}
