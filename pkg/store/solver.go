package store

import (
	"context"
	"fmt"
)

// matcher enumerates stored triples matching a partially-bound pattern.
// Nil subject/predicate and nil object mean "any". Memory, postgres and test
// gateways share the solver below and differ only in how they match.
type matcher interface {
	match(ctx context.Context, s *IRI, p *IRI, o Term) ([]Triple, error)
}

// solve evaluates the patterns left to right, propagating bindings row by row.
// Vars repeated across patterns join on equality because they are substituted
// before matching.
func solve(ctx context.Context, m matcher, where []Pattern, limit int) ([]Bindings, error) {
	rows := []Bindings{{}}
	for _, pat := range where {
		var next []Bindings
		for _, row := range rows {
			expanded, err := solvePattern(ctx, m, pat, row)
			if err != nil {
				return nil, err
			}
			next = append(next, expanded...)
		}
		if len(next) == 0 {
			return nil, nil
		}
		rows = next
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func solvePattern(ctx context.Context, m matcher, pat Pattern, row Bindings) ([]Bindings, error) {
	sub := substitute(pat, row)

	var s, p *IRI
	var o Term
	var sVar, pVar, oVar Var
	var sOpen, pOpen, oOpen bool

	switch e := sub.Subject.(type) {
	case IRI:
		v := e
		s = &v
	case Var:
		sVar, sOpen = e, true
	default:
		return nil, fmt.Errorf("pattern subject must be an IRI or var, got %T", sub.Subject)
	}
	switch e := sub.Predicate.(type) {
	case IRI:
		v := e
		p = &v
	case Var:
		pVar, pOpen = e, true
	default:
		return nil, fmt.Errorf("pattern predicate must be an IRI or var, got %T", sub.Predicate)
	}
	switch e := sub.Object.(type) {
	case IRI, Literal:
		o = e.(Term)
	case Var:
		oVar, oOpen = e, true
	default:
		return nil, fmt.Errorf("pattern object must be a term or var, got %T", sub.Object)
	}

	triples, err := m.match(ctx, s, p, o)
	if err != nil {
		return nil, err
	}
	out := make([]Bindings, 0, len(triples))
	for _, t := range triples {
		nb := row.clone()
		if sOpen {
			nb[sVar] = t.Subject
		}
		if pOpen {
			nb[pVar] = t.Predicate
		}
		if oOpen {
			nb[oVar] = t.Object
		}
		out = append(out, nb)
	}
	return out, nil
}

// substitute replaces vars already bound in row with their concrete terms.
func substitute(pat Pattern, row Bindings) Pattern {
	return Pattern{
		Subject:   substituteElem(pat.Subject, row),
		Predicate: substituteElem(pat.Predicate, row),
		Object:    substituteElem(pat.Object, row),
	}
}

func substituteElem(e Elem, row Bindings) Elem {
	if v, ok := e.(Var); ok {
		if t, bound := row[v]; bound {
			return t
		}
	}
	return e
}

// expandModify resolves a delta into the concrete triples to delete and insert.
// Delete templates with vars left unbound by Where act as wildcards over stored
// triples. Insert templates must be fully bound.
func expandModify(ctx context.Context, m matcher, q ModifyQuery) (del, ins []Triple, err error) {
	rows, err := solve(ctx, m, q.Where, 0)
	if err != nil {
		return nil, nil, err
	}
	seenDel := map[string]bool{}
	seenIns := map[string]bool{}
	for _, row := range rows {
		for _, pat := range q.Delete {
			expanded, derr := solvePattern(ctx, m, pat, row)
			if derr != nil {
				return nil, nil, derr
			}
			for _, er := range expanded {
				t, terr := instantiate(pat, er)
				if terr != nil {
					return nil, nil, terr
				}
				if k := tripleKey(t); !seenDel[k] {
					seenDel[k] = true
					del = append(del, t)
				}
			}
		}
		for _, pat := range q.Insert {
			t, terr := instantiate(pat, row)
			if terr != nil {
				return nil, nil, terr
			}
			if k := tripleKey(t); !seenIns[k] {
				seenIns[k] = true
				ins = append(ins, t)
			}
		}
	}
	return del, ins, nil
}

// instantiate turns a fully-bound pattern into a concrete triple.
func instantiate(pat Pattern, row Bindings) (Triple, error) {
	sub := substitute(pat, row)
	s, ok := sub.Subject.(IRI)
	if !ok {
		return Triple{}, fmt.Errorf("unbound subject %v in template", sub.Subject)
	}
	p, ok := sub.Predicate.(IRI)
	if !ok {
		return Triple{}, fmt.Errorf("unbound predicate %v in template", sub.Predicate)
	}
	o, ok := sub.Object.(Term)
	if !ok {
		return Triple{}, fmt.Errorf("unbound object %v in template", sub.Object)
	}
	return Triple{Subject: s, Predicate: p, Object: o}, nil
}

// constructTriples instantiates the where patterns for every solved row,
// deduplicated, to serve graph-construct reads.
func constructTriples(where []Pattern, rows []Bindings) []Triple {
	seen := map[string]bool{}
	var out []Triple
	for _, row := range rows {
		for _, pat := range where {
			t, err := instantiate(pat, row)
			if err != nil {
				continue
			}
			if k := tripleKey(t); !seen[k] {
				seen[k] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func tripleKey(t Triple) string {
	kind := "l"
	if _, ok := t.Object.(IRI); ok {
		kind = "i"
	}
	return string(t.Subject) + "\x00" + string(t.Predicate) + "\x00" + kind + "\x00" + termText(t.Object)
}

func sameTerm(a, b Term) bool {
	_, aIRI := a.(IRI)
	_, bIRI := b.(IRI)
	return aIRI == bIRI && termText(a) == termText(b)
}

func termText(t Term) string {
	switch v := t.(type) {
	case IRI:
		return string(v)
	case Literal:
		return string(v)
	}
	return ""
}
