package store

import (
	"sort"
	"strconv"
	"strings"
)

// SPARQL rendering for the remote gateway. Only the subset the query builder
// produces is covered: basic graph patterns, LIMIT, and DELETE/INSERT/WHERE
// deltas.

// RenderSelect renders a pattern-match read as a SPARQL SELECT.
func RenderSelect(q SelectQuery) string {
	var b strings.Builder
	b.WriteString("SELECT")
	vars := collectVars(q.Where)
	if len(vars) == 0 {
		b.WriteString(" *")
	}
	for _, v := range vars {
		b.WriteString(" ?")
		b.WriteString(string(v))
	}
	b.WriteString(" WHERE { ")
	renderPatterns(&b, q.Where)
	b.WriteString("}")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String()
}

// RenderConstruct renders the same patterns as a CONSTRUCT, returning the
// matching subgraph instead of binding rows.
func RenderConstruct(q SelectQuery) string {
	var b strings.Builder
	b.WriteString("CONSTRUCT { ")
	renderPatterns(&b, q.Where)
	b.WriteString("} WHERE { ")
	renderPatterns(&b, q.Where)
	b.WriteString("}")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String()
}

// RenderModify renders a delete-then-insert delta as a SPARQL update. Delete
// wildcards are carried into WHERE as OPTIONAL blocks so that absent config
// triples do not prevent the match.
func RenderModify(q ModifyQuery) string {
	var b strings.Builder
	if len(q.Delete) > 0 {
		b.WriteString("DELETE { ")
		renderPatterns(&b, q.Delete)
		b.WriteString("} ")
	}
	if len(q.Insert) > 0 {
		b.WriteString("INSERT { ")
		renderPatterns(&b, q.Insert)
		b.WriteString("} ")
	}
	b.WriteString("WHERE { ")
	renderPatterns(&b, q.Where)
	bound := map[Var]bool{}
	for _, v := range collectVars(q.Where) {
		bound[v] = true
	}
	for _, pat := range q.Delete {
		if hasUnboundVar(pat, bound) {
			b.WriteString("OPTIONAL { ")
			renderPattern(&b, pat)
			b.WriteString("} ")
		}
	}
	b.WriteString("}")
	return b.String()
}

// RenderInsertData renders a fact set as INSERT DATA.
func RenderInsertData(facts []Triple) string {
	var b strings.Builder
	b.WriteString("INSERT DATA { ")
	for _, t := range facts {
		renderPattern(&b, Pattern{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object})
	}
	b.WriteString("}")
	return b.String()
}

func renderPatterns(b *strings.Builder, ps []Pattern) {
	for _, p := range ps {
		renderPattern(b, p)
	}
}

func renderPattern(b *strings.Builder, p Pattern) {
	b.WriteString(renderElem(p.Subject))
	b.WriteString(" ")
	b.WriteString(renderElem(p.Predicate))
	b.WriteString(" ")
	b.WriteString(renderElem(p.Object))
	b.WriteString(" . ")
}

func renderElem(e Elem) string {
	switch v := e.(type) {
	case IRI:
		return "<" + string(v) + ">"
	case Literal:
		return "\"" + escapeLiteral(string(v)) + "\""
	case Var:
		return "?" + string(v)
	}
	return ""
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n", "\r", "\\r")
	return r.Replace(s)
}

// collectVars returns the vars of the patterns in first-appearance order.
func collectVars(ps []Pattern) []Var {
	seen := map[Var]int{}
	order := 0
	for _, p := range ps {
		for _, e := range []Elem{p.Subject, p.Predicate, p.Object} {
			if v, ok := e.(Var); ok {
				if _, dup := seen[v]; !dup {
					seen[v] = order
					order++
				}
			}
		}
	}
	vars := make([]Var, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return seen[vars[i]] < seen[vars[j]] })
	return vars
}

func hasUnboundVar(p Pattern, bound map[Var]bool) bool {
	for _, e := range []Elem{p.Subject, p.Predicate, p.Object} {
		if v, ok := e.(Var); ok && !bound[v] {
			return true
		}
	}
	return false
}

