// Package store defines the narrow contract to the shared graph (triple) store:
// pattern-match reads, delta writes and graph-construct reads, each tagged with
// the authority required to run it.
package store

import (
	"fmt"
	"time"
)

// IRI is a node reference in the graph.
type IRI string

// Literal is a plain literal value. Booleans are canonicalized to "true"/"false",
// timestamps to RFC 3339.
type Literal string

// Var is an output variable in a pattern query.
type Var string

// Term is a concrete value position in a triple: an IRI or a Literal.
type Term interface {
	Elem
	isTerm()
}

// Elem is a pattern element: a concrete Term or a Var placeholder.
type Elem interface {
	isElem()
}

func (IRI) isElem()     {}
func (Literal) isElem() {}
func (Var) isElem()     {}
func (IRI) isTerm()     {}
func (Literal) isTerm() {}

// Bool returns the canonical literal for a boolean.
func Bool(v bool) Literal {
	if v {
		return "true"
	}
	return "false"
}

// Timestamp returns the canonical literal for a point in time.
func Timestamp(t time.Time) Literal {
	return Literal(t.UTC().Format(time.RFC3339))
}

// Triple is a single subject-predicate-object fact.
type Triple struct {
	Subject   IRI
	Predicate IRI
	Object    Term
}

// Pattern is one where/delete/insert template line. Vars shared between
// patterns join on equality.
type Pattern struct {
	Subject   Elem
	Predicate Elem
	Object    Elem
}

// SelectQuery is a pattern-match read. Limit caps the number of binding rows;
// zero means unbounded.
type SelectQuery struct {
	Where []Pattern
	Limit int
}

// ModifyQuery is a delete-then-insert delta. Delete templates may carry vars
// that stay unbound after Where; those act as wildcards over existing triples.
// Insert templates must be fully bound by Where.
type ModifyQuery struct {
	Where  []Pattern
	Delete []Pattern
	Insert []Pattern
}

// Bindings is one result row of a select: variable name to resolved term.
// Accessors fail loudly when a variable is absent or holds the wrong kind of
// term, so a malformed row never maps into a half-filled entity.
type Bindings map[Var]Term

// DecodeError reports a binding row that could not be mapped.
type DecodeError struct {
	Var    Var
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("binding %q: %s", string(e.Var), e.Reason)
}

// IRI returns the node reference bound to v.
func (b Bindings) IRI(v Var) (IRI, error) {
	t, ok := b[v]
	if !ok {
		return "", &DecodeError{Var: v, Reason: "not bound"}
	}
	iri, ok := t.(IRI)
	if !ok {
		return "", &DecodeError{Var: v, Reason: "not an IRI"}
	}
	return iri, nil
}

// Text returns the textual form of the term bound to v.
func (b Bindings) Text(v Var) (string, error) {
	t, ok := b[v]
	if !ok {
		return "", &DecodeError{Var: v, Reason: "not bound"}
	}
	switch tv := t.(type) {
	case IRI:
		return string(tv), nil
	case Literal:
		return string(tv), nil
	}
	return "", &DecodeError{Var: v, Reason: "unknown term kind"}
}

// Bool returns the boolean literal bound to v.
func (b Bindings) Bool(v Var) (bool, error) {
	s, err := b.Text(v)
	if err != nil {
		return false, err
	}
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, &DecodeError{Var: v, Reason: fmt.Sprintf("not a boolean: %q", s)}
}

// Time returns the RFC 3339 timestamp literal bound to v.
func (b Bindings) Time(v Var) (time.Time, error) {
	s, err := b.Text(v)
	if err != nil {
		return time.Time{}, err
	}
	ts, perr := time.Parse(time.RFC3339, s)
	if perr != nil {
		return time.Time{}, &DecodeError{Var: v, Reason: fmt.Sprintf("not a timestamp: %q", s)}
	}
	return ts, nil
}

func (b Bindings) clone() Bindings {
	c := make(Bindings, len(b)+2)
	for k, v := range b {
		c[k] = v
	}
	return c
}
