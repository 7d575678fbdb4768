package store

import (
	"context"
	"errors"
)

// Authority is the capability level required for (or granted to) a store call.
// System outranks Application.
type Authority int

const (
	AuthorityApplication Authority = iota + 1
	AuthoritySystem
)

func (a Authority) String() string {
	switch a {
	case AuthorityApplication:
		return "APPLICATION"
	case AuthoritySystem:
		return "SYSTEM"
	}
	return "UNKNOWN"
}

// Authentication is the resolved caller context threaded through every store
// call. It is produced by the edge before any domain operation runs.
type Authentication struct {
	Subject     string
	Authorities []Authority
}

// Grants reports whether any granted authority satisfies the required one.
func (a Authentication) Grants(required Authority) bool {
	for _, g := range a.Authorities {
		if g >= required {
			return true
		}
	}
	return false
}

// ErrAuthorizationDenied is returned by every gateway when the caller's
// authorities do not include the required one. Callers propagate it verbatim.
var ErrAuthorizationDenied = errors.New("authorization denied")

func authorize(auth Authentication, required Authority) error {
	if !auth.Grants(required) {
		return ErrAuthorizationDenied
	}
	return nil
}

// Gateway executes reads and deltas against the shared graph, scoped by a
// required authority. Implementations are safe for concurrent use; every call
// honors ctx cancellation.
type Gateway interface {
	// Select runs a pattern-match read and returns the binding rows.
	Select(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Bindings, error)
	// Insert writes a set of new facts.
	Insert(ctx context.Context, facts []Triple, auth Authentication, required Authority) error
	// Modify executes a delete-then-insert delta as one call.
	Modify(ctx context.Context, q ModifyQuery, auth Authentication, required Authority) error
	// Construct runs the patterns as a graph read and returns the matching facts.
	Construct(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Triple, error)
}
