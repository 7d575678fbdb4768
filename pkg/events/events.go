// Package events carries the fire-and-forget notifications emitted on
// application and token creation. The domain service never blocks on delivery
// and never consumes a response.
package events

import (
	"context"
	"time"
)

// Event is a domain notification.
type Event interface {
	Kind() string
}

// ApplicationCreated is emitted after a new application is written.
type ApplicationCreated struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Persistent bool   `json:"persistent"`
}

func (ApplicationCreated) Kind() string { return "application.created" }

// TokenCreated is emitted after a new token is written.
type TokenCreated struct {
	ApplicationKey string    `json:"application_key"`
	TokenKey       string    `json:"token_key"`
	Label          string    `json:"label"`
	IssuedAt       time.Time `json:"issued_at"`
}

func (TokenCreated) Kind() string { return "token.created" }

// Emitter publishes events. Implementations must not block the caller.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// NopEmitter drops everything.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}
