// Package ratelimit provides per-client request budgets used for abuse
// prevention on the public API.
package ratelimit

import (
	"context"
	"time"
)

// Rule is a named budget of Limit requests per Window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the client identified by key may spend one
// request from rule's budget.
type Limiter interface {
	Allow(ctx context.Context, rule Rule, key string) (Result, error)
}

var (
	// AuthRule applies to register and login, each route separately.
	AuthRule = Rule{Name: "auth", Limit: 5, Window: 15 * time.Minute}
	// SubmitRule applies to hosting request submission.
	SubmitRule = Rule{Name: "submit", Limit: 3, Window: time.Hour}
)
