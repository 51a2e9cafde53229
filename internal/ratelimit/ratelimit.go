// Package ratelimit throttles the endpoints an attacker could use to probe
// invitation tokens or brute-force credentials. Limits are per client IP and
// per route class; authenticated traffic is not limited here.
package ratelimit

import (
	"context"
	"time"
)

// Class names a group of routes sharing a limit.
type Class string

const (
	// ClassAuth covers login and registration.
	ClassAuth Class = "auth"
	// ClassToken covers the unauthenticated invitation token endpoints.
	ClassToken Class = "token"
)

// Rule is the limit applied to one class.
type Rule struct {
	Limit  int
	Window time.Duration
}

// DefaultRules are deliberately generous for legitimate clients while making
// 256-bit token guessing a non-starter.
var DefaultRules = map[Class]Rule{
	ClassAuth:  {Limit: 20, Window: time.Minute},
	ClassToken: {Limit: 60, Window: time.Minute},
}

// Result reports one limiter decision.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Store counts requests per key within a window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
