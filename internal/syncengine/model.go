// Package syncengine reconciles concurrent output-state writes from two
// independently clocked origins, the dashboard and the physical board,
// into one agreed value per (account, pin). The policy is asymmetric:
// device observations win only by logical-time freshness, app writes win
// unconditionally.
package syncengine

import (
	"context"
	"time"
)

const (
	OriginApp    = "app"
	OriginDevice = "device"

	KindSwitch = "switch"
	KindFan    = "fan"
	// KindLight is a legacy tag kept in historical records; it reads and
	// writes through as KindSwitch per NormalizeKind.
	KindLight = "light"

	StatusOff = "off"
)

// Output is the stored state of a single switchable output. LogicalTime
// never decreases for a given (OwnerAccount, Pin) pair.
type Output struct {
	OwnerAccount string
	Pin          int
	Status       string
	Speed        int
	Kind         string
	Origin       string
	ObservedAt   time.Time
	LogicalTime  int64
}

// Observation is one entry of a device ping batch. Nil fields take the
// package defaults (StatusOff, speed 0, KindSwitch).
type Observation struct {
	Pin         int
	Status      *string
	Speed       *int
	Kind        *string
	LogicalTime int64
}

// AppWrite is a dashboard-originated change. Nil fields leave the stored
// value untouched. WriteTimeMS is the caller's wall clock in milliseconds;
// the stored logical time advances past it regardless of staleness.
type AppWrite struct {
	Pin         int
	Status      *string
	Speed       *int
	WriteTimeMS int64
}

// OutputStore is the durable home of output state records. Both mutating
// operations are single atomic per-key steps: concurrent writers of the
// same (owner, pin) linearize at the store, writers of different keys do
// not contend.
type OutputStore interface {
	ListOutputs(ctx context.Context, ownerAccount string) ([]Output, error)
	// ApplyApp upserts unconditionally and returns the stored record.
	ApplyApp(ctx context.Context, ownerAccount string, w AppWrite, at time.Time) (Output, error)
	// ApplyDevice upserts rec only if rec.LogicalTime strictly exceeds the
	// stored value (or no record exists); reports whether it was accepted.
	ApplyDevice(ctx context.Context, rec Output) (bool, error)
}
