package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/Nikhil2261/iot-backend/internal/apperr"
)

type Engine struct {
	store OutputStore
	now   func() time.Time
}

func New(store OutputStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// List returns the account's outputs as stored, legacy kind tags
// included. This is the dashboard view.
func (e *Engine) List(ctx context.Context, ownerAccount string) ([]Output, error) {
	outputs, err := e.store.ListOutputs(ctx, ownerAccount)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return outputs, nil
}

// Pull returns the account's outputs with the legacy kind alias rewritten
// to its canonical form. The rewrite happens on read only; stored
// historical records are never migrated. This is the device view.
func (e *Engine) Pull(ctx context.Context, ownerAccount string) ([]Output, error) {
	outputs, err := e.List(ctx, ownerAccount)
	if err != nil {
		return nil, err
	}
	for i := range outputs {
		outputs[i].Kind = NormalizeKind(outputs[i].Kind)
	}
	return outputs, nil
}

// ApplyAppWrite records a dashboard change. It always wins: the stored
// record is overwritten regardless of its logical time, which advances to
// max(WriteTimeMS, stored+1).
func (e *Engine) ApplyAppWrite(ctx context.Context, ownerAccount string, w AppWrite) (Output, error) {
	if ownerAccount == "" {
		return Output{}, apperr.New(apperr.KindInvalidRequest, "account is required")
	}
	if w.Pin < 0 {
		return Output{}, apperr.New(apperr.KindInvalidRequest, "pin must be non-negative")
	}
	if w.Speed != nil && *w.Speed < 0 {
		return Output{}, apperr.New(apperr.KindInvalidRequest, "speed must be non-negative")
	}
	rec, err := e.store.ApplyApp(ctx, ownerAccount, w, e.now().UTC())
	if err != nil {
		return Output{}, apperr.FromStore(err)
	}
	return rec, nil
}

// ApplyDeviceBatch applies a ping batch as independent per-key
// conditional upserts. Observations whose logical time does not strictly
// exceed the stored value are dropped without error; that is the policy
// filtering stale and re-delivered reports, not a failure. Partial
// application on a store error is expected and surfaced to the caller
// along with the count applied so far.
func (e *Engine) ApplyDeviceBatch(ctx context.Context, ownerAccount string, observations []Observation) (int, error) {
	if ownerAccount == "" {
		return 0, apperr.New(apperr.KindInvalidRequest, "account is required")
	}
	at := e.now().UTC()
	accepted := 0
	for i, obs := range observations {
		if obs.Pin < 0 || (obs.Speed != nil && *obs.Speed < 0) {
			return accepted, apperr.New(apperr.KindInvalidRequest, fmt.Sprintf("observation %d is malformed", i))
		}
		ok, err := e.store.ApplyDevice(ctx, ObservationRecord(ownerAccount, obs, at))
		if err != nil {
			return accepted, apperr.FromStore(err)
		}
		if ok {
			accepted++
		}
	}
	return accepted, nil
}
