package syncengine

import (
	"context"
	"sort"
	"sync"
	"time"
)

type outputKey struct {
	owner string
	pin   int
}

// MemoryOutputStore applies the conflict policy under a single mutex,
// mirroring the per-key atomicity of the SQL store's conditional
// statements. Used by unit tests and local runs.
type MemoryOutputStore struct {
	mu      sync.Mutex
	outputs map[outputKey]Output
}

func NewMemoryOutputStore() *MemoryOutputStore {
	return &MemoryOutputStore{outputs: make(map[outputKey]Output)}
}

func (s *MemoryOutputStore) ListOutputs(ctx context.Context, ownerAccount string) ([]Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Output
	for k, rec := range s.outputs {
		if k.owner == ownerAccount {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pin < out[j].Pin })
	return out, nil
}

func (s *MemoryOutputStore) ApplyApp(ctx context.Context, ownerAccount string, w AppWrite, at time.Time) (Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := outputKey{owner: ownerAccount, pin: w.Pin}
	var stored *Output
	if rec, ok := s.outputs[key]; ok {
		stored = &rec
	}
	next := ResolveApp(ownerAccount, stored, w, at)
	s.outputs[key] = next
	return next, nil
}

func (s *MemoryOutputStore) ApplyDevice(ctx context.Context, rec Output) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := outputKey{owner: rec.OwnerAccount, pin: rec.Pin}
	var stored *Output
	if cur, ok := s.outputs[key]; ok {
		stored = &cur
	}
	if !Fresher(stored, rec.LogicalTime) {
		return false, nil
	}
	s.outputs[key] = rec
	return true, nil
}
