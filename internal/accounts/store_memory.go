package accounts

import (
	"context"
	"sync"
)

type MemoryAccountStore struct {
	mu      sync.Mutex
	byEmail map[string]Account
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{byEmail: make(map[string]Account)}
}

func (s *MemoryAccountStore) CreateAccount(ctx context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[a.Email]; ok {
		return ErrEmailTaken
	}
	s.byEmail[a.Email] = a
	return nil
}

func (s *MemoryAccountStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := a
	return &out, nil
}
