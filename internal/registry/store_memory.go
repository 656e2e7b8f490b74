package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryDeviceStore mirrors the conditional-update semantics of the SQL
// store under a single mutex. Used by unit tests and local runs.
type MemoryDeviceStore struct {
	mu      sync.Mutex
	devices map[string]DeviceRecord
}

func NewMemoryDeviceStore() *MemoryDeviceStore {
	return &MemoryDeviceStore{devices: make(map[string]DeviceRecord)}
}

func (s *MemoryDeviceStore) GetDevice(ctx context.Context, deviceID string) (*DeviceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.devices[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	out := rec
	return &out, nil
}

func (s *MemoryDeviceStore) UpsertProvision(ctx context.Context, deviceID, ownerAccount, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.devices[deviceID]
	rec.DeviceID = deviceID
	rec.OwnerAccount = ownerAccount
	rec.ProvisionToken = token
	exp := expiry
	rec.ProvisionExpiry = &exp
	s.devices[deviceID] = rec
	return nil
}

func (s *MemoryDeviceStore) RedeemProvision(ctx context.Context, deviceID, presentedToken, credentialHash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.devices[deviceID]
	if !ok || rec.ProvisionToken == "" || rec.ProvisionToken != presentedToken {
		return false, nil
	}
	if rec.ProvisionExpiry == nil || !now.Before(*rec.ProvisionExpiry) {
		return false, nil
	}
	rec.CredentialHash = credentialHash
	rec.ProvisionToken = ""
	rec.ProvisionExpiry = nil
	s.devices[deviceID] = rec
	return true, nil
}

func (s *MemoryDeviceStore) TouchLastSeen(ctx context.Context, deviceID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.devices[deviceID]
	if !ok {
		return ErrDeviceNotFound
	}
	t := at
	rec.LastSeen = &t
	s.devices[deviceID] = rec
	return nil
}

func (s *MemoryDeviceStore) UpdateNetworkCredentials(ctx context.Context, deviceID, ownerAccount, ssid, secret string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.devices[deviceID]
	if !ok || rec.OwnerAccount != ownerAccount {
		return false, nil
	}
	rec.WifiSSID = ssid
	rec.WifiPassword = secret
	s.devices[deviceID] = rec
	return true, nil
}
