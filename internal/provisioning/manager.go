// Package provisioning turns an unauthenticated board into a credentialed
// principal: an account mints a short-lived token for a device identifier,
// the board redeems it once for a long-lived credential whose hash is the
// only thing that persists.
package provisioning

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Nikhil2261/iot-backend/internal/apperr"
	"github.com/Nikhil2261/iot-backend/internal/registry"
)

const DefaultTokenTTL = 10 * time.Minute

type Manager struct {
	store registry.DeviceStore
	ttl   time.Duration
	now   func() time.Time
}

func New(store registry.DeviceStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Request mints a provisioning token for the identifier and binds it to
// the requesting account. Any previously issued, unredeemed token for the
// same identifier is replaced; an already-active credential is untouched.
func (m *Manager) Request(ctx context.Context, accountID, deviceID string) (string, time.Time, error) {
	if accountID == "" {
		return "", time.Time{}, apperr.New(apperr.KindInvalidRequest, "account is required")
	}
	if deviceID == "" {
		return "", time.Time{}, apperr.New(apperr.KindInvalidRequest, "device_id is required")
	}
	token := "prv_" + randomToken(16)
	expiry := m.now().UTC().Add(m.ttl)
	if err := m.store.UpsertProvision(ctx, deviceID, accountID, token, expiry); err != nil {
		return "", time.Time{}, apperr.FromStore(err)
	}
	return token, expiry, nil
}

// Activate redeems a still-valid token for a fresh device credential. The
// credential is returned exactly once; only its hash is stored, and the
// token is cleared in the same conditional update that sets the hash so a
// token can never be redeemed twice.
func (m *Manager) Activate(ctx context.Context, deviceID, presentedToken string) (string, error) {
	if deviceID == "" || presentedToken == "" {
		return "", apperr.New(apperr.KindInvalidRequest, "device_id and token are required")
	}
	rec, err := m.store.GetDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, registry.ErrDeviceNotFound) {
			return "", apperr.New(apperr.KindNotFound, "unknown device")
		}
		return "", apperr.FromStore(err)
	}
	now := m.now().UTC()
	if rec.ProvisionToken == "" || rec.ProvisionExpiry == nil || !now.Before(*rec.ProvisionExpiry) {
		return "", apperr.New(apperr.KindTokenExpired, "provision token expired")
	}
	if !hmac.Equal([]byte(presentedToken), []byte(rec.ProvisionToken)) {
		return "", apperr.New(apperr.KindTokenMismatch, "invalid provision token")
	}

	credential := "dev_" + randomToken(24)
	redeemed, err := m.store.RedeemProvision(ctx, deviceID, presentedToken, registry.HashCredential(credential), now)
	if err != nil {
		return "", apperr.FromStore(err)
	}
	if !redeemed {
		// Lost the race against a concurrent activation or re-provision.
		return "", apperr.New(apperr.KindTokenExpired, "provision token expired")
	}
	return credential, nil
}

func randomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
