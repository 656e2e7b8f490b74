package registry

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Nikhil2261/iot-backend/internal/apperr"
)

// HashCredential is the one-way hash stored in place of a device
// credential. Only the hash ever touches the store.
func HashCredential(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

type Registry struct {
	store DeviceStore
	now   func() time.Time
}

func New(store DeviceStore) *Registry {
	return &Registry{store: store, now: time.Now}
}

// Compared against when the identifier is unknown or not yet activated,
// so the unknown-device and wrong-credential paths cost the same.
var placeholderHash = HashCredential("")

// Authenticate resolves a device credential to its owning account.
// Unknown identifier and bad credential are indistinguishable to the
// caller and take the same codepath.
func (r *Registry) Authenticate(ctx context.Context, deviceID, credential string) (string, error) {
	rec, err := r.store.GetDevice(ctx, deviceID)
	if err != nil && !errors.Is(err, ErrDeviceNotFound) {
		return "", apperr.FromStore(err)
	}
	stored := placeholderHash
	if rec != nil && rec.CredentialHash != "" {
		stored = rec.CredentialHash
	}
	match := hmac.Equal([]byte(HashCredential(credential)), []byte(stored))
	if rec == nil || rec.CredentialHash == "" || !match {
		return "", apperr.New(apperr.KindUnauthorized, "unauthorized")
	}
	return rec.OwnerAccount, nil
}

// Device returns the identity record for a device identifier.
func (r *Registry) Device(ctx context.Context, deviceID string) (*DeviceRecord, error) {
	rec, err := r.store.GetDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "device not found")
		}
		return nil, apperr.FromStore(err)
	}
	return rec, nil
}

// RecordLiveness stamps last_seen. Called on every authenticated device
// contact regardless of what the payload goes on to do.
func (r *Registry) RecordLiveness(ctx context.Context, deviceID string) error {
	if err := r.store.TouchLastSeen(ctx, deviceID, r.now().UTC()); err != nil {
		return apperr.FromStore(err)
	}
	return nil
}

// SetNetworkCredentials updates the board's Wi-Fi join parameters. The
// owner must match the record; a device id belonging to another account
// reads as not found.
func (r *Registry) SetNetworkCredentials(ctx context.Context, deviceID, ownerAccount, ssid, secret string) error {
	if ssid == "" || secret == "" {
		return apperr.New(apperr.KindInvalidRequest, "ssid and secret are required")
	}
	updated, err := r.store.UpdateNetworkCredentials(ctx, deviceID, ownerAccount, ssid, secret)
	if err != nil {
		return apperr.FromStore(err)
	}
	if !updated {
		return apperr.New(apperr.KindNotFound, "device not found")
	}
	return nil
}
