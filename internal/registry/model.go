// Package registry owns device identity records: who a physical board
// belongs to, the hash of its long-lived credential, and its network-join
// parameters. Provisioning state machine transitions live in the
// provisioning package; this package answers "is this device who it says
// it is" for every authenticated contact.
package registry

import (
	"context"
	"errors"
	"time"
)

// DeviceRecord is the identity record for one physical controller board.
// OwnerAccount is empty until the first provisioning request;
// CredentialHash is empty until activation. ProvisionToken and
// CredentialHash never stay populated together: activation clears the
// token in the same atomic update that sets the hash.
type DeviceRecord struct {
	DeviceID        string
	OwnerAccount    string
	CredentialHash  string
	ProvisionToken  string
	ProvisionExpiry *time.Time
	LastSeen        *time.Time
	WifiSSID        string
	WifiPassword    string
}

var ErrDeviceNotFound = errors.New("device not found")

// DeviceStore is the durable home of device identity records. The two
// mutating provisioning operations are single atomic steps: an upsert that
// replaces any unredeemed token, and a conditional redeem that succeeds at
// most once per issued token.
type DeviceStore interface {
	GetDevice(ctx context.Context, deviceID string) (*DeviceRecord, error)
	UpsertProvision(ctx context.Context, deviceID, ownerAccount, token string, expiry time.Time) error
	// RedeemProvision sets the credential hash and clears the token in one
	// conditional update; it reports false when the token no longer
	// matches or has expired.
	RedeemProvision(ctx context.Context, deviceID, presentedToken, credentialHash string, now time.Time) (bool, error)
	TouchLastSeen(ctx context.Context, deviceID string, at time.Time) error
	// UpdateNetworkCredentials matches on both device and owner; it
	// reports false when no such pair exists.
	UpdateNetworkCredentials(ctx context.Context, deviceID, ownerAccount, ssid, secret string) (bool, error)
}
