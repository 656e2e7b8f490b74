// Package store is the Postgres implementation of the three record
// stores. Every conditional update the conflict policy needs is a single
// SQL statement, so per-key read-modify-write races never reach the
// application layer.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nikhil2261/iot-backend/internal/accounts"
	"github.com/Nikhil2261/iot-backend/internal/registry"
	"github.com/Nikhil2261/iot-backend/internal/syncengine"
)

const DefaultTimeout = 5 * time.Second

type Store struct {
	DB      *pgxpool.Pool
	Timeout time.Duration
}

func New(db *pgxpool.Pool, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{DB: db, Timeout: timeout}
}

// Every store call is bounded; a saturated pool surfaces as a deadline
// error instead of a hung caller.
func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.Timeout)
}

// ---- device identity records ----

func (s *Store) GetDevice(ctx context.Context, deviceID string) (*registry.DeviceRecord, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	var rec registry.DeviceRecord
	err := s.DB.QueryRow(ctx, `
SELECT device_id, owner_account, device_token_hash, prov_token, prov_expires, last_seen, wifi_ssid, wifi_password
FROM physical_devices
WHERE device_id=$1
`, deviceID).Scan(&rec.DeviceID, &rec.OwnerAccount, &rec.CredentialHash, &rec.ProvisionToken,
		&rec.ProvisionExpiry, &rec.LastSeen, &rec.WifiSSID, &rec.WifiPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrDeviceNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Store) UpsertProvision(ctx context.Context, deviceID, ownerAccount, token string, expiry time.Time) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_, err := s.DB.Exec(ctx, `
INSERT INTO physical_devices(device_id, owner_account, prov_token, prov_expires)
VALUES($1,$2,$3,$4)
ON CONFLICT (device_id) DO UPDATE SET
  owner_account=EXCLUDED.owner_account,
  prov_token=EXCLUDED.prov_token,
  prov_expires=EXCLUDED.prov_expires
`, deviceID, ownerAccount, token, expiry)
	return err
}

func (s *Store) RedeemProvision(ctx context.Context, deviceID, presentedToken, credentialHash string, now time.Time) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	tag, err := s.DB.Exec(ctx, `
UPDATE physical_devices
SET device_token_hash=$2, prov_token='', prov_expires=NULL
WHERE device_id=$1 AND prov_token<>'' AND prov_token=$3 AND prov_expires > $4
`, deviceID, credentialHash, presentedToken, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) TouchLastSeen(ctx context.Context, deviceID string, at time.Time) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	tag, err := s.DB.Exec(ctx, `UPDATE physical_devices SET last_seen=$2 WHERE device_id=$1`, deviceID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return registry.ErrDeviceNotFound
	}
	return nil
}

func (s *Store) UpdateNetworkCredentials(ctx context.Context, deviceID, ownerAccount, ssid, secret string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	tag, err := s.DB.Exec(ctx, `
UPDATE physical_devices SET wifi_ssid=$3, wifi_password=$4
WHERE device_id=$1 AND owner_account=$2
`, deviceID, ownerAccount, ssid, secret)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ---- output state records ----

func (s *Store) ListOutputs(ctx context.Context, ownerAccount string) ([]syncengine.Output, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.DB.Query(ctx, `
SELECT owner_account, pin, status, speed, kind, origin, observed_at, logical_time
FROM device_outputs
WHERE owner_account=$1
ORDER BY pin
`, ownerAccount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []syncengine.Output
	for rows.Next() {
		var rec syncengine.Output
		if err := rows.Scan(&rec.OwnerAccount, &rec.Pin, &rec.Status, &rec.Speed,
			&rec.Kind, &rec.Origin, &rec.ObservedAt, &rec.LogicalTime); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ApplyApp is the unconditional half of the conflict policy: the record
// is overwritten whatever its logical time, which advances to the larger
// of the caller's clock and stored+1.
func (s *Store) ApplyApp(ctx context.Context, ownerAccount string, w syncengine.AppWrite, at time.Time) (syncengine.Output, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rec := syncengine.Output{OwnerAccount: ownerAccount, Pin: w.Pin}
	err := s.DB.QueryRow(ctx, `
INSERT INTO device_outputs(owner_account, pin, status, speed, kind, origin, observed_at, logical_time)
VALUES($1, $2, COALESCE($3, 'off'), COALESCE($4, 0), 'switch', 'app', $5, GREATEST($6::bigint, 1))
ON CONFLICT (owner_account, pin) DO UPDATE SET
  status=COALESCE($3, device_outputs.status),
  speed=COALESCE($4, device_outputs.speed),
  origin='app',
  observed_at=$5,
  logical_time=GREATEST($6::bigint, device_outputs.logical_time+1)
RETURNING status, speed, kind, origin, observed_at, logical_time
`, ownerAccount, w.Pin, w.Status, w.Speed, at, w.WriteTimeMS).Scan(
		&rec.Status, &rec.Speed, &rec.Kind, &rec.Origin, &rec.ObservedAt, &rec.LogicalTime)
	if err != nil {
		return syncengine.Output{}, err
	}
	return rec, nil
}

// ApplyDevice is the conditional half: accepted only when the incoming
// logical time strictly exceeds the stored one. The freshness predicate
// rides on the upsert itself, so two concurrent pings for the same pin
// cannot lose an update between read and write.
func (s *Store) ApplyDevice(ctx context.Context, rec syncengine.Output) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	tag, err := s.DB.Exec(ctx, `
INSERT INTO device_outputs(owner_account, pin, status, speed, kind, origin, observed_at, logical_time)
VALUES($1,$2,$3,$4,$5,'device',$6,$7)
ON CONFLICT (owner_account, pin) DO UPDATE SET
  status=EXCLUDED.status,
  speed=EXCLUDED.speed,
  kind=EXCLUDED.kind,
  origin='device',
  observed_at=EXCLUDED.observed_at,
  logical_time=EXCLUDED.logical_time
WHERE device_outputs.logical_time < EXCLUDED.logical_time
`, rec.OwnerAccount, rec.Pin, rec.Status, rec.Speed, rec.Kind, rec.ObservedAt, rec.LogicalTime)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ---- accounts ----

func (s *Store) CreateAccount(ctx context.Context, a accounts.Account) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	tag, err := s.DB.Exec(ctx, `
INSERT INTO accounts(account_id, name, email, password_hash, created_at)
VALUES($1,$2,lower($3),$4,$5)
ON CONFLICT (email) DO NOTHING
`, a.ID, a.Name, a.Email, a.PasswordHash, a.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrEmailTaken
	}
	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	var a accounts.Account
	err := s.DB.QueryRow(ctx, `
SELECT account_id, name, email, password_hash, created_at
FROM accounts
WHERE email=lower($1)
`, email).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}
