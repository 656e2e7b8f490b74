package store

import "context"

// Additive only; new columns get explicit defaults so older rows read
// back whole.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts(
  account_id    TEXT PRIMARY KEY,
  name          TEXT NOT NULL DEFAULT '',
  email         TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS physical_devices(
  device_id         TEXT PRIMARY KEY,
  owner_account     TEXT NOT NULL DEFAULT '',
  device_token_hash TEXT NOT NULL DEFAULT '',
  prov_token        TEXT NOT NULL DEFAULT '',
  prov_expires      TIMESTAMPTZ,
  last_seen         TIMESTAMPTZ,
  wifi_ssid         TEXT NOT NULL DEFAULT '',
  wifi_password     TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS device_outputs(
  owner_account TEXT NOT NULL,
  pin           INT NOT NULL,
  status        TEXT NOT NULL DEFAULT 'off',
  speed         INT NOT NULL DEFAULT 0,
  kind          TEXT NOT NULL DEFAULT 'switch',
  origin        TEXT NOT NULL DEFAULT 'app',
  observed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  logical_time  BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (owner_account, pin)
)`,
}

// EnsureSchema creates the three tables on startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		boundCtx, cancel := s.bound(ctx)
		_, err := s.DB.Exec(boundCtx, stmt)
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}
