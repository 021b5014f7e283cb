package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	profile         TEXT PRIMARY KEY,
	application_key TEXT NOT NULL,
	auth_token      TEXT NOT NULL,
	world_id        TEXT NOT NULL,
	updated_at      INTEGER NOT NULL
);`

// CredentialStore persists credentials in a local SQLite file, one row per profile.
type CredentialStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the store at path.
func Open(path string) (*CredentialStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &CredentialStore{db: db, now: time.Now}, nil
}

// Close closes the underlying SQLite database.
func (s *CredentialStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *CredentialStore) SaveCredentials(ctx context.Context, key string, creds domain.Credentials) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO credentials (profile, application_key, auth_token, world_id, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(profile) DO UPDATE SET
	application_key = excluded.application_key,
	auth_token = excluded.auth_token,
	world_id = excluded.world_id,
	updated_at = excluded.updated_at`,
		key, creds.ApplicationKey, creds.AuthToken, creds.WorldID, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) LoadCredentials(ctx context.Context, key string) (domain.Credentials, error) {
	var c domain.Credentials
	err := s.db.QueryRowContext(ctx,
		`SELECT application_key, auth_token, world_id FROM credentials WHERE profile = ?`, key,
	).Scan(&c.ApplicationKey, &c.AuthToken, &c.WorldID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Credentials{}, domain.ErrCredentialsNotFound
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	return c, nil
}

func (s *CredentialStore) DeleteCredentials(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE profile = ?`, key); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
