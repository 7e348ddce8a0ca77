// Package credsqlite persists session credentials in a SQLite database, one
// slot per named profile. Useful when an operator drives several accounts
// from one machine and wants them in a single file.
package credsqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quillpress/quillctl/internal/domain/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	profile    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// Store is a SQLite-backed session.CredentialStore scoped to one profile.
type Store struct {
	db      *sql.DB
	profile string
	logger  *slog.Logger
}

// Open opens (creating if needed) the credential database at path and returns
// a Store bound to the given profile. Caller must call Close when done.
func Open(path, profile string, logger *slog.Logger) (*Store, error) {
	if profile == "" {
		profile = "default"
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open credential db: %w", err)
	}
	// SQLite serializes writers; a second connection would only block.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply credential schema: %w", err)
	}

	return &Store{db: db, profile: profile, logger: logger}, nil
}

// Load returns the profile's session, or (nil, nil) when the slot is empty
// or its payload is malformed.
func (s *Store) Load(ctx context.Context) (*session.Session, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM credentials WHERE profile = ?`, s.profile,
	).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		s.logger.Warn("credential row malformed, treating as absent",
			"profile", s.profile, "error", err)
		return nil, nil
	}
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save upserts the profile's slot.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO credentials (profile, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(profile) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.profile, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Debug("credentials saved", "profile", s.profile)
	return nil
}

// Clear deletes the profile's slot. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE profile = ?`, s.profile); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Profiles lists the profiles that currently hold a session.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile FROM credentials ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ session.CredentialStore = (*Store)(nil)
