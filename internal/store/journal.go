// Package store provides the local check-in journal, a SQLite log of the
// strong references each successful check-in produced.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dropanchor/anchor-go/internal/domain"
)

// timeLayout is RFC 3339 with a fixed-width fraction. Timestamps are stored
// as text and ordered lexically, so the width must not vary: the trimmed
// RFC3339Nano form sorts "…00.2Z" after "…00.25Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal is the SQLite-backed check-in log.
type Journal struct {
	db *sql.DB
}

// NewJournal opens or creates the journal database at the given path.
func NewJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkins (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		checkin_uri  TEXT NOT NULL UNIQUE,
		checkin_cid  TEXT NOT NULL,
		address_uri  TEXT NOT NULL,
		address_cid  TEXT NOT NULL,
		text         TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		verified     INTEGER,
		verified_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_checkins_created ON checkins(created_at DESC);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append records a successful check-in.
func (j *Journal) Append(ctx context.Context, entry domain.CheckinEntry) (int64, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO checkins (checkin_uri, checkin_cid, address_uri, address_cid, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Checkin.URI, entry.Checkin.CID,
		entry.Address.URI, entry.Address.CID,
		entry.Text, entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("append checkin: %w", err)
	}
	return res.LastInsertId()
}

// List returns journal entries newest first. limit <= 0 means all.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.CheckinEntry, error) {
	query := `
		SELECT id, checkin_uri, checkin_cid, address_uri, address_cid, text, created_at, verified, verified_at
		FROM checkins ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	var entries []domain.CheckinEntry
	for rows.Next() {
		var (
			e          domain.CheckinEntry
			createdAt  string
			verified   sql.NullBool
			verifiedAt sql.NullString
		)
		if err := rows.Scan(
			&e.ID,
			&e.Checkin.URI, &e.Checkin.CID,
			&e.Address.URI, &e.Address.CID,
			&e.Text, &createdAt, &verified, &verifiedAt,
		); err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}

		if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
			e.CreatedAt = t
		}
		if verified.Valid {
			v := verified.Bool
			e.Verified = &v
		}
		if verifiedAt.Valid {
			if t, perr := time.Parse(time.RFC3339Nano, verifiedAt.String); perr == nil {
				e.VerifiedAt = &t
			}
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// MarkVerified stores the latest verification result for an entry.
func (j *Journal) MarkVerified(ctx context.Context, id int64, ok bool) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE checkins SET verified = ?, verified_at = ? WHERE id = ?`,
		ok, time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "journal entry"}
	}
	return nil
}

// Get returns a single entry by check-in URI.
func (j *Journal) Get(ctx context.Context, checkinURI string) (*domain.CheckinEntry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, checkin_uri, checkin_cid, address_uri, address_cid, text, created_at, verified, verified_at
		FROM checkins WHERE checkin_uri = ?`, checkinURI)

	var (
		e          domain.CheckinEntry
		createdAt  string
		verified   sql.NullBool
		verifiedAt sql.NullString
	)
	err := row.Scan(
		&e.ID,
		&e.Checkin.URI, &e.Checkin.CID,
		&e.Address.URI, &e.Address.CID,
		&e.Text, &createdAt, &verified, &verifiedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "journal entry"}
	}
	if err != nil {
		return nil, fmt.Errorf("get checkin: %w", err)
	}

	if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		e.CreatedAt = t
	}
	if verified.Valid {
		v := verified.Bool
		e.Verified = &v
	}
	if verifiedAt.Valid {
		if t, perr := time.Parse(time.RFC3339Nano, verifiedAt.String); perr == nil {
			e.VerifiedAt = &t
		}
	}
	return &e, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
