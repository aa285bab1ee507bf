// internal/store/sqlite.go
//
// SQLite implementation of Store (table "sessions", see assets/migrations).
//
// Notes:
//   - Guesses are stored as a JSON array.
//   - Timestamps use a fixed-width UTC layout so string comparison orders them.
//   - Update runs inside a transaction; open the DB with _txlock=immediate so
//     concurrent Updates queue on the write lock instead of failing on upgrade.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/davidcallanan/wordle/internal/game"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened, migrated database.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *sqliteStore) Save(ctx context.Context, sess *game.Session) error {
	return upsert(ctx, s.db, sess)
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*game.Session, error) {
	return load(ctx, s.db, id)
}

func (s *sqliteStore) Update(ctx context.Context, id string, fn func(*game.Session) error) (*game.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sess, err := load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	before := sess.Clone()
	if err := fn(sess); err != nil {
		return before, err
	}
	if err := upsert(ctx, tx, sess); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return sess, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
	return err
}

func (s *sqliteStore) Sweep(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE state <> ? OR updated_at < ?`,
		string(game.StatePlaying), before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func upsert(ctx context.Context, q queryer, sess *game.Session) error {
	guesses, err := json.Marshal(sess.Guesses)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
        INSERT INTO sessions
            (id, owner, solution, max_attempts, remaining, guesses, state, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            remaining=excluded.remaining,
            guesses=excluded.guesses,
            state=excluded.state,
            updated_at=excluded.updated_at`,
		sess.ID, sess.Owner, sess.Solution, sess.MaxAttempts, sess.Remaining, string(guesses),
		string(sess.State), sess.CreatedAt.UTC().Format(timeLayout), sess.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

func load(ctx context.Context, q queryer, id string) (*game.Session, error) {
	var (
		sess             game.Session
		guesses, state   string
		created, updated string
	)
	err := q.QueryRowContext(ctx, `
        SELECT id, owner, solution, max_attempts, remaining, guesses, state, created_at, updated_at
        FROM sessions WHERE id=?`, id,
	).Scan(&sess.ID, &sess.Owner, &sess.Solution, &sess.MaxAttempts, &sess.Remaining,
		&guesses, &state, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(guesses), &sess.Guesses); err != nil {
		return nil, fmt.Errorf("decode guesses of %s: %w", id, err)
	}
	sess.State = game.State(state)
	sess.CreatedAt, _ = time.Parse(timeLayout, created)
	sess.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &sess, nil
}
