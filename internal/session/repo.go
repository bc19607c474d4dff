package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists sessions and attendees in Postgres. It implements
// Store; cascade ordering (attendees first, session second) lives here, not
// in the schema.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo over an open connection pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionCols = `id, title, created_at, expires_at`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	if err := row.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionCols+` FROM sessions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionCols+` FROM sessions WHERE id = $1
	`, id)
	return scanSession(row)
}

func (r *Repository) InsertSession(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.Title, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *Repository) UpdateSession(ctx context.Context, id string, upd SessionUpdate) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE sessions
		SET title = COALESCE($2, title), expires_at = COALESCE($3, expires_at)
		WHERE id = $1
		RETURNING `+sessionCols+`
	`, id, upd.Title, upd.ExpiresAt)
	return scanSession(row)
}

// DeleteSession removes attendees and the session in one transaction.
// Attendee-first ordering means a failed transaction never leaves the
// session gone with its attendees intact.
func (r *Repository) DeleteSession(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendees WHERE session_id = $1`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertAttendee writes one record. The foreign key on session_id doubles as
// the existence re-check for submissions racing a session delete.
func (r *Repository) InsertAttendee(ctx context.Context, a Attendee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendees (id, session_id, name, department, student_id, signature, arrival_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.SessionID, a.Name, a.Department, a.StudentID, a.Signature, a.ArrivalTime)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrSessionNotFound
	}
	return err
}

func (r *Repository) ListAttendees(ctx context.Context, sessionID string) ([]Attendee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, name, department, student_id, signature, arrival_time
		FROM attendees
		WHERE session_id = $1
		ORDER BY arrival_time ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Name, &a.Department, &a.StudentID, &a.Signature, &a.ArrivalTime); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteAttendee(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteOrphans sweeps attendees whose session is gone. With the foreign key
// in place this should find nothing; it exists as the repair path for
// best-effort cleanup after partial failures.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM attendees a
		WHERE NOT EXISTS (SELECT 1 FROM sessions s WHERE s.id = a.session_id)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
