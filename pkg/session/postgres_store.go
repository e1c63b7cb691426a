package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on top of a pgx connection pool. Every
// mutation is a single SQL statement, so each logical operation is atomic
// with respect to both concurrent writers and crashes; the conditional
// predicates in Touch and MergeData express the sliding-expiration
// read-modify-write without a separate read.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store. The pool is
// process-wide state owned by the caller; see pkg/pg for connecting and for
// running the schema migrations this store expects.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert stores a new session record.
func (p *PostgresStore) Insert(ctx context.Context, s *Session, now time.Time) error {
	if s == nil || s.ID == "" || s.UserID == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(s.Data)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, user_id, created_at, expires_at, last_activity, data, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt, s.LastActivityAt, data, s.IP, s.UserAgent,
	)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// Get retrieves a session by identifier regardless of expiry.
func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT session_id, user_id, created_at, expires_at, last_activity, data, ip_address, user_agent
		FROM sessions WHERE session_id = $1`, id)

	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return s, nil
}

// Touch re-extends the expiry iff the session is still live at now. The
// predicate makes a racing cleanup resolve deterministically to expired.
func (p *PostgresStore) Touch(ctx context.Context, id string, now, expiresAt time.Time) (bool, error) {
	tag, err := p.pool.Exec(ctx, `
		UPDATE sessions SET last_activity = $2, expires_at = $3
		WHERE session_id = $1 AND expires_at > $2`,
		id, now, expiresAt,
	)
	if err != nil {
		return false, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

// MergeData merges kv into the jsonb data column in one statement.
func (p *PostgresStore) MergeData(ctx context.Context, id string, kv map[string]any, now time.Time) (bool, error) {
	patch, err := json.Marshal(kv)
	if err != nil {
		return false, errors.Join(ErrInvalidSession, err)
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE sessions SET data = COALESCE(data, '{}'::jsonb) || $2::jsonb, last_activity = $3
		WHERE session_id = $1 AND expires_at > $3`,
		id, patch, now,
	)
	if err != nil {
		return false, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a session. Absent ids are ignored.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, id); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// DeleteExpired removes every session past its expiry at now.
func (p *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// ActiveByUser returns the user's unexpired sessions, newest first.
func (p *PostgresStore) ActiveByUser(ctx context.Context, userID string, now time.Time) ([]Session, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT session_id, user_id, created_at, expires_at, last_activity, data, ip_address, user_agent
		FROM sessions WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`, userID, now)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListByUser returns all of the user's sessions including expired ones.
func (p *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT session_id, user_id, created_at, expires_at, last_activity, data, ip_address, user_agent
		FROM sessions WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// DeleteByUser removes all of the user's sessions.
func (p *PostgresStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// CountActive returns the number of unexpired sessions at now.
func (p *PostgresStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at > $1`, now).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return n, nil
}

// DeleteCreatedBefore removes sessions created before cutoff regardless of
// expiry. Used by retention.
func (p *PostgresStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// CountByUser returns the total number of sessions recorded for the user.
func (p *PostgresStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return n, nil
}

// AvgDuration returns the mean of last_activity-created_at across sessions.
// An empty userID averages over all sessions.
func (p *PostgresStore) AvgDuration(ctx context.Context, userID string) (time.Duration, error) {
	var seconds float64
	err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (last_activity - created_at))), 0)
		FROM sessions WHERE ($1 = '' OR user_id = $1)`, userID).Scan(&seconds)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var data []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.LastActivityAt, &data, &s.IP, &s.UserAgent); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.Data); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]Session, error) {
	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return out, nil
}
