package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage implements Storage on top of a pgx connection pool. The
// activities table uses a bigserial primary key, so insertion ids are
// monotonic across the whole log.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Postgres-backed activity log. See pkg/pg for
// connecting and for the schema migrations this storage expects.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

// Insert appends one event and returns its id.
func (p *PostgresStorage) Insert(ctx context.Context, e *Event) (int64, error) {
	if e == nil || e.UserID == "" {
		return 0, ErrInvalidUserID
	}

	data, err := marshalEventData(e.Data)
	if err != nil {
		return 0, err
	}

	var id int64
	err = p.pool.QueryRow(ctx, `
		INSERT INTO activities (user_id, session_id, event_type, event_data, ip_address, user_agent, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.UserID, nullable(e.SessionID), e.Type.String(), data, nullable(e.IP), nullable(e.UserAgent), e.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return id, nil
}

// InsertBatch appends a batch of events inside one transaction so the batch
// lands atomically.
func (p *PostgresStorage) InsertBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range events {
		if e.UserID == "" {
			return ErrInvalidUserID
		}
		data, err := marshalEventData(e.Data)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO activities (user_id, session_id, event_type, event_data, ip_address, user_agent, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.UserID, nullable(e.SessionID), e.Type.String(), data, nullable(e.IP), nullable(e.UserAgent), e.Timestamp,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

const eventColumns = `id, user_id, COALESCE(session_id, ''), event_type, event_data, COALESCE(ip_address, ''), COALESCE(user_agent, ''), timestamp`

// ListByUser returns the user's events newest first, narrowed by the filter.
func (p *PostgresStorage) ListByUser(ctx context.Context, userID string, f Filter) ([]Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM activities
		WHERE user_id = $1 AND ($2 = '' OR event_type = $2)
		ORDER BY timestamp DESC, id DESC
		LIMIT $3 OFFSET $4`,
		userID, f.Type.String(), f.limit(), f.Offset)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListWindow returns events with start <= timestamp < end, newest first.
func (p *PostgresStorage) ListWindow(ctx context.Context, start, end time.Time) ([]Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM activities
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp DESC, id DESC`, start, end)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListAllByUser returns every event for the user, newest first.
func (p *PostgresStorage) ListAllByUser(ctx context.Context, userID string) ([]Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM activities
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC`, userID)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// CountByUser counts the user's events, optionally restricted to one type.
func (p *PostgresStorage) CountByUser(ctx context.Context, userID string, eventType EventType) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM activities
		WHERE user_id = $1 AND ($2 = '' OR event_type = $2)`,
		userID, eventType.String()).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return n, nil
}

// DeleteOlderThan removes events with timestamp before cutoff.
func (p *PostgresStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM activities WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByUser removes all of the user's events.
func (p *PostgresStorage) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM activities WHERE user_id = $1`, userID)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// CountsByType returns event counts grouped by type for events at or after
// since.
func (p *PostgresStorage) CountsByType(ctx context.Context, since time.Time) (map[string]int64, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT event_type, COUNT(*) FROM activities
		WHERE timestamp >= $1
		GROUP BY event_type`, since)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectCounts(rows)
}

// CountsByTypeForUser returns the user's event counts grouped by type.
func (p *PostgresStorage) CountsByTypeForUser(ctx context.Context, userID string) (map[string]int64, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT event_type, COUNT(*) FROM activities
		WHERE user_id = $1
		GROUP BY event_type`, userID)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectCounts(rows)
}

// DistinctUsers counts users with at least one event in [start, end).
func (p *PostgresStorage) DistinctUsers(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM activities
		WHERE timestamp >= $1 AND timestamp < $2`, start, end).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return n, nil
}

// DistinctUsersByType counts users with at least one event of the given
// type.
func (p *PostgresStorage) DistinctUsersByType(ctx context.Context, eventType EventType) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM activities
		WHERE event_type = $1`, eventType.String()).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return n, nil
}

// TopUsers returns the most active users by total event count.
func (p *PostgresStorage) TopUsers(ctx context.Context, limit int) ([]UserCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.pool.Query(ctx, `
		SELECT user_id, COUNT(*) AS n FROM activities
		GROUP BY user_id
		ORDER BY n DESC, user_id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []UserCount
	for rows.Next() {
		var uc UserCount
		if err := rows.Scan(&uc.UserID, &uc.Count); err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		out = append(out, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return out, nil
}

// Journey returns the user's events oldest first, optionally narrowed to a
// single session.
func (p *PostgresStorage) Journey(ctx context.Context, userID, sessionID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	rows, err := p.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM activities
		WHERE user_id = $1 AND ($2 = '' OR session_id = $2)
		ORDER BY timestamp ASC, id ASC
		LIMIT $3`, userID, sessionID, limit)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func marshalEventData(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Join(ErrInvalidEventType, err)
	}
	return b, nil
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var e Event
		var typ string
		var data []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.SessionID, &typ, &data, &e.IP, &e.UserAgent, &e.Timestamp); err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		e.Type = ParseEventType(typ)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.Data); err != nil {
				return nil, errors.Join(ErrStorageUnavailable, err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return out, nil
}

func collectCounts(rows pgx.Rows) (map[string]int64, error) {
	counts := make(map[string]int64)
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		counts[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return counts, nil
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
