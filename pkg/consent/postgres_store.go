package consent

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgx connection pool. The consent
// table's primary key is (user_id, consent_type), so an upsert is one
// statement.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed consent store. See pkg/pg for
// connecting and for the schema migrations this store expects.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Upsert replaces any previous decision for the same (user, type).
func (p *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	if rec.UserID == "" {
		return ErrInvalidUserID
	}
	if rec.Type == "" {
		return ErrInvalidType
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO consent (user_id, consent_type, granted, timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, consent_type) DO UPDATE
		SET granted = EXCLUDED.granted, timestamp = EXCLUDED.timestamp`,
		rec.UserID, rec.Type, rec.Granted, rec.Timestamp)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// Get returns the decision for (user, type), reporting absence via the boolean.
func (p *PostgresStore) Get(ctx context.Context, userID, consentType string) (Record, bool, error) {
	var rec Record
	err := p.pool.QueryRow(ctx, `
		SELECT user_id, consent_type, granted, timestamp
		FROM consent
		WHERE user_id = $1 AND consent_type = $2`,
		userID, consentType).Scan(&rec.UserID, &rec.Type, &rec.Granted, &rec.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Join(ErrStorageUnavailable, err)
	}
	return rec, true, nil
}

// All returns the user's decisions ordered by consent type.
func (p *PostgresStore) All(ctx context.Context, userID string) ([]Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT user_id, consent_type, granted, timestamp
		FROM consent
		WHERE user_id = $1
		ORDER BY consent_type`, userID)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.UserID, &rec.Type, &rec.Granted, &rec.Timestamp); err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return out, nil
}

// DeleteByUser removes all of the user's decisions.
func (p *PostgresStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM consent WHERE user_id = $1`, userID)
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}
