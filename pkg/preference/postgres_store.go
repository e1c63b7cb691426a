package preference

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgx connection pool. The document is
// a single jsonb column keyed by user_id, so an upsert is one statement.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed preference store. See pkg/pg for
// connecting and for the schema migrations this store expects.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save upserts the user's document.
func (p *PostgresStore) Save(ctx context.Context, userID string, prefs Preferences, now time.Time) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	doc, err := json.Marshal(prefs)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO preferences (user_id, preferences, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET preferences = EXCLUDED.preferences, updated_at = EXCLUDED.updated_at`,
		userID, doc, now)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// Load returns the user's document, or nil when nothing is stored.
func (p *PostgresStore) Load(ctx context.Context, userID string) (Preferences, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		`SELECT preferences FROM preferences WHERE user_id = $1`, userID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	var prefs Preferences
	if err := json.Unmarshal(doc, &prefs); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return prefs, nil
}

// Delete removes the user's document, reporting whether one existed.
func (p *PostgresStore) Delete(ctx context.Context, userID string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM preferences WHERE user_id = $1`, userID)
	if err != nil {
		return false, errors.Join(ErrStorageUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}
