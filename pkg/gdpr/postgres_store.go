package gdpr

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trackkit/trackkit/pkg/activity"
	"github.com/trackkit/trackkit/pkg/consent"
	"github.com/trackkit/trackkit/pkg/preference"
	"github.com/trackkit/trackkit/pkg/session"
)

// PostgresStore implements Store over a pgx connection pool. Both operations
// run inside one transaction: the export is a consistent snapshot, and a
// failed erasure rolls back without touching any table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed GDPR store. It queries the same
// tables the other packages' stores own; see pkg/pg for the migrations.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ExportUser reads the user's data from all four tables in one transaction.
func (p *PostgresStore) ExportUser(ctx context.Context, userID string) (UserData, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return UserData{}, errors.Join(ErrStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var data UserData
	if data.Sessions, err = exportSessions(ctx, tx, userID); err != nil {
		return UserData{}, err
	}
	if data.Activities, err = exportActivities(ctx, tx, userID); err != nil {
		return UserData{}, err
	}
	if data.Preferences, err = exportPreferences(ctx, tx, userID); err != nil {
		return UserData{}, err
	}
	if data.Consent, err = exportConsent(ctx, tx, userID); err != nil {
		return UserData{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return UserData{}, errors.Join(ErrStorageUnavailable, err)
	}
	return data, nil
}

// EraseUser deletes the user from all four tables in one transaction.
func (p *PostgresStore) EraseUser(ctx context.Context, userID string) (ErasureSummary, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return ErasureSummary{}, errors.Join(ErrStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var summary ErasureSummary
	deletes := []struct {
		query string
		count *int64
	}{
		{`DELETE FROM sessions WHERE user_id = $1`, &summary.Sessions},
		{`DELETE FROM activities WHERE user_id = $1`, &summary.Activities},
		{`DELETE FROM preferences WHERE user_id = $1`, &summary.Preferences},
		{`DELETE FROM consent WHERE user_id = $1`, &summary.Consents},
	}
	for _, d := range deletes {
		tag, err := tx.Exec(ctx, d.query, userID)
		if err != nil {
			return ErasureSummary{}, errors.Join(ErrStorageUnavailable, err)
		}
		*d.count = tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return ErasureSummary{}, errors.Join(ErrStorageUnavailable, err)
	}
	return summary, nil
}

func exportSessions(ctx context.Context, tx pgx.Tx, userID string) ([]session.Session, error) {
	rows, err := tx.Query(ctx, `
		SELECT session_id, user_id, created_at, expires_at, last_activity, data, ip_address, user_agent
		FROM sessions WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		var s session.Session
		var data []byte
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.LastActivityAt, &data, &s.IP, &s.UserAgent); err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &s.Data); err != nil {
				return nil, errors.Join(ErrStorageUnavailable, err)
			}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return out, nil
}

func exportActivities(ctx context.Context, tx pgx.Tx, userID string) ([]activity.Event, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, user_id, COALESCE(session_id, ''), event_type, event_data, COALESCE(ip_address, ''), COALESCE(user_agent, ''), timestamp
		FROM activities WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC`, userID)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []activity.Event
	for rows.Next() {
		var e activity.Event
		var typ string
		var data []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.SessionID, &typ, &data, &e.IP, &e.UserAgent, &e.Timestamp); err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		e.Type = activity.ParseEventType(typ)
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

func exportPreferences(ctx context.Context, tx pgx.Tx, userID string) (preference.Preferences, error) {
	var doc []byte
	err := tx.QueryRow(ctx,
		`SELECT preferences FROM preferences WHERE user_id = $1`, userID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	var prefs preference.Preferences
	if err := json.Unmarshal(doc, &prefs); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return prefs, nil
}

func exportConsent(ctx context.Context, tx pgx.Tx, userID string) ([]consent.Record, error) {
	rows, err := tx.Query(ctx, `
		SELECT user_id, consent_type, granted, timestamp
		FROM consent WHERE user_id = $1
		ORDER BY consent_type`, userID)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []consent.Record
	for rows.Next() {
		var rec consent.Record
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
