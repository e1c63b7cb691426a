package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/trackkit/trackkit/pkg/pg"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("load session: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.False(t, pg.IsNotFoundError(errors.New("connection reset")))
}

func TestIsTxClosedError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))
	assert.True(t, pg.IsTxClosedError(fmt.Errorf("commit: %w", pgx.ErrTxClosed)))
	assert.False(t, pg.IsTxClosedError(nil))
	assert.False(t, pg.IsTxClosedError(pgx.ErrNoRows))
}

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "sessions_pkey"}
	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.True(t, pg.IsDuplicateKeyError(fmt.Errorf("insert session: %w", dup)))

	assert.False(t, pg.IsDuplicateKeyError(nil))
	assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsDuplicateKeyError(errors.New("23505")), "code must come from a PgError")
}

func TestIsForeignKeyViolationError(t *testing.T) {
	t.Parallel()

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.True(t, pg.IsForeignKeyViolationError(fmt.Errorf("insert activity: %w", fk)))

	assert.False(t, pg.IsForeignKeyViolationError(nil))
	assert.False(t, pg.IsForeignKeyViolationError(&pgconn.PgError{Code: "23505"}))
}
