package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/freshnest/freshnest-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Run("nil error maps to nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("sql.ErrNoRows maps to ErrNotFound", func(t *testing.T) {
		err := MapError(sql.ErrNoRows)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unique violation maps to ErrDuplicate", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "gift_cards_code_key"}
		err := MapError(fmt.Errorf("insert failed: %w", pgErr))
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("foreign key violation maps to ErrInvalidEntity", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "orders_user_id_fkey"}
		err := MapError(pgErr)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Contains(t, err.Error(), "orders_user_id_fkey")
	})

	t.Run("check violation maps to ErrInvalidEntity", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: checkViolationCode, ConstraintName: "gift_cards_balance_check"}
		err := MapError(pgErr)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		orig := errors.New("connection reset")
		assert.Equal(t, orig, MapError(orig))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("other")))
	assert.False(t, IsUniqueViolation(nil))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffectedWith(t *testing.T) {
	t.Run("rows affected passes", func(t *testing.T) {
		assert.NoError(t, CheckRowsAffectedWith(fakeResult{rows: 1}, store.ErrOrderNotFound))
	})

	t.Run("zero rows returns the sentinel", func(t *testing.T) {
		err := CheckRowsAffectedWith(fakeResult{rows: 0}, store.ErrOrderNotFound)
		assert.ErrorIs(t, err, store.ErrOrderNotFound)
	})

	t.Run("rows affected error is wrapped", func(t *testing.T) {
		boom := errors.New("driver does not support RowsAffected")
		err := CheckRowsAffectedWith(fakeResult{err: boom}, store.ErrOrderNotFound)
		assert.ErrorIs(t, err, boom)
	})
}
