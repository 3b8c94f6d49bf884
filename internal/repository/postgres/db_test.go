package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"shg-service/pkg/apperror"
)

func TestWrapQueryErr(t *testing.T) {
	notFound := wrapQueryErr(sql.ErrNoRows, "period", "get")
	assert.True(t, apperror.Is(notFound, apperror.KindNotFound))
	assert.ErrorIs(t, notFound, sql.ErrNoRows)
	assert.Contains(t, notFound.Error(), "period not found")

	dup := wrapQueryErr(fmt.Errorf("exec: %w", &pq.Error{Code: uniqueViolation}), "period", "create")
	assert.True(t, apperror.Is(dup, apperror.KindConflict))

	other := wrapQueryErr(errors.New("connection reset"), "period", "update")
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(other))
	assert.EqualError(t, other, "failed to update period: connection reset")
}

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

func TestCheckAffected(t *testing.T) {
	assert.NoError(t, checkAffected(fakeResult{rows: 1}, "loan"))
	assert.True(t, apperror.Is(checkAffected(fakeResult{}, "loan"), apperror.KindNotFound))
}
