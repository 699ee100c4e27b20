package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUPISequenceRepositoryNext(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUPISequenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO upi_sequences (prefix, last_value, updated_at) VALUES ($1, 1, $2)")).
		WithArgs("BT", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(5))

	value, err := repo.Next(context.Background(), "BT")
	require.NoError(t, err)
	assert.Equal(t, int64(5), value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeCounter struct {
	keys  []string
	value int64
	err   error
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.keys = append(f.keys, key)
	f.value++
	return redis.NewIntResult(f.value, f.err)
}

func TestRedisSequenceRepositoryNext(t *testing.T) {
	counter := &fakeCounter{}
	repo := &RedisSequenceRepository{client: counter}

	first, err := repo.Next(context.Background(), "BK")
	require.NoError(t, err)
	second, err := repo.Next(context.Background(), "BK")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, []string{"ecde:upi:seq:BK", "ecde:upi:seq:BK"}, counter.keys)
}

func TestRedisSequenceRepositoryError(t *testing.T) {
	repo := &RedisSequenceRepository{client: &fakeCounter{err: errors.New("connection refused")}}

	_, err := repo.Next(context.Background(), "BT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis incr ecde:upi:seq:BT")
}
