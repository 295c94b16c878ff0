package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/rate"
	"github.com/MrJamesThe3rd/billable/internal/rate/cache"
)

type fakeRedis struct {
	data    map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}

	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.setKeys = append(f.setKeys, key)

	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}

	f.data[key] = value.(string)

	return redis.NewStatusResult("OK", nil)
}

var day = time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

func TestRepository_GetRate(t *testing.T) {
	t.Run("hit skips the database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := rate.NewMockRepository(ctrl)
		next.EXPECT().GetRate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rdb := newFakeRedis()
		rdb.data["rate:EUR:2025-02-03"] = "4.2132"

		got, err := cache.New(rdb, next, time.Hour).GetRate(context.Background(), currency.EUR, day)
		require.NoError(t, err)
		assert.Equal(t, "4.2132", got.String())
	})

	t.Run("miss reads through and populates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := rate.NewMockRepository(ctrl)
		next.EXPECT().GetRate(gomock.Any(), currency.USD, day).Return(decimal.RequireFromString("4.05"), nil)

		rdb := newFakeRedis()

		got, err := cache.New(rdb, next, time.Hour).GetRate(context.Background(), currency.USD, day)
		require.NoError(t, err)
		assert.Equal(t, "4.05", got.String())
		assert.Equal(t, "4.05", rdb.data["rate:USD:2025-02-03"])
	})

	t.Run("not found is not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := rate.NewMockRepository(ctrl)
		next.EXPECT().GetRate(gomock.Any(), currency.USD, day).Return(decimal.Zero, apperror.ErrNotFound)

		rdb := newFakeRedis()

		_, err := cache.New(rdb, next, time.Hour).GetRate(context.Background(), currency.USD, day)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Empty(t, rdb.setKeys)
	})

	t.Run("redis failure falls back to database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := rate.NewMockRepository(ctrl)
		next.EXPECT().GetRate(gomock.Any(), currency.EUR, day).Return(decimal.RequireFromString("4.2"), nil)

		rdb := newFakeRedis()
		rdb.getErr = errors.New("connection refused")
		rdb.setErr = errors.New("connection refused")

		got, err := cache.New(rdb, next, time.Hour).GetRate(context.Background(), currency.EUR, day)
		require.NoError(t, err)
		assert.Equal(t, "4.2", got.String())
	})
}

func TestRepository_InsertRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := rate.NewMockRepository(ctrl)

	value := decimal.RequireFromString("4.31")
	next.EXPECT().InsertRate(gomock.Any(), currency.EUR, day, value).Return(nil)

	rdb := newFakeRedis()

	err := cache.New(rdb, next, time.Hour).InsertRate(context.Background(), currency.EUR, day, value)
	require.NoError(t, err)
	assert.Equal(t, "4.31", rdb.data["rate:EUR:2025-02-03"])
}
