// Package cache puts a Redis read-through layer in front of a rate repository.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/rate"
)

const keyPrefix = "rate:"

// Client is the subset of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type Repository struct {
	client Client
	next   rate.Repository
	ttl    time.Duration
}

func New(client Client, next rate.Repository, ttl time.Duration) *Repository {
	return &Repository{client: client, next: next, ttl: ttl}
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return client, nil
}

func key(cur currency.Code, date time.Time) string {
	return keyPrefix + cur.String() + ":" + date.Format(time.DateOnly)
}

func (r *Repository) GetRate(ctx context.Context, cur currency.Code, date time.Time) (decimal.Decimal, error) {
	k := key(cur, date)

	val, err := r.client.Get(ctx, k).Result()
	switch {
	case err == nil:
		if d, parseErr := decimal.NewFromString(val); parseErr == nil {
			return d, nil
		}

		slog.Warn("discarding malformed cached rate", "key", k, "value", val)
	case !errors.Is(err, redis.Nil):
		slog.Warn("reading rate cache", "key", k, "error", err)
	}

	d, err := r.next.GetRate(ctx, cur, date)
	if err != nil {
		return decimal.Zero, err
	}

	r.store(ctx, k, d)

	return d, nil
}

func (r *Repository) InsertRate(ctx context.Context, cur currency.Code, date time.Time, value decimal.Decimal) error {
	if err := r.next.InsertRate(ctx, cur, date, value); err != nil {
		return err
	}

	r.store(ctx, key(cur, date), value)

	return nil
}

func (r *Repository) store(ctx context.Context, k string, value decimal.Decimal) {
	if err := r.client.Set(ctx, k, value.String(), r.ttl).Err(); err != nil {
		slog.Warn("writing rate cache", "key", k, "error", err)
	}
}
