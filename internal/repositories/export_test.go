package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressly/goose/v3"
)

// SetRateLimitClock pins the limiter clock for the duration of a test.
func SetRateLimitClock(now time.Time) (restore func()) {
	prev := rateLimitClock
	rateLimitClock = func() time.Time { return now }
	return func() { rateLimitClock = prev }
}

func SetGooseUp(fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) (restore func()) {
	prev := gooseUpContext
	gooseUpContext = fn
	return func() { gooseUpContext = prev }
}
