package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// dialPolicy bounds how long openDatabase waits for Postgres to come up.
type dialPolicy struct {
	pingTimeout    time.Duration
	maxWait        time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

var defaultDialPolicy = dialPolicy{
	pingTimeout:    5 * time.Second,
	maxWait:        30 * time.Second,
	initialBackoff: 500 * time.Millisecond,
	maxBackoff:     5 * time.Second,
}

// openDatabase opens a pgx-backed pool and pings it with exponential backoff
// until the instance responds or the policy's wait budget runs out.
func openDatabase(ctx context.Context, logger zerolog.Logger, dsn string, policy dialPolicy) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	deadline := time.Now().Add(policy.maxWait)
	backoff := policy.initialBackoff
	var lastErr error

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, policy.pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("retry_in", backoff).Msg("database not ready")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > policy.maxBackoff {
			backoff = policy.maxBackoff
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
