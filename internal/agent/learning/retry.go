package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

const (
	defaultRetries = 3 // 3 retries = 4 total attempts
	defaultBackoff = time.Second
)

// Retry re-runs a store operation with a linear backoff of Backoff × attempt.
type Retry struct {
	Retries int
	Backoff time.Duration
}

func DefaultRetry() Retry {
	return Retry{Retries: defaultRetries, Backoff: defaultBackoff}
}

func (r Retry) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= r.Retries; attempt++ {
		if attempt > 0 {
			wait := time.NewTimer(r.Backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				wait.Stop()
				return fmt.Errorf("retry aborted after %d attempts: %w", attempt, lastErr)
			case <-wait.C:
			}
		}

		attempts++
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || permanent(lastErr) {
			break
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// mysql error numbers that a retry cannot fix.
var mysqlPermanent = map[uint16]bool{
	1062: true, // duplicate entry
	1064: true, // syntax error
	1146: true, // table doesn't exist
	1406: true, // data too long
}

const sqliteConstraint = 19

// permanent reports errors that fail the same way on every attempt:
// missing rows, constraint and syntax violations, and cancellation.
func permanent(err error) bool {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlPermanent[myErr.Number]
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23: integrity constraint violation, 42: syntax error or access rule violation
		return len(pgErr.Code) == 5 && (pgErr.Code[:2] == "23" || pgErr.Code[:2] == "42")
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqliteConstraint
	}
	return false
}
