package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"prompteria-api/logger"
)

// ErrUnavailable is returned when the store cannot be reached after all retries.
var ErrUnavailable = errors.New("database unavailable")

// RetryConfig bounds the connect loop: attempt n waits min(BaseDelay*2^n, MaxDelay).
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Opener dials the store. Tests swap it for an in-memory dialect.
type Opener func() (*gorm.DB, error)

// Handle owns the process-wide store connection. It is created once in main,
// connects lazily on first use, and redials after Invalidate. Callers that
// need the store take a *Handle rather than reaching for a global.
type Handle struct {
	open  Opener
	retry RetryConfig
	log   logger.Logger
	sleep func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	db   *gorm.DB
	dial singleflight.Group
}

// NewHandle returns a handle that dials MySQL at databaseURL on first use.
func NewHandle(databaseURL string, retry RetryConfig, log logger.Logger) *Handle {
	return NewHandleWithOpener(func() (*gorm.DB, error) {
		return Initialize(databaseURL)
	}, retry, log)
}

// NewHandleWithOpener returns a handle backed by a custom opener.
func NewHandleWithOpener(open Opener, retry RetryConfig, log logger.Logger) *Handle {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Handle{
		open:  open,
		retry: retry,
		log:   log,
		sleep: sleepContext,
	}
}

// Initialize opens a MySQL connection without retries.
func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// DB returns the live connection, dialing with capped exponential backoff if
// there is none yet. Concurrent callers share one dial cycle; each waits only
// as long as its own ctx allows. A failed cycle is not cached: the next call
// starts over.
func (h *Handle) DB(ctx context.Context) (*gorm.DB, error) {
	if db := h.current(); db != nil {
		return db.WithContext(ctx), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// The cycle outlives callers that give up so the remaining waiters
	// still get its result.
	ch := h.dial.DoChan("dial", func() (any, error) {
		return h.connect(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*gorm.DB).WithContext(ctx), nil
	}
}

func (h *Handle) current() *gorm.DB {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db
}

// connect runs one dial cycle and publishes the connection on success.
func (h *Handle) connect(ctx context.Context) (*gorm.DB, error) {
	if db := h.current(); db != nil {
		return db, nil
	}

	var lastErr error
	for attempt := 0; attempt < h.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := h.backoff(attempt)
			h.log.Info("Retrying database connection",
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", h.retry.MaxAttempts),
				logger.Duration("delay", delay),
			)
			if err := h.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
			}
		}

		db, err := h.open()
		if err == nil {
			if err = ping(ctx, db); err != nil {
				if sqlDB, dbErr := db.DB(); dbErr == nil {
					_ = sqlDB.Close()
				}
			}
		}
		if err == nil {
			h.mu.Lock()
			h.db = db
			h.mu.Unlock()
			h.log.Info("Database connected", logger.Int("attempt", attempt+1))
			return db, nil
		}

		lastErr = err
		h.log.Warn("Database connection failed",
			logger.Int("attempt", attempt+1),
			logger.Error(err),
		)
	}

	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

// Invalidate drops the current connection so the next DB call redials.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return
	}
	if sqlDB, err := h.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	h.db = nil
}

// Reconnect dials the store if there is no live connection.
func (h *Handle) Reconnect(ctx context.Context) error {
	_, err := h.DB(ctx)
	return err
}

// Ping checks the current connection without dialing a new one.
func (h *Handle) Ping(ctx context.Context) error {
	h.mu.Lock()
	db := h.db
	h.mu.Unlock()

	if db == nil {
		return ErrUnavailable
	}
	return ping(ctx, db)
}

// Close releases the connection pool.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	h.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (h *Handle) backoff(attempt int) time.Duration {
	delay := h.retry.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if h.retry.MaxDelay > 0 && delay >= h.retry.MaxDelay {
			return h.retry.MaxDelay
		}
	}
	return delay
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
