package jobs

import (
	"context"
	"sync"
	"time"

	"prompteria-api/logger"
)

// Store is the connection the monitor watches. *database.Handle implements it.
type Store interface {
	Ping(ctx context.Context) error
	Invalidate()
	Reconnect(ctx context.Context) error
}

// ConnectionMonitorJob periodically pings the store, drops a broken
// connection and redials it in the background so requests do not pay for
// the reconnect.
type ConnectionMonitorJob struct {
	store    Store
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConnectionMonitorJob(store Store, interval time.Duration, log logger.Logger) *ConnectionMonitorJob {
	return &ConnectionMonitorJob{
		store:    store,
		interval: interval,
		timeout:  5 * time.Second,
		log:      log,
	}
}

// Start begins the monitor loop.
func (j *ConnectionMonitorJob) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.log.Info("Connection monitor started", logger.Duration("interval", j.interval))

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Check(ctx)
			case <-ctx.Done():
				j.log.Info("Connection monitor stopped")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-progress check to finish.
func (j *ConnectionMonitorJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
}

// Check runs one probe. It reports whether the store is healthy afterwards.
func (j *ConnectionMonitorJob) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, j.timeout)
	err := j.store.Ping(pingCtx)
	cancel()
	if err == nil {
		return true
	}

	j.log.Warn("Database ping failed, reconnecting", logger.Error(err))
	j.store.Invalidate()

	if err := j.store.Reconnect(ctx); err != nil {
		j.log.Error("Database reconnect failed", logger.Error(err))
		return false
	}

	j.log.Info("Database reconnected")
	return true
}
