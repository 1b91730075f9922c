// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
)

const defaultJobInterval = 30 * time.Second

type tickerJob struct {
	name     string
	interval time.Duration
	tick     func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

func newTickerJob(name string, interval time.Duration, tick func(ctx context.Context), log *logger.Logger) *tickerJob {
	if interval <= 0 {
		interval = defaultJobInterval
	}
	return &tickerJob{
		name:     name,
		interval: interval,
		tick:     tick,
		logger:   log.WithComponent(name),
	}
}

// NewRetentionJob returns a job that sweeps due deletions on every tick.
func NewRetentionJob(retention *RetentionScheduler, interval time.Duration, log *logger.Logger) Job {
	return newTickerJob("retention_job", interval, func(ctx context.Context) {
		retention.SweepNow(ctx)
	}, log)
}

// NewPendingReaperJob returns a job that fails pending messages whose send
// was lost, e.g. because the process died mid-send.
func NewPendingReaperJob(engine *SyncEngine, interval time.Duration, log *logger.Logger) Job {
	return newTickerJob("pending_reaper_job", interval, func(ctx context.Context) {
		if _, err := engine.AbandonStalePending(ctx); err != nil {
			log.Err(err).Str("func", "pendingReaperJob").Msg("failed to abandon stale pending messages")
		}
	}, log)
}

// Start implements Job. It stops a previous run first. The loop exits when
// ctx is cancelled or Stop is called.
func (j *tickerJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	j.logger.Debug().Dur("interval", j.interval).Msg("job started")

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.tick(jobCtx)
			}
		}
	}()
}

// Stop implements Job. It blocks until the loop has exited and is a no-op
// when the job is not running.
func (j *tickerJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
