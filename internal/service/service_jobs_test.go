// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

func countingJob(interval time.Duration) (*tickerJob, *atomic.Int64) {
	var calls atomic.Int64
	job := newTickerJob("test_job", interval, func(context.Context) { calls.Add(1) }, logger.Nop())
	return job, &calls
}

func TestTickerJob_TicksUntilStopped(t *testing.T) {
	job, calls := countingJob(10 * time.Millisecond)

	job.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	job.Stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "no ticks after Stop")
}

func TestTickerJob_StopBeforeStart(t *testing.T) {
	job, _ := countingJob(10 * time.Millisecond)
	assert.NotPanics(t, func() { job.Stop() })
}

func TestTickerJob_ContextCancellationStops(t *testing.T) {
	job, calls := countingJob(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx)
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	job.Stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestTickerJob_RestartReplacesLoop(t *testing.T) {
	job, calls := countingJob(10 * time.Millisecond)

	job.Start(context.Background())
	job.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	job.Stop()
}

func TestTickerJob_DefaultInterval(t *testing.T) {
	job, _ := countingJob(0)
	assert.Equal(t, defaultJobInterval, job.interval)
}

func TestRetentionJob_Sweeps(t *testing.T) {
	env := newTestEnv(t)
	env.reconcileOnce(t, "chat-1", env.incoming(t, "srv-1", "chat-1", 1000, models.TypeText, "bye", "SENT"))
	require.NoError(t, env.retention.ScheduleMessageDeletion(env.ctx, "srv-1", models.After(0)))

	job := NewRetentionJob(env.retention, 10*time.Millisecond, logger.Nop())
	job.Start(env.ctx)
	defer job.Stop()

	require.Eventually(t, func() bool {
		return len(env.rows(t, "chat-1")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
