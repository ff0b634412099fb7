package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RunOnceReleasesLock(t *testing.T) {
	locker := lock.NewLocalLocker()
	s := NewScheduler(nil, locker, time.Minute, time.UTC, nil, zap.NewNop())

	var runs atomic.Int32
	job := Job{Name: "archive", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}

	s.RunOnce(context.Background(), job)
	s.RunOnce(context.Background(), job)
	assert.EqualValues(t, 2, runs.Load())

	ok, _, err := locker.TryLock(context.Background(), "job:archive", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScheduler_RunOnceSkipsWhenLocked(t *testing.T) {
	locker := lock.NewLocalLocker()
	ok, _, err := locker.TryLock(context.Background(), "job:passed_sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	s := NewScheduler(nil, locker, time.Minute, time.UTC, nil, zap.NewNop())
	called := false
	s.RunOnce(context.Background(), Job{Name: "passed_sweep", Run: func(context.Context) error {
		called = true
		return nil
	}})
	assert.False(t, called)
}

func TestScheduler_FailedJobStillUnlocks(t *testing.T) {
	locker := lock.NewLocalLocker()
	s := NewScheduler(nil, locker, time.Minute, time.UTC, nil, zap.NewNop())

	s.RunOnce(context.Background(), Job{Name: "archive", Run: func(context.Context) error {
		return errors.New("db down")
	}})

	ok, _, err := locker.TryLock(context.Background(), "job:archive", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScheduler_StartRunsJobsImmediately(t *testing.T) {
	done := make(chan struct{})
	s := NewScheduler([]Job{{
		Name: "passed_sweep",
		Spec: "not a cron spec",
		Run: func(context.Context) error {
			close(done)
			return nil
		},
	}}, lock.NewLocalLocker(), time.Minute, time.UTC, nil, zap.NewNop())

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestScheduler_CronUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	s := NewScheduler(nil, lock.NewLocalLocker(), time.Minute, loc, nil, zap.NewNop())

	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, loc, s.cron.Location())
}

func TestScheduler_NonPositiveLockTTLIsClamped(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Minute, time.Nanosecond} {
		s := NewScheduler(nil, lock.NewLocalLocker(), ttl, time.UTC, nil, zap.NewNop())
		assert.Equal(t, MinLockTTL, s.lockTTL)

		// задача дольше половины TTL не должна ронять продление блокировки
		assert.NotPanics(t, func() {
			s.RunOnce(context.Background(), Job{Name: "archive", Run: func(context.Context) error {
				time.Sleep(50 * time.Millisecond)
				return nil
			}})
		})
	}
}
