package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/service"
)

type fakeSweeper struct {
	mu        sync.Mutex
	runs      int
	reminders int
	err       error
}

func (f *fakeSweeper) Run(_ context.Context, dryRun bool) (*service.SweepReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return &service.SweepReport{DryRun: dryRun, ExpiredSubscriptions: 2, CompletedPlans: 1}, nil
}

func (f *fakeSweeper) QueueReminders(_ context.Context, _ bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders++
	return 3, nil
}

func (f *fakeSweeper) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(&fakeSweeper{}, 0, nil)
	assert.Equal(t, time.Hour, svc.interval)
	assert.Equal(t, time.Local, svc.loc)
	assert.NotNil(t, svc.stopChan)
}

func TestService_StartAndStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	svc := NewService(sweeper, 10*time.Millisecond, time.UTC)

	svc.Start()
	assert.Eventually(t, func() bool { return sweeper.runCount() >= 2 }, time.Second, 5*time.Millisecond)
	svc.Stop()

	// 停止后不再执行
	n := sweeper.runCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, sweeper.runCount())
}

func TestService_StopTwice(t *testing.T) {
	svc := NewService(&fakeSweeper{}, time.Hour, time.UTC)
	svc.Start()
	svc.Stop()
	svc.Stop()
}

func TestService_RunNow(t *testing.T) {
	sweeper := &fakeSweeper{}
	svc := NewService(sweeper, time.Hour, time.UTC)

	report, err := svc.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.ExpiredSubscriptions)
	assert.Equal(t, 1, report.CompletedPlans)
	assert.Equal(t, 3, report.RemindersQueued)
	assert.False(t, report.DryRun)
}

func TestService_RunNow_Error(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("db down")}
	svc := NewService(sweeper, time.Hour, time.UTC)

	_, err := svc.RunNow(context.Background())
	assert.Error(t, err)
	assert.Zero(t, sweeper.reminders)
}

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before hour", time.Date(2024, 3, 1, 6, 30, 0, 0, loc), time.Date(2024, 3, 1, 8, 0, 0, 0, loc)},
		{"exactly at hour", time.Date(2024, 3, 1, 8, 0, 0, 0, loc), time.Date(2024, 3, 2, 8, 0, 0, 0, loc)},
		{"after hour", time.Date(2024, 3, 31, 22, 0, 0, 0, loc), time.Date(2024, 4, 1, 8, 0, 0, 0, loc)},
		{"utc input", time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC), time.Date(2024, 3, 1, 8, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(nextRun(tt.now, loc, reminderHour)), "got %s", nextRun(tt.now, loc, reminderHour))
		})
	}
}
