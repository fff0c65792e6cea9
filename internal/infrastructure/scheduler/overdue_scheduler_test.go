package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockSweeper struct {
	mock.Mock
	calls atomic.Int32
}

func (m *mockSweeper) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	m.calls.Add(1)
	args := m.Called(now)
	return args.Int(0), args.Error(1)
}

var fixedNow = time.Date(2025, 6, 6, 8, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, sweeper OverdueSweeper, logger *zap.Logger) *OverdueScheduler {
	t.Helper()
	s, err := NewOverdueScheduler(sweeper, logger, OverdueSchedulerConfig{Enabled: true, Interval: time.Hour})
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestNewOverdueScheduler_Validation(t *testing.T) {
	_, err := NewOverdueScheduler(nil, nil, OverdueSchedulerConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewOverdueScheduler(&mockSweeper{}, nil, OverdueSchedulerConfig{Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	s, err := NewOverdueScheduler(&mockSweeper{}, nil, OverdueSchedulerConfig{})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, s.config.JobTimeout)
}

func TestOverdueScheduler_SweepsOnStartAndTrigger(t *testing.T) {
	sweeper := &mockSweeper{}
	sweeper.On("MarkOverdue", fixedNow).Return(2, nil)
	s := newTestScheduler(t, sweeper, nil)

	assert.ErrorIs(t, s.TriggerNow(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return sweeper.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.TriggerNow())
	assert.Eventually(t, func() bool { return sweeper.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	last, count := s.LastRun()
	assert.Equal(t, fixedNow, last)
	assert.Equal(t, 2, count)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestOverdueScheduler_Disabled(t *testing.T) {
	sweeper := &mockSweeper{}
	s, err := NewOverdueScheduler(sweeper, nil, OverdueSchedulerConfig{})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	sweeper.AssertNotCalled(t, "MarkOverdue", mock.Anything)
}

func TestOverdueScheduler_FailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	sweeper := &mockSweeper{}
	sweeper.On("MarkOverdue", fixedNow).Return(1, errors.New("db gone"))
	s := newTestScheduler(t, sweeper, zap.New(core))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return logs.FilterMessage("Overdue sweep failed").Len() == 1 }, time.Second, 5*time.Millisecond)

	last, _ := s.LastRun()
	assert.True(t, last.IsZero(), "failed sweeps do not count as a run")
}
