package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"caustics/internal/core"
	"caustics/internal/pipeline"
	"caustics/internal/render"
	"caustics/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T, host *Host) *scheduler.Scheduler {
	t.Helper()
	s, err := scheduler.New(host, &core.ManualClock{}, pipeline.Default(), []render.Source{render.CPUSource(1)}, scheduler.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(s.Destroy)
	return s
}

// pump runs frames while the host has requests pending, at most n times.
func pump(t *testing.T, host *Host, s *scheduler.Scheduler, n int) {
	t.Helper()
	for i := 0; i < n && host.TakeFrameRequest(); i++ {
		require.NoError(t, s.Frame(context.Background()))
	}
}

func TestHostInteractionActivates(t *testing.T) {
	host := NewHost(40, 20)
	assert.False(t, host.Interact(scheduler.TriggerClick), "nothing armed before start")

	s := newScheduler(t, host)
	pump(t, host, s, 1)
	assert.Equal(t, scheduler.AwaitingActivation, s.Status().State)

	assert.True(t, host.Interact(scheduler.TriggerKey))
	assert.False(t, host.Interact(scheduler.TriggerClick), "race already settled")
	pump(t, host, s, 1)

	assert.Equal(t, scheduler.Active, s.Status().State)
	assert.Equal(t, scheduler.TriggerKey, s.Trigger())
	require.NotNil(t, s.Backend())
	assert.Equal(t, "cpu", s.Backend().Name())
}

func TestHostIdleActivates(t *testing.T) {
	host := NewHost(40, 20)
	s := newScheduler(t, host)
	assert.True(t, host.Idle())
	pump(t, host, s, 1)
	assert.Equal(t, scheduler.TriggerIdle, s.Trigger())
	assert.False(t, host.Interact("hover"))
}

func TestHostVisibility(t *testing.T) {
	host := NewHost(40, 20)
	s := newScheduler(t, host)
	host.Idle()
	pump(t, host, s, 2)
	require.Equal(t, scheduler.Active, s.Status().State)

	host.SetVisibility(0)
	assert.Equal(t, scheduler.Paused, s.Status().State)
	host.TakeFrameRequest()

	host.SetVisibility(1)
	assert.Equal(t, scheduler.Active, s.Status().State)
	assert.True(t, host.TakeFrameRequest(), "resume asks for a frame")
}

func TestHostReportsInitialVisibility(t *testing.T) {
	host := NewHost(40, 20)
	s := newScheduler(t, host)
	host.SetVisibility(0)
	host.Idle()
	pump(t, host, s, 1)
	assert.Equal(t, scheduler.Paused, s.Status().State)
}

func TestHostResize(t *testing.T) {
	host := NewHost(40, 20)
	s := newScheduler(t, host)
	host.Idle()
	pump(t, host, s, 2)

	calls := 0
	stop := host.WatchResize(func(int, int) { calls++ })
	host.SetSize(40, 20)
	assert.Zero(t, calls, "same size is not a change")

	host.SetSize(80, 40)
	assert.Equal(t, 1, calls)
	assert.Equal(t, core.Size{W: 80, H: 40}, s.Viewport().Surface)

	cpu, ok := s.Backend().(*render.CPU)
	require.True(t, ok)
	pump(t, host, s, 1)
	res := s.Resolution()
	assert.Equal(t, res.W, cpu.Image().Bounds().Dx())
	assert.Equal(t, res.H, cpu.Image().Bounds().Dy())

	stop()
	host.SetSize(20, 10)
	assert.Equal(t, 1, calls)
}
