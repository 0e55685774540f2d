package scheduler

import (
	"context"
	"testing"
	"time"

	"caustics/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource records how often it was disarmed.
type countingSource struct {
	*OneShot
	disarmed int
}

func newCounting(t Trigger) *countingSource {
	return &countingSource{OneShot: NewOneShot(t)}
}

func (c *countingSource) Arm(fire func(Trigger)) func() {
	disarm := c.OneShot.Arm(fire)
	return func() {
		c.disarmed++
		disarm()
	}
}

func TestRaceFirstSourceWins(t *testing.T) {
	click, key := newCounting(TriggerClick), newCounting(TriggerKey)
	r := NewRace(click, key)

	_, ok := r.Poll()
	assert.False(t, ok)

	require.True(t, key.Fire())
	got, ok := r.Poll()
	require.True(t, ok)
	assert.Equal(t, TriggerKey, got)

	assert.False(t, click.Fire(), "losers are disarmed")
	assert.Equal(t, 1, click.disarmed)
	assert.Equal(t, 1, key.disarmed)

	r.Cancel()
	assert.Equal(t, 1, click.disarmed, "disarm runs once")
}

func TestRaceSourceFiringWhileArming(t *testing.T) {
	late := newCounting(TriggerClick)
	eager := SourceFunc(func(fire func(Trigger)) func() {
		fire(TriggerIdle)
		return func() {}
	})
	r := NewRace(eager, late)
	got, ok := r.Poll()
	require.True(t, ok)
	assert.Equal(t, TriggerIdle, got)
	assert.False(t, late.Armed(), "sources after the winner are never armed")
}

func TestRaceCancel(t *testing.T) {
	click := newCounting(TriggerClick)
	r := NewRace(click)
	r.Cancel()
	assert.False(t, click.Armed())
	assert.Equal(t, 1, click.disarmed)
	_, ok := r.Poll()
	assert.False(t, ok)
	_, err := r.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRaceWaitAfter(t *testing.T) {
	click := NewOneShot(TriggerClick)
	r := NewRace(After(5*time.Millisecond, TriggerTimeout), click)
	got, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TriggerTimeout, got)
	assert.False(t, click.Armed())
}

func TestRaceWaitContext(t *testing.T) {
	r := NewRace(After(time.Hour, TriggerTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	r.Cancel()
	select {
	case <-r.Done():
	default:
		t.Fatal("cancelled race must be done")
	}
}

func TestDeadlineFiresFromPoll(t *testing.T) {
	clock := &core.ManualClock{}
	clock.Set(3 * time.Second)
	r := NewRace(Deadline(clock, time.Second, TriggerTimeout))

	clock.Advance(999 * time.Millisecond)
	_, ok := r.Poll()
	assert.False(t, ok)

	clock.Advance(time.Millisecond)
	got, ok := r.Poll()
	require.True(t, ok)
	assert.Equal(t, TriggerTimeout, got)
}

func TestRaceWaitDrivesDeadline(t *testing.T) {
	click := NewOneShot(TriggerClick)
	r := NewRace(Deadline(core.NewWallClock(), 20*time.Millisecond, TriggerTimeout), click)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, TriggerTimeout, got)
	assert.False(t, click.Armed())
}

func TestOneShotFiresOnce(t *testing.T) {
	o := NewOneShot(TriggerScroll)
	assert.False(t, o.Fire(), "unarmed")

	var fired []Trigger
	o.Arm(func(t Trigger) { fired = append(fired, t) })
	assert.True(t, o.Fire())
	assert.False(t, o.Fire())
	assert.Equal(t, []Trigger{TriggerScroll}, fired)
}

func TestInteractions(t *testing.T) {
	in := Interactions()
	require.Len(t, in, 4)
	for _, trig := range InteractionTriggers() {
		assert.Equal(t, trig, in[trig].Trigger())
	}
}
