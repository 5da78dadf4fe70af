package gamemaster

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualSchedulerRunsInOrder(t *testing.T) {
	s := NewManualScheduler()
	var ran []string
	s.AfterFunc(200*time.Millisecond, func() { ran = append(ran, "b") })
	s.AfterFunc(100*time.Millisecond, func() { ran = append(ran, "a") })
	s.AfterFunc(200*time.Millisecond, func() { ran = append(ran, "c") })

	s.Advance(99 * time.Millisecond)
	require.Empty(t, ran)
	require.Equal(t, 3, s.Pending())

	s.Advance(time.Millisecond)
	require.Equal(t, []string{"a"}, ran)

	s.Advance(time.Second)
	require.Equal(t, []string{"a", "b", "c"}, ran, "Equal due times keep scheduling order")
	require.Equal(t, 1100*time.Millisecond, s.Elapsed())
}

func TestManualSchedulerStop(t *testing.T) {
	s := NewManualScheduler()
	ran := false
	timer := s.AfterFunc(time.Second, func() { ran = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop(), "Second stop should report false")
	s.Advance(time.Hour)
	require.False(t, ran)

	fired := s.AfterFunc(time.Second, func() {})
	s.Advance(time.Second)
	require.False(t, fired.Stop(), "Stopping a fired task should report false")
}

func TestManualSchedulerChains(t *testing.T) {
	s := NewManualScheduler()
	count := 0
	var tick func()
	tick = func() {
		count++
		s.AfterFunc(time.Second, tick)
	}
	s.AfterFunc(time.Second, tick)

	s.Advance(3 * time.Second)
	require.Equal(t, 3, count)
	require.Equal(t, 1, s.Pending())
}

func TestClockScheduler(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	ClockScheduler().AfterFunc(time.Millisecond, wg.Done)
	wg.Wait()

	timer := ClockScheduler().AfterFunc(time.Hour, func() { t.Error("Stopped timer fired") })
	require.True(t, timer.Stop())
}
