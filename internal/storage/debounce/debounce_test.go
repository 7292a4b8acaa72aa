package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBurstCoalescesToOneFlush(t *testing.T) {
	var calls atomic.Int32
	d := New(30*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 20; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
}

func TestFlushReadsStateAtFireTime(t *testing.T) {
	var state, flushed atomic.Int32
	d := New(time.Hour, func() { flushed.Store(state.Load()) })

	state.Store(1)
	d.Trigger()
	state.Store(2)

	d.Flush()
	assert.Equal(t, int32(2), flushed.Load())
	assert.False(t, d.Pending())
}

func TestFlushWithoutPendingIsNoop(t *testing.T) {
	var calls atomic.Int32
	d := New(time.Hour, func() { calls.Add(1) })

	d.Flush()
	assert.Equal(t, int32(0), calls.Load())
}

func TestCancelDropsFlush(t *testing.T) {
	var calls atomic.Int32
	d := New(10*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Cancel()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestStopFlushesAndIgnoresLaterTriggers(t *testing.T) {
	var calls atomic.Int32
	d := New(time.Hour, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	assert.Equal(t, int32(1), calls.Load())

	d.Trigger()
	assert.False(t, d.Pending())
	assert.Equal(t, int32(1), calls.Load())
}

func TestZeroDelayIsSynchronous(t *testing.T) {
	var calls atomic.Int32
	d := New(0, func() { calls.Add(1) })

	d.Trigger()
	d.Trigger()
	assert.Equal(t, int32(2), calls.Load())
}
