package main

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"gotest.tools/assert"
)

func TestSamplerAcceptsAndReloads(t *testing.T) {
	qt := &queuedTouch{}
	ts := newTouchSampler(qt, 10)

	qt.push(150, 85)
	p, ok := ts.sample(testLogger())
	assert.Assert(t, ok)
	assert.Equal(t, p, touchPoint{x: 150, y: 85})
	assert.Equal(t, ts.debounce, 10)
}

func TestSamplerDebounceWindow(t *testing.T) {
	qt := &queuedTouch{}
	ts := newTouchSampler(qt, 10)

	qt.push(1, 1)
	_, ok := ts.sample(testLogger())
	assert.Assert(t, ok)

	// a finger still on the glass for the next 9 ticks is not read at all
	qt.push(2, 2)
	detects := qt.detectCount()
	for i := 1; i < 10; i++ {
		_, ok = ts.sample(testLogger())
		assert.Assert(t, !ok, "tick %d", i)
	}
	assert.Equal(t, qt.detectCount(), detects)

	// tenth tick after the accept reads the panel again
	p, ok := ts.sample(testLogger())
	assert.Assert(t, ok)
	assert.Equal(t, p, touchPoint{x: 2, y: 2})
}

func TestSamplerNoTouch(t *testing.T) {
	qt := &queuedTouch{}
	ts := newTouchSampler(qt, 10)

	for i := 0; i < 3; i++ {
		_, ok := ts.sample(testLogger())
		assert.Assert(t, !ok)
	}
	// idle ticks poll every time and never arm the debounce
	assert.Equal(t, qt.detectCount(), 3)
	assert.Equal(t, ts.debounce, 0)
}

func TestSamplerDetectError(t *testing.T) {
	qt := &queuedTouch{}
	ts := newTouchSampler(qt, 10)

	qt.push(5, 5)
	qt.failDetect(errors.New("bus nack"))
	_, ok := ts.sample(testLogger())
	assert.Assert(t, !ok)
	assert.Equal(t, ts.debounce, 0)

	// next tick works
	_, ok = ts.sample(testLogger())
	assert.Assert(t, ok)
}

func TestSamplerFetchErrorDoesNotDebounce(t *testing.T) {
	qt := &queuedTouch{}
	ts := newTouchSampler(qt, 10)

	qt.push(5, 5)
	qt.failFetch(errors.New("short read"))
	_, ok := ts.sample(testLogger())
	assert.Assert(t, !ok)
	assert.Equal(t, ts.debounce, 0)
	assert.Equal(t, qt.pending(), 1)

	p, ok := ts.sample(testLogger())
	assert.Assert(t, ok)
	assert.Equal(t, p, touchPoint{x: 5, y: 5})
}

func TestSamplerZeroDebounce(t *testing.T) {
	qt := &queuedTouch{}
	ts := newTouchSampler(qt, 0)
	qt.push(1, 1)
	qt.push(2, 2)

	_, ok := ts.sample(testLogger())
	assert.Assert(t, ok)
	_, ok = ts.sample(testLogger())
	assert.Assert(t, ok)
}

func TestRunTouchSampler(t *testing.T) {
	rt, clock, comms := testRuntime()
	qt := rt.touch.(*queuedTouch)
	period := rt.settings.GetDuration(sTouchPeriod)

	qt.push(150, 85)
	startTouchSampler(rt)
	clock.BlockUntil(1)
	assert.Equal(t, touchRead(t, comms.touches), touchPoint{x: 150, y: 85})

	// a second contact 40 ms later lands in the debounce window
	testBlockDuration(clock, 10*time.Millisecond, 40*time.Millisecond)
	qt.push(151, 86)
	testBlockDuration(clock, period, 10*period)
	touchNoRead(t, comms.touches)
	assert.Equal(t, qt.pending(), 0)

	// once the window is over a new press is read on the next tick
	qt.push(160, 90)
	testBlockDuration(clock, period, period)
	assert.Equal(t, touchRead(t, comms.touches), touchPoint{x: 160, y: 90})

	assert.Equal(t, rt.status.snapshot().Touches, uint64(2))
	testQuit(rt)
}

func TestQueuedTouchPressExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	qt := newQueuedTouch(clock)
	assert.NilError(t, qt.initTouch(testSettings))
	hold := pressHoldTicks * testSettings.GetDuration(sTouchPeriod)

	qt.push(1, 1)
	clock.Advance(hold)
	n, err := qt.detectTouch()
	assert.NilError(t, err)
	assert.Equal(t, n, uint8(1))

	clock.Advance(time.Millisecond)
	n, err = qt.detectTouch()
	assert.NilError(t, err)
	assert.Equal(t, n, uint8(0))
	_, err = qt.getTouch(1)
	assert.Equal(t, err, errNoTouch)
}

func TestQueuedTouchHeldUntilReadWithoutClock(t *testing.T) {
	qt := &queuedTouch{}
	assert.NilError(t, qt.initTouch(testSettings))
	qt.push(3, 4)
	assert.Equal(t, qt.pending(), 1)
	td, err := qt.getTouch(1)
	assert.NilError(t, err)
	assert.Equal(t, td.x, uint16(3))
	assert.Equal(t, qt.pending(), 0)
}
