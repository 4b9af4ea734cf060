package main

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var errNoTouch = errors.New("no touch pending")

// a press stays on the glass for this many touch periods, long enough for
// one sample to see it
const pressHoldTicks = 2

type heldPress struct {
	td touchData
	at time.Time
}

// dropExpired removes presses held longer than hold. hold 0 keeps them
// until they are read.
func dropExpired(presses []heldPress, now time.Time, hold time.Duration) []heldPress {
	if hold <= 0 {
		return presses
	}
	for len(presses) > 0 && now.Sub(presses[0].at) > hold {
		presses = presses[1:]
	}
	return presses
}

// queuedTouch is a touch panel fed from memory: tests, the status API and
// headless runs push presses into it. Each press is reported once, and
// only while it is held.
type queuedTouch struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	hold       time.Duration
	presses    []heldPress
	detectErrs []error
	fetchErrs  []error
	detects    int
	closed     bool
}

func newQueuedTouch(clock clockwork.Clock) *queuedTouch {
	return &queuedTouch{clock: clock}
}

func (qt *queuedTouch) initTouch(settings configSettings) error {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	if qt.clock != nil {
		qt.hold = pressHoldTicks * settings.GetDuration(sTouchPeriod)
	}
	return nil
}

func (qt *queuedTouch) now() time.Time {
	if qt.clock == nil {
		return time.Time{}
	}
	return qt.clock.Now()
}

func (qt *queuedTouch) push(x, y int) {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	td := touchData{x: uint16(x), y: uint16(y), weight: 1}
	qt.presses = append(qt.presses, heldPress{td: td, at: qt.now()})
}

// failDetect makes the next detectTouch return err.
func (qt *queuedTouch) failDetect(err error) {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	qt.detectErrs = append(qt.detectErrs, err)
}

// failFetch makes the next getTouch return err; the press stays queued.
func (qt *queuedTouch) failFetch(err error) {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	qt.fetchErrs = append(qt.fetchErrs, err)
}

func (qt *queuedTouch) detectTouch() (uint8, error) {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	qt.detects++
	if len(qt.detectErrs) > 0 {
		err := qt.detectErrs[0]
		qt.detectErrs = qt.detectErrs[1:]
		return 0, err
	}
	qt.presses = dropExpired(qt.presses, qt.now(), qt.hold)
	if len(qt.presses) > 0 {
		return 1, nil
	}
	return 0, nil
}

func (qt *queuedTouch) getTouch(n uint8) (touchData, error) {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	if len(qt.fetchErrs) > 0 {
		err := qt.fetchErrs[0]
		qt.fetchErrs = qt.fetchErrs[1:]
		return touchData{}, err
	}
	if n != 1 || len(qt.presses) == 0 {
		return touchData{}, errNoTouch
	}
	td := qt.presses[0].td
	qt.presses = qt.presses[1:]
	return td, nil
}

// pending counts presses still held.
func (qt *queuedTouch) pending() int {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	qt.presses = dropExpired(qt.presses, qt.now(), qt.hold)
	return len(qt.presses)
}

func (qt *queuedTouch) detectCount() int {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	return qt.detects
}

func (qt *queuedTouch) closeTouch() {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	qt.closed = true
}
