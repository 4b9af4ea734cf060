// utility functions
package main

import (
	"sync"

	"dscheirer.com/discopanel/arena"
	"dscheirer.com/discopanel/framebuf"
	"github.com/jonboulle/clockwork"
)

type commChannels struct {
	quit    chan struct{}
	touches chan touchPoint
	buttons chan buttonEvent
	pins    chan pinStateEvent
}

// outputBank is indexed by button id, D0..D3.
type outputBank [numButtons]outputPin

type runtimeConfig struct {
	comms    commChannels
	clock    clockwork.Clock
	logger   flogger
	settings configSettings
	wg       *sync.WaitGroup

	touch     touchPanel
	display   display
	outputs   outputBank
	statusLED outputPin
	memory    *arena.Arena
	frames    *framebuf.SwapChain
	buttons   *buttonSet
	status    *panelStatus
	statusSvc statusService
}

func initCommChannels(settings configSettings) commChannels {
	touchLen := settings.GetInt(sTouchQueue)
	if touchLen < 1 {
		touchLen = 1
	}
	eventLen := settings.GetInt(sEventQueue)
	if eventLen < 1 {
		eventLen = 1
	}
	return commChannels{
		quit:    make(chan struct{}),
		touches: make(chan touchPoint, touchLen),
		buttons: make(chan buttonEvent, eventLen),
		pins:    make(chan pinStateEvent, eventLen),
	}
}

func initRuntime(settings configSettings) runtimeConfig {
	return runtimeConfig{
		comms:    initCommChannels(settings),
		clock:    clockwork.NewRealClock(),
		logger:   &ThreadLogger{name: "Main"},
		settings: settings,
		wg:       &sync.WaitGroup{},
		status:   &panelStatus{published: noAddress},
	}
}

// startTask runs fn on its own goroutine under a named logger and counts it
// in the runtime wait group.
func startTask(rt runtimeConfig, name string, fn func(rt runtimeConfig)) {
	rt.logger = &ThreadLogger{name: name}
	rt.wg.Add(1)
	go func() {
		defer rt.wg.Done()
		fn(rt)
	}()
}

// quitting reports whether quit was signalled, without blocking.
func quitting(rt runtimeConfig) bool {
	select {
	case <-rt.comms.quit:
		return true
	default:
		return false
	}
}

const noAddress = ^uint32(0)

// panelStatus is what the GUI and the tasks report for the status API.
type panelStatus struct {
	mu        sync.Mutex
	frames    uint64
	published uint32
	pressed   [numButtons]bool
	touches   uint64
	lastTouch touchPoint
	toggles   uint64
	faults    uint64
	dispErrs  uint64
}

type statusSnapshot struct {
	Frames    uint64            `json:"frames"`
	Published uint32            `json:"published"`
	Buttons   map[string]bool   `json:"buttons"`
	Touches   uint64            `json:"touches"`
	LastTouch [2]int            `json:"lastTouch"`
	Toggles   uint64            `json:"toggles"`
	Faults    uint64            `json:"faults"`
	DispErrs  uint64            `json:"displayErrors"`
	Memory    *arena.Stats      `json:"memory,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func (ps *panelStatus) frameDone(frames uint64, addr uint32, pressed [numButtons]bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.frames = frames
	ps.published = addr
	ps.pressed = pressed
}

func (ps *panelStatus) touched(p touchPoint) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.touches++
	ps.lastTouch = p
}

func (ps *panelStatus) toggled(fault bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.toggles++
	if fault {
		ps.faults++
	}
}

func (ps *panelStatus) displayError() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.dispErrs++
}

func (ps *panelStatus) snapshot() statusSnapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	s := statusSnapshot{
		Frames:    ps.frames,
		Published: ps.published,
		Buttons:   make(map[string]bool, numButtons),
		Touches:   ps.touches,
		LastTouch: [2]int{ps.lastTouch.x, ps.lastTouch.y},
		Toggles:   ps.toggles,
		Faults:    ps.faults,
		DispErrs:  ps.dispErrs,
	}
	for i, p := range ps.pressed {
		s.Buttons[buttonID(i).String()] = p
	}
	return s
}
