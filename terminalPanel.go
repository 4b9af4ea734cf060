package main

import (
	"sync"
	"time"

	"dscheirer.com/discopanel/arena"
	"github.com/jonboulle/clockwork"
	"github.com/nsf/termbox-go"
)

// each terminal cell shows this many panel pixels
const (
	cellWidth  = 6
	cellHeight = 12
)

var termColors = [8]termbox.Attribute{
	termbox.ColorBlack, termbox.ColorRed, termbox.ColorGreen, termbox.ColorYellow,
	termbox.ColorBlue, termbox.ColorMagenta, termbox.ColorCyan, termbox.ColorWhite,
}

// terminalPanel is a touch display in a terminal: mouse clicks are touches
// and every published frame is drawn as colored cells. Esc or Ctrl-C ends it.
type terminalPanel struct {
	mu      sync.Mutex
	memory  *arena.Arena
	width   int
	height  int
	staged  uint32
	frame   []uint32
	clock   clockwork.Clock
	hold    time.Duration
	pending []heldPress
	once    sync.Once
	openErr error
	started bool
	done    chan struct{}
	closed  sync.Once
}

func newTerminalPanel(memory *arena.Arena, clock clockwork.Clock) *terminalPanel {
	return &terminalPanel{memory: memory, clock: clock, done: make(chan struct{})}
}

func (tp *terminalPanel) open(settings configSettings) error {
	tp.once.Do(func() {
		tp.width = settings.GetInt(sPanelWidth)
		tp.height = settings.GetInt(sPanelHeight)
		tp.frame = make([]uint32, tp.width*tp.height)
		tp.hold = pressHoldTicks * settings.GetDuration(sTouchPeriod)
		if err := termbox.Init(); err != nil {
			tp.openErr = err
			return
		}
		termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
		tp.started = true
		go tp.pollEvents()
	})
	return tp.openErr
}

func (tp *terminalPanel) pollEvents() {
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventKey:
			if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
				tp.finish()
				return
			}
		case termbox.EventMouse:
			if ev.Key != termbox.MouseLeft {
				continue
			}
			// middle of the cell
			x := ev.MouseX*cellWidth + cellWidth/2
			y := ev.MouseY*cellHeight + cellHeight/2
			if x >= tp.width || y >= tp.height {
				continue
			}
			tp.mu.Lock()
			td := touchData{x: uint16(x), y: uint16(y), weight: 1}
			tp.pending = append(tp.pending, heldPress{td: td, at: tp.clock.Now()})
			tp.mu.Unlock()
		case termbox.EventInterrupt, termbox.EventError:
			tp.finish()
			return
		}
	}
}

func (tp *terminalPanel) finish() {
	tp.closed.Do(func() { close(tp.done) })
}

func (tp *terminalPanel) initTouch(settings configSettings) error {
	return tp.open(settings)
}

func (tp *terminalPanel) detectTouch() (uint8, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.pending = dropExpired(tp.pending, tp.clock.Now(), tp.hold)
	if len(tp.pending) > 0 {
		return 1, nil
	}
	return 0, nil
}

func (tp *terminalPanel) getTouch(n uint8) (touchData, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if n != 1 || len(tp.pending) == 0 {
		return touchData{}, errNoTouch
	}
	td := tp.pending[0].td
	tp.pending = tp.pending[1:]
	return td, nil
}

// closeTouch restores the terminal. The event poller is left to die with
// the process.
func (tp *terminalPanel) closeTouch() {
	tp.finish()
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.started {
		termbox.Close()
		tp.started = false
	}
}

func (tp *terminalPanel) openDisplay(settings configSettings) error {
	return tp.open(settings)
}

func (tp *terminalPanel) setFramebuffer(addr uint32) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.staged = addr
	return nil
}

func (tp *terminalPanel) reload() error {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if err := copyScanned(tp.memory, tp.staged, tp.frame); err != nil {
		return err
	}
	tp.draw()
	return nil
}

func (tp *terminalPanel) draw() {
	for row := 0; row*cellHeight < tp.height; row++ {
		for col := 0; col*cellWidth < tp.width; col++ {
			x := col*cellWidth + cellWidth/2
			y := row*cellHeight + cellHeight/2
			if x >= tp.width || y >= tp.height {
				continue
			}
			termbox.SetCell(col, row, ' ', termbox.ColorDefault, termColor(tp.frame[y*tp.width+x]))
		}
	}
	termbox.Flush()
}

// termColor reduces an ARGB8888 pixel to one of the 8 basic colors.
func termColor(p uint32) termbox.Attribute {
	i := 0
	if (p>>16)&0xff >= 0x80 {
		i |= 1
	}
	if (p>>8)&0xff >= 0x80 {
		i |= 2
	}
	if p&0xff >= 0x80 {
		i |= 4
	}
	return termColors[i]
}

func (tp *terminalPanel) displayOn(on bool) {
	if !on {
		termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
		termbox.Flush()
	}
}

// runForeground waits for the user to leave the terminal or for quit.
func (tp *terminalPanel) runForeground(rt runtimeConfig) error {
	select {
	case <-tp.done:
		return nil
	case <-rt.comms.quit:
		return nil
	}
}
