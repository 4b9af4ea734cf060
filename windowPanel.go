//go:build cgo

package main

import (
	"sync"

	"dscheirer.com/discopanel/arena"
	"github.com/hajimehoshi/ebiten/v2"
)

// windowPanel shows the panel in a desktop window. Holding the left mouse
// button is a touch, like a finger resting on the glass.
type windowPanel struct {
	mu      sync.Mutex
	memory  *arena.Arena
	width   int
	height  int
	staged  uint32
	frame   []uint32
	dirty   bool
	touched bool
	at      touchData
	quit    chan struct{}

	img *ebiten.Image
	rgb []byte
}

func newWindowPanel(memory *arena.Arena) (*windowPanel, error) {
	return &windowPanel{memory: memory}, nil
}

func (wp *windowPanel) initTouch(settings configSettings) error {
	return nil
}

func (wp *windowPanel) detectTouch() (uint8, error) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.touched {
		return 1, nil
	}
	return 0, nil
}

func (wp *windowPanel) getTouch(n uint8) (touchData, error) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if n != 1 || !wp.touched {
		return touchData{}, errNoTouch
	}
	return wp.at, nil
}

func (wp *windowPanel) closeTouch() {}

func (wp *windowPanel) openDisplay(settings configSettings) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	wp.width = settings.GetInt(sPanelWidth)
	wp.height = settings.GetInt(sPanelHeight)
	wp.frame = make([]uint32, wp.width*wp.height)
	wp.rgb = make([]byte, 4*wp.width*wp.height)
	return nil
}

func (wp *windowPanel) setFramebuffer(addr uint32) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	wp.staged = addr
	return nil
}

func (wp *windowPanel) reload() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if err := copyScanned(wp.memory, wp.staged, wp.frame); err != nil {
		return err
	}
	wp.dirty = true
	return nil
}

func (wp *windowPanel) displayOn(on bool) {}

// runForeground owns the main goroutine until the window closes or quit.
func (wp *windowPanel) runForeground(rt runtimeConfig) error {
	wp.quit = rt.comms.quit
	ebiten.SetWindowTitle(rt.settings.GetString(sTitle))
	ebiten.SetWindowSize(wp.width*2, wp.height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(wp)
}

func (wp *windowPanel) Update() error {
	select {
	case <-wp.quit:
		return ebiten.Termination
	default:
	}

	x, y := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) &&
		x >= 0 && y >= 0 && x < wp.width && y < wp.height

	wp.mu.Lock()
	wp.touched = pressed
	if pressed {
		wp.at = touchData{x: uint16(x), y: uint16(y), weight: 1}
	}
	wp.mu.Unlock()
	return nil
}

func (wp *windowPanel) Draw(screen *ebiten.Image) {
	wp.mu.Lock()
	if wp.img == nil {
		wp.img = ebiten.NewImage(wp.width, wp.height)
	}
	if wp.dirty {
		for i, p := range wp.frame {
			j := i * 4
			wp.rgb[j+0] = byte(p >> 16)
			wp.rgb[j+1] = byte(p >> 8)
			wp.rgb[j+2] = byte(p)
			wp.rgb[j+3] = 0xff
		}
		wp.img.WritePixels(wp.rgb)
		wp.dirty = false
	}
	wp.mu.Unlock()
	screen.DrawImage(wp.img, nil)
}

func (wp *windowPanel) Layout(outsideWidth, outsideHeight int) (int, int) {
	return wp.width, wp.height
}
