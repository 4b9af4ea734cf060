package main

import (
	"fmt"
	"image/color"
	"log"
	"sync"

	"dscheirer.com/discopanel/arena"
	"dscheirer.com/discopanel/framebuf"
)

// logDisplay stands in for the panel: it records what would be scanned out
// and can read pixels back through external memory.
type logDisplay struct {
	mu        sync.Mutex
	memory    *arena.Arena
	width     int
	height    int
	debugDump bool
	on        bool
	staged    uint32
	scanned   uint32
	reloads   int
	audit     []string
}

func newLogDisplay(memory *arena.Arena) *logDisplay {
	return &logDisplay{memory: memory, staged: noAddress, scanned: noAddress}
}

func (ld *logDisplay) openDisplay(settings configSettings) error {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.width = settings.GetInt(sPanelWidth)
	ld.height = settings.GetInt(sPanelHeight)
	ld.debugDump = settings.GetBool(sDebug)
	ld.audit = []string{}
	return nil
}

func (ld *logDisplay) setFramebuffer(addr uint32) error {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.staged = addr
	return nil
}

func (ld *logDisplay) reload() error {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	if ld.staged == noAddress {
		return fmt.Errorf("reload with no framebuffer")
	}
	ld.scanned = ld.staged
	ld.reloads++
	msg := fmt.Sprintf("scan 0x%08x", ld.scanned)
	if ld.debugDump {
		log.Println(msg)
	}
	ld.audit = append(ld.audit, msg)
	return nil
}

func (ld *logDisplay) displayOn(on bool) {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.on = on
}

func (ld *logDisplay) scanAddress() uint32 {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.scanned
}

func (ld *logDisplay) reloadCount() int {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.reloads
}

// pixel reads (x, y) of the scanned buffer.
func (ld *logDisplay) pixel(x, y int) (uint32, error) {
	ld.mu.Lock()
	addr, w, h := ld.scanned, ld.width, ld.height
	ld.mu.Unlock()
	if addr == noAddress {
		return 0, fmt.Errorf("nothing scanned yet")
	}
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, fmt.Errorf("(%d,%d) outside %dx%d", x, y, w, h)
	}
	words, err := ld.memory.Resolve(addr+uint32((y*w+x)*arena.WordBytes), 1)
	if err != nil {
		return 0, err
	}
	return words[0], nil
}

// copyScanned copies the scanned buffer into dst, which must hold a frame.
// Displays that render on another goroutine take their copy here.
func copyScanned(memory *arena.Arena, addr uint32, dst []uint32) error {
	src, err := memory.Resolve(addr, len(dst))
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

func (ld *logDisplay) pixelColor(x, y int) (color.RGBA, error) {
	p, err := ld.pixel(x, y)
	if err != nil {
		return color.RGBA{}, err
	}
	return framebuf.RGBA(p), nil
}
