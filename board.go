package main

import (
	"fmt"
	"image"

	"dscheirer.com/discopanel/arena"
	"dscheirer.com/discopanel/framebuf"
)

// setupBoard picks the collaborators named in settings and brings them up.
func setupBoard(rt *runtimeConfig) error {
	s := rt.settings

	mem, err := newExternalMemory(s)
	if err != nil {
		return err
	}
	rt.memory = mem

	// a terminal or a window is both the touch source and the display
	var term *terminalPanel
	var win *windowPanel
	terminal := func() *terminalPanel {
		if term == nil {
			term = newTerminalPanel(mem, rt.clock)
		}
		return term
	}
	window := func() (*windowPanel, error) {
		if win == nil {
			win, err = newWindowPanel(mem)
		}
		return win, err
	}

	switch kind := s.GetString(sTouchSource); kind {
	case "queue":
		rt.touch = newQueuedTouch(rt.clock)
	case "ft5336":
		rt.touch = &ft5336Touch{}
	case "terminal":
		rt.touch = terminal()
	case "window":
		w, err := window()
		if err != nil {
			return err
		}
		rt.touch = w
	default:
		return fmt.Errorf("unknown touch source %q", kind)
	}

	switch kind := s.GetString(sDisplayType); kind {
	case "log":
		rt.display = newLogDisplay(mem)
	case "ltdc":
		rt.display = &ltdcDisplay{}
	case "terminal":
		rt.display = terminal()
	case "window":
		w, err := window()
		if err != nil {
			return err
		}
		rt.display = w
	default:
		return fmt.Errorf("unknown display %q", kind)
	}

	switch kind := s.GetString(sOutputType); kind {
	case "log":
		rt.outputs, rt.statusLED = newLogOutputs()
	case "rpio":
		rt.outputs, rt.statusLED, err = newRPIOOutputs(s)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown outputs %q", kind)
	}

	return openBoard(rt)
}

// openBoard opens the chosen collaborators once and lays out frame memory
// and buttons. rt.memory, rt.touch, rt.display and rt.outputs must be set.
func openBoard(rt *runtimeConfig) error {
	s := rt.settings

	if s.GetBool(sMemtest) {
		if err := checkExternalMemory(rt.memory, s.GetInt(sMemtestWords), rt.logger); err != nil {
			return err
		}
	}

	if err := rt.touch.initTouch(s); err != nil {
		return fmt.Errorf("touch: %v", err)
	}

	w, h := s.GetInt(sPanelWidth), s.GetInt(sPanelHeight)
	frames, err := allocFrames(rt.memory, w, h)
	if err != nil {
		return err
	}
	rt.frames = frames

	buttons, err := newButtonSet(s, image.Rect(0, 0, w, h))
	if err != nil {
		return err
	}
	rt.buttons = buttons

	if err := rt.display.openDisplay(s); err != nil {
		return fmt.Errorf("display: %v", err)
	}
	rt.display.displayOn(true)

	rt.logger.Printf("board up, memory %s", rt.memory.Stats())
	return nil
}

// allocFrames places both framebuffers in external memory.
func allocFrames(mem *arena.Arena, w, h int) (*framebuf.SwapChain, error) {
	var fbs [2]*framebuf.FrameBuffer
	for i := range fbs {
		blk, pix, err := mem.Alloc(w*h, memoryAlign)
		if err != nil {
			return nil, fmt.Errorf("framebuffer %d: %v", i, err)
		}
		fb, err := framebuf.New(w, h, blk.Addr, pix)
		if err != nil {
			return nil, err
		}
		fbs[i] = fb
	}
	return framebuf.NewSwapChain(fbs[0], fbs[1])
}
