package main

import (
	"fmt"
	"strings"

	"dscheirer.com/discopanel/framebuf"
)

func startGUI(rt runtimeConfig) {
	startTask(rt, "GUI", runGUI)
}

// runGUI is the render loop. Each tick it handles at most one touch, takes
// in every pending pin state, then draws and publishes a frame.
func runGUI(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runGUI")
	}()

	period := rt.settings.GetDuration(sGUIPeriod)
	title := rt.settings.GetString(sTitle)

	for {
		if quitting(rt) {
			rt.logger.Println("quit from runGUI")
			return
		}

		if !handleTouch(rt) {
			return
		}
		drainPinStates(rt)

		addr := renderFrame(rt, title)
		rt.status.frameDone(rt.frames.Frames(), addr, rt.buttons.pressedStates())

		rt.clock.Sleep(period)
	}
}

// handleTouch hit-tests one pending touch and sends an event per hit. It
// returns false when quit arrives while sending.
func handleTouch(rt runtimeConfig) bool {
	var p touchPoint
	select {
	case p = <-rt.comms.touches:
	default:
		return true
	}

	ids := rt.buttons.hits(p.point())
	if len(ids) == 0 {
		rt.logger.Printf("touch (%d,%d) missed", p.x, p.y)
	}
	for _, id := range ids {
		rt.logger.Printf("touch (%d,%d) on %s", p.x, p.y, id)
		select {
		case rt.comms.buttons <- buttonEvent{id: id}:
		case <-rt.comms.quit:
			return false
		}
	}
	return true
}

func drainPinStates(rt runtimeConfig) {
	for {
		select {
		case ev := <-rt.comms.pins:
			if !ev.id.valid() {
				rt.logger.Printf("pin state for unknown output %d", int(ev.id))
				continue
			}
			rt.buttons.setPressed(ev.id, ev.high)
		default:
			return
		}
	}
}

// renderFrame draws into the back buffer and hands it to the display. A
// failure to draw means the layout and the buffers disagree, which is fatal.
func renderFrame(rt runtimeConfig, title string) uint32 {
	fb, err := rt.frames.Back()
	if err != nil {
		panic(fmt.Sprintf("gui: no back buffer: %v", err))
	}

	c := framebuf.NewCanvas(fb)
	if err := drawScreen(c, rt.buttons, title); err != nil {
		panic(fmt.Sprintf("gui: draw: %v", err))
	}
	if err := rt.frames.Finish(fb); err != nil {
		panic(fmt.Sprintf("gui: finish: %v", err))
	}
	addr, err := rt.frames.Publish(fb)
	if err != nil {
		panic(fmt.Sprintf("gui: publish: %v", err))
	}

	if err := rt.display.setFramebuffer(addr); err != nil {
		rt.logger.Printf("set framebuffer 0x%08x: %v", addr, err)
		rt.status.displayError()
		return addr
	}
	if err := rt.display.reload(); err != nil {
		rt.logger.Printf("reload: %v", err)
		rt.status.displayError()
	}
	return addr
}

func drawScreen(c *framebuf.Canvas, buttons *buttonSet, title string) error {
	c.Clear(colorBackground)
	c.Text(labelFont, 10, 20, title, colorText)
	c.Text(labelFont, 10, 250, pinSummary(buttons.pressedStates()), colorText)
	if err := c.Err(); err != nil {
		return err
	}
	return buttons.draw(c)
}

// pinSummary is "D0:1 D1:0 ..." for the footer line.
func pinSummary(states [numButtons]bool) string {
	parts := make([]string, 0, numButtons)
	for i, on := range states {
		v := 0
		if on {
			v = 1
		}
		parts = append(parts, fmt.Sprintf("%s:%d", buttonID(i), v))
	}
	return strings.Join(parts, " ")
}
