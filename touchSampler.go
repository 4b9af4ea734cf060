package main

// touchSampler polls the touch panel and turns contacts into touch points,
// ignoring the panel for a number of ticks after each accepted touch.
type touchSampler struct {
	panel    touchPanel
	reload   int
	debounce int // ticks left before the panel is read again
}

func newTouchSampler(panel touchPanel, debounceTicks int) *touchSampler {
	if debounceTicks < 0 {
		debounceTicks = 0
	}
	return &touchSampler{panel: panel, reload: debounceTicks}
}

// sample runs one tick. The counter is decremented before it is checked,
// so accepted touches are at least reload ticks apart.
func (ts *touchSampler) sample(logger flogger) (touchPoint, bool) {
	if ts.debounce > 0 {
		ts.debounce--
	}
	if ts.debounce > 0 {
		return touchPoint{}, false
	}

	n, err := ts.panel.detectTouch()
	if err != nil {
		logger.Printf("detect failed: %v", err)
		return touchPoint{}, false
	}
	if n == 0 {
		return touchPoint{}, false
	}

	td, err := ts.panel.getTouch(1)
	if err != nil {
		// not a touch, so no debounce either
		logger.Printf("fetch failed: %v", err)
		return touchPoint{}, false
	}
	ts.debounce = ts.reload
	return touchPoint{x: int(td.x), y: int(td.y)}, true
}

func startTouchSampler(rt runtimeConfig) {
	startTask(rt, "Touch", runTouchSampler)
}

func runTouchSampler(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runTouchSampler")
	}()

	period := rt.settings.GetDuration(sTouchPeriod)
	sampler := newTouchSampler(rt.touch, rt.settings.GetInt(sDebounceTicks))

	for {
		if quitting(rt) {
			rt.logger.Println("quit from runTouchSampler")
			return
		}

		if p, ok := sampler.sample(rt.logger); ok {
			rt.status.touched(p)
			select {
			case rt.comms.touches <- p:
			case <-rt.comms.quit:
				rt.logger.Println("quit from runTouchSampler while sending")
				return
			}
		}

		rt.clock.Sleep(period)
	}
}
