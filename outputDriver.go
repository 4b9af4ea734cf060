package main

func startOutputDriver(rt runtimeConfig) {
	startTask(rt, "Outputs", runOutputDriver)
}

// runOutputDriver toggles the output behind each button event and reports
// the level read back from the pin.
func runOutputDriver(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runOutputDriver")
	}()

	for {
		var ev buttonEvent
		select {
		case <-rt.comms.quit:
			rt.logger.Println("quit from runOutputDriver")
			return
		case ev = <-rt.comms.buttons:
		}

		state, fault, ok := toggleOutput(rt, ev.id)
		if !ok {
			continue
		}

		select {
		case rt.comms.pins <- state:
		case <-rt.comms.quit:
			rt.logger.Println("quit from runOutputDriver while sending")
			return
		}
		// counted once the state is on its way to the GUI
		rt.status.toggled(fault)
	}
}

// toggleOutput flips one output. fault is set when the level read back did
// not change.
func toggleOutput(rt runtimeConfig, id buttonID) (state pinStateEvent, fault bool, ok bool) {
	if !id.valid() || rt.outputs[id] == nil {
		rt.logger.Printf("button event for unknown output %d", int(id))
		return pinStateEvent{}, false, false
	}
	pin := rt.outputs[id]
	before := pin.isSetHigh()
	pin.toggle()
	after := pin.isSetHigh()

	fault = before == after
	if fault {
		rt.logger.Printf("output %s did not change, still high=%v", id, after)
	} else {
		rt.logger.Printf("output %s now high=%v", id, after)
	}
	return pinStateEvent{id: id, high: after}, fault, true
}
