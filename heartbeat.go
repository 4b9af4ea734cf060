package main

func startHeartbeat(rt runtimeConfig) {
	startTask(rt, "Heartbeat", runHeartbeat)
}

// runHeartbeat blinks the status LED so a hung board is visible.
func runHeartbeat(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runHeartbeat")
	}()

	if rt.statusLED == nil {
		rt.logger.Println("no status LED")
		return
	}
	period := rt.settings.GetDuration(sBlinkPeriod)
	for {
		if quitting(rt) {
			rt.logger.Println("quit from runHeartbeat")
			return
		}
		rt.statusLED.toggle()
		rt.clock.Sleep(period)
	}
}
