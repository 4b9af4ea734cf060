package main

// touchData is one raw record from a touch controller.
type touchData struct {
	x, y   uint16
	weight uint8
	misc   uint8
}

type touchPanel interface {
	initTouch(settings configSettings) error
	// number of active touches
	detectTouch() (uint8, error)
	// touch record n, counting from 1
	getTouch(n uint8) (touchData, error)
	closeTouch()
}

type outputPin interface {
	toggle()
	isSetHigh() bool
}

type display interface {
	openDisplay(settings configSettings) error
	// setFramebuffer stages the scan-out address; reload applies it at the
	// next vertical blanking period.
	setFramebuffer(addr uint32) error
	reload() error
	displayOn(on bool)
}

// foreground is implemented by collaborators that must own the main
// goroutine (desktop windows); runForeground returns when they close.
type foreground interface {
	runForeground(rt runtimeConfig) error
}

type statusService interface {
	launch(handler *apiHandler, addr string) error
	stop()
}
