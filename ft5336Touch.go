package main

import (
	"dscheirer.com/discopanel/ft5336"
	"dscheirer.com/discopanel/i2c"
)

// ft5336Touch is the capacitive panel on the display, over i2c-dev.
type ft5336Touch struct {
	bus *i2c.Bus
	dev *ft5336.Device
	// regs is the simulated controller when the bus is simulated
	regs *i2c.RegisterFile
}

func (ft *ft5336Touch) initTouch(settings configSettings) error {
	sim := settings.GetBool(sI2CSim)
	bus, err := i2c.Open(settings.GetInt(sI2CBus), sim)
	if err != nil {
		return err
	}
	bus.DebugDump(settings.GetBool(sDebug))
	if sim {
		ft.regs = i2c.NewRegisterFile()
		ft.regs.Set(0xA8, ft5336.ChipID)
		bus.Attach(ft5336.Address, ft.regs)
	}

	dev := ft5336.New(bus)
	if err := dev.Configure(ft5336.Config{Threshold: settings.GetByte(sTouchThresh)}); err != nil {
		bus.Close()
		return err
	}
	ft.bus = bus
	ft.dev = dev
	return nil
}

func (ft *ft5336Touch) detectTouch() (uint8, error) {
	return ft.dev.DetectTouch()
}

func (ft *ft5336Touch) getTouch(n uint8) (touchData, error) {
	t, err := ft.dev.GetTouch(n)
	if err != nil {
		return touchData{}, err
	}
	return touchData{x: t.X, y: t.Y, weight: t.Weight, misc: t.Misc}, nil
}

func (ft *ft5336Touch) closeTouch() {
	if ft.bus != nil {
		ft.bus.Close()
	}
}
