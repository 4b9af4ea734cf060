package main

import (
	"log"

	"dscheirer.com/discopanel/ltdc"
)

// ltdcDisplay drives the LCD-TFT controller model. On the host the register
// file is simulated, so the scan-out address can be checked after reloads.
type ltdcDisplay struct {
	regs *ltdc.SimRegs
	ctl  *ltdc.Controller
}

func (ld *ltdcDisplay) openDisplay(settings configSettings) error {
	ld.regs = ltdc.NewSimRegs()
	ld.ctl = ltdc.Open(ld.regs, true)
	ld.ctl.DebugDump(settings.GetBool(sDebug))

	timing := ltdc.RK043FN48H
	timing.Width = settings.GetInt(sPanelWidth)
	timing.Height = settings.GetInt(sPanelHeight)
	err := ld.ctl.Configure(ltdc.Config{
		Timing:          timing,
		Format:          ltdc.ARGB8888,
		Background:      colorBackground,
		ErrorInterrupts: true,
	})
	if err != nil {
		return err
	}
	log.Printf("display: %s", ld.ctl)
	return nil
}

func (ld *ltdcDisplay) setFramebuffer(addr uint32) error {
	return ld.ctl.SetFramebuffer(addr)
}

// reload swaps the scanned buffer, then reports any underrun or transfer
// error the controller flagged since the previous frame.
func (ld *ltdcDisplay) reload() error {
	if err := ld.ctl.Reload(); err != nil {
		return err
	}
	return ld.ctl.CheckErrors()
}

func (ld *ltdcDisplay) displayOn(on bool) {
	if on {
		ld.ctl.Enable()
	} else {
		ld.ctl.Disable()
	}
}

func (ld *ltdcDisplay) scanAddress() uint32 {
	return ld.regs.ScanAddress()
}

func (ld *ltdcDisplay) reloadCount() int {
	return ld.regs.Reloads()
}
