// Package ltdc programs an STM32 LCD-TFT display controller: panel timing,
// sync polarities, one ARGB8888 layer and the framebuffer address, with a
// vertical-blanking reload as the double buffer hand-off point.
//
// Register access goes through Regs. Simulated controllers run on a
// SimRegs register file and can dump every register write to the log.
package ltdc

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/pkg/errors"
)

// register offsets
const (
	regSSCR    = 0x08
	regBPCR    = 0x0C
	regAWCR    = 0x10
	regTWCR    = 0x14
	regGCR     = 0x18
	regSRCR    = 0x24
	regBCCR    = 0x2C
	regIER     = 0x34
	regISR     = 0x38
	regICR     = 0x3C
	regL1CR    = 0x84
	regL1WHPCR = 0x88
	regL1WVPCR = 0x8C
	regL1PFCR  = 0x94
	regL1CACR  = 0x98
	regL1CFBAR = 0xAC
	regL1CFBLR = 0xB0
	regL1CFBLN = 0xB4
)

// register bits
const (
	gcrEnable = 1 << 0
	gcrPCPol  = 1 << 28
	gcrDEPol  = 1 << 29
	gcrVSPol  = 1 << 30
	gcrHSPol  = 1 << 31

	srcrIMR = 1 << 0 // immediate reload
	srcrVBR = 1 << 1 // reload at vertical blanking

	ierFUIE   = 1 << 1 // FIFO underrun
	ierTERRIE = 1 << 2 // transfer error

	layerEnable = 1 << 0
)

// interrupt status bits, as returned by Status
const (
	StatusLine          = 1 << 0
	StatusFIFOUnderrun  = 1 << 1
	StatusTransferError = 1 << 2
	StatusReload        = 1 << 3
)

// PixelFormat values as written to LxPFCR.
type PixelFormat uint8

const (
	ARGB8888 PixelFormat = 0
	RGB888   PixelFormat = 1
	RGB565   PixelFormat = 2
)

func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case RGB888:
		return 3
	case RGB565:
		return 2
	default:
		return 4
	}
}

// Timing is the panel timing in pixel clocks and lines.
type Timing struct {
	Width, Height int
	HSync, HBP    int
	HFP           int
	VSync, VBP    int
	VFP           int
}

// RK043FN48H is the 4.3" 480x272 panel on the F746 discovery board.
var RK043FN48H = Timing{
	Width: 480, Height: 272,
	HSync: 41, HBP: 13, HFP: 32,
	VSync: 10, VBP: 2, VFP: 2,
}

// Polarity of the panel control signals. The zero value is active-low syncs
// and data enable with pixel data latched on the rising clock edge.
type Polarity struct {
	HSyncHigh bool
	VSyncHigh bool
	DEHigh    bool
	PCInvert  bool
}

type Config struct {
	Timing     Timing
	Polarity   Polarity
	Format     PixelFormat
	Background color.RGBA
	// ErrorInterrupts enables the FIFO underrun and transfer error interrupts.
	ErrorInterrupts bool
	// ReloadTimeout bounds the wait for a vertical-blanking reload. Default 100 ms.
	ReloadTimeout time.Duration
}

var (
	ErrBadTiming     = errors.New("ltdc: bad timing")
	ErrNotConfigured = errors.New("ltdc: not configured")
	ErrReloadTimeout = errors.New("ltdc: reload timeout")
	ErrBadAddress    = errors.New("ltdc: framebuffer address not aligned")
	ErrFIFOUnderrun  = errors.New("ltdc: FIFO underrun")
	ErrTransferError = errors.New("ltdc: transfer error")
)

// Regs is 32-bit register access relative to the controller base.
type Regs interface {
	Read(off uint32) uint32
	Write(off uint32, v uint32)
}

type Controller struct {
	regs       Regs
	cfg        Config
	configured bool
	dump       bool
	sim        bool
}

// Open binds a controller to regs. Nothing is written until Configure.
func Open(regs Regs, simulated bool) *Controller {
	return &Controller{regs: regs, sim: simulated}
}

func (c *Controller) DebugDump(on bool) {
	c.dump = on
}

func (c *Controller) simLog(v string, args ...interface{}) {
	if !c.sim || !c.dump {
		return
	}
	log.Printf(v, args...)
}

func (c *Controller) write(off, v uint32) {
	c.simLog("ltdc: [0x%02x] <- 0x%08x", off, v)
	c.regs.Write(off, v)
}

func (c *Controller) modify(off, clear, set uint32) {
	c.write(off, c.regs.Read(off)&^clear|set)
}

// Accumulated timing register values, as the reference manual defines them.
type accumulated struct {
	hsw, vsh       uint32
	ahbp, avbp     uint32
	aaw, aah       uint32
	totalw, totalh uint32
}

func (t Timing) validate() error {
	if t.Width <= 0 || t.Height <= 0 || t.HSync <= 0 || t.VSync <= 0 {
		return errors.Wrapf(ErrBadTiming, "%+v", t)
	}
	if t.HBP < 0 || t.HFP < 0 || t.VBP < 0 || t.VFP < 0 {
		return errors.Wrapf(ErrBadTiming, "%+v", t)
	}
	if t.HSync+t.HBP+t.Width+t.HFP > 0xFFF || t.VSync+t.VBP+t.Height+t.VFP > 0x7FF {
		return errors.Wrapf(ErrBadTiming, "total too large %+v", t)
	}
	return nil
}

func (t Timing) accumulate() accumulated {
	return accumulated{
		hsw:    uint32(t.HSync - 1),
		vsh:    uint32(t.VSync - 1),
		ahbp:   uint32(t.HSync + t.HBP - 1),
		avbp:   uint32(t.VSync + t.VBP - 1),
		aaw:    uint32(t.HSync + t.HBP + t.Width - 1),
		aah:    uint32(t.VSync + t.VBP + t.Height - 1),
		totalw: uint32(t.HSync + t.HBP + t.Width + t.HFP - 1),
		totalh: uint32(t.VSync + t.VBP + t.Height + t.VFP - 1),
	}
}

// Configure disables the controller and programs timing, polarity, the
// background color and layer 1 covering the whole panel.
func (c *Controller) Configure(cfg Config) error {
	if err := cfg.Timing.validate(); err != nil {
		return err
	}
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 100 * time.Millisecond
	}
	c.simLog("ltdc: configure %dx%d format %d", cfg.Timing.Width, cfg.Timing.Height, cfg.Format)

	c.Disable()

	var gcr uint32
	if cfg.Polarity.HSyncHigh {
		gcr |= gcrHSPol
	}
	if cfg.Polarity.VSyncHigh {
		gcr |= gcrVSPol
	}
	if cfg.Polarity.DEHigh {
		gcr |= gcrDEPol
	}
	if cfg.Polarity.PCInvert {
		gcr |= gcrPCPol
	}
	c.modify(regGCR, gcrHSPol|gcrVSPol|gcrDEPol|gcrPCPol, gcr)

	a := cfg.Timing.accumulate()
	c.write(regSSCR, a.hsw<<16|a.vsh)
	c.write(regBPCR, a.ahbp<<16|a.avbp)
	c.write(regAWCR, a.aaw<<16|a.aah)
	c.write(regTWCR, a.totalw<<16|a.totalh)

	bg := cfg.Background
	c.write(regBCCR, uint32(bg.R)<<16|uint32(bg.G)<<8|uint32(bg.B))

	if cfg.ErrorInterrupts {
		c.modify(regIER, 0, ierFUIE|ierTERRIE)
	}

	// layer 1 window spans the active area
	c.write(regL1WHPCR, (a.aaw)<<16|(a.ahbp+1))
	c.write(regL1WVPCR, (a.aah)<<16|(a.avbp+1))
	c.write(regL1PFCR, uint32(cfg.Format))
	c.write(regL1CACR, 0xFF)

	pitch := uint32(cfg.Timing.Width * cfg.Format.BytesPerPixel())
	c.write(regL1CFBLR, pitch<<16|(pitch+3))
	c.write(regL1CFBLN, uint32(cfg.Timing.Height))
	c.write(regL1CR, layerEnable)

	c.cfg = cfg
	c.configured = true
	c.write(regSRCR, srcrIMR)
	return nil
}

func (c *Controller) Enable() {
	c.simLog("ltdc: enable")
	c.modify(regGCR, 0, gcrEnable)
}

func (c *Controller) Disable() {
	c.simLog("ltdc: disable")
	c.modify(regGCR, gcrEnable, 0)
}

func (c *Controller) Enabled() bool {
	return c.regs.Read(regGCR)&gcrEnable != 0
}

// SetFramebuffer writes the layer 1 address into the shadow register. The
// panel keeps scanning the old buffer until Reload.
func (c *Controller) SetFramebuffer(addr uint32) error {
	if !c.configured {
		return ErrNotConfigured
	}
	if addr%4 != 0 {
		return errors.Wrapf(ErrBadAddress, "0x%08x", addr)
	}
	c.write(regL1CFBAR, addr)
	return nil
}

// Reload requests a shadow register reload at the next vertical blanking
// period and waits for the hardware to acknowledge it.
func (c *Controller) Reload() error {
	if !c.configured {
		return ErrNotConfigured
	}
	c.write(regSRCR, srcrVBR)
	deadline := time.Now().Add(c.cfg.ReloadTimeout)
	for c.regs.Read(regSRCR)&srcrVBR != 0 {
		if time.Now().After(deadline) {
			return errors.Wrapf(ErrReloadTimeout, "after %v", c.cfg.ReloadTimeout)
		}
		time.Sleep(50 * time.Microsecond)
	}
	return nil
}

// Status returns and clears the interrupt status bits.
func (c *Controller) Status() uint32 {
	isr := c.regs.Read(regISR)
	if isr != 0 {
		c.write(regICR, isr)
	}
	return isr
}

// CheckErrors reads and clears the interrupt status and reports a FIFO
// underrun or a transfer error seen since the last call.
func (c *Controller) CheckErrors() error {
	isr := c.Status()
	switch {
	case isr&StatusTransferError != 0:
		return errors.Wrapf(ErrTransferError, "isr 0x%x", isr)
	case isr&StatusFIFOUnderrun != 0:
		return errors.Wrapf(ErrFIFOUnderrun, "isr 0x%x", isr)
	}
	return nil
}

func (c *Controller) String() string {
	t := c.cfg.Timing
	return fmt.Sprintf("ltdc %dx%d hs=%d/%d/%d vs=%d/%d/%d", t.Width, t.Height,
		t.HSync, t.HBP, t.HFP, t.VSync, t.VBP, t.VFP)
}
