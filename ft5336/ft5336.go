// Package ft5336 drives the FocalTech FT5336 capacitive touch controller
// found on the 4.3" 480x272 LCD-TFT boards.
//
// The bus only has to implement drivers.I2C; Tx must do a write followed by
// a repeated-start read when both buffers are given.
//
//	dev := ft5336.New(bus)
//	if err := dev.Configure(ft5336.Config{}); err != nil { ... }
//	n, _ := dev.DetectTouch()
//	if n > 0 {
//		t, _ := dev.GetTouch(1)
//	}
package ft5336

import (
	"time"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

// Address is the 7-bit I2C address.
const Address = 0x38

// Registers.
const (
	regDevMode   = 0x00
	regGestureID = 0x01
	regTDStatus  = 0x02
	regP1XH      = 0x03 // first touch record, 6 bytes per record
	regThGroup   = 0x80
	regPeriodAct = 0x88
	regGMode     = 0xA4
	regChipID    = 0xA8

	recordLen = 6

	// ChipID is what regChipID reads back on an FT5336.
	ChipID = 0x51
)

// MaxTouches is the number of touch records the controller keeps.
const MaxTouches = 5

var (
	ErrBadChip  = errors.New("ft5336: unexpected chip id")
	ErrBadIndex = errors.New("ft5336: touch index out of range")
	ErrBadCount = errors.New("ft5336: invalid touch count")
)

// Event is the per-record event flag.
type Event uint8

const (
	EventPressDown Event = iota
	EventLiftUp
	EventContact
	EventNone
)

// Touch is one decoded touch record.
type Touch struct {
	X      uint16
	Y      uint16
	Weight uint8
	Misc   uint8 // area nibble
	ID     uint8
	Event  Event
}

type Config struct {
	// Address defaults to 0x38.
	Address uint16
	// Threshold is the touch detection threshold; 0 keeps the chip default.
	Threshold uint8
	// ActivePeriod is the report rate in active mode; 0 keeps the chip default.
	ActivePeriod uint8
	// SkipChipCheck disables the chip id probe.
	SkipChipCheck bool
	// Settle is how long to wait after configuration. Default 10 ms.
	Settle time.Duration
}

type Device struct {
	bus     drivers.I2C
	Address uint16
	buf     [1 + recordLen]byte
	cfg     Config
}

// New creates a Device. It does not touch the bus.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// Configure probes the chip and puts it in polling mode.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.Settle == 0 {
		cfg.Settle = 10 * time.Millisecond
	}
	d.cfg = cfg

	if !cfg.SkipChipCheck {
		id, err := d.readReg(regChipID)
		if err != nil {
			return errors.Wrap(err, "ft5336: read chip id")
		}
		if id != ChipID {
			return errors.Wrapf(ErrBadChip, "got 0x%02x", id)
		}
	}

	if err := d.writeReg(regDevMode, 0x00); err != nil {
		return errors.Wrap(err, "ft5336: set working mode")
	}
	// polling, no interrupt line
	if err := d.writeReg(regGMode, 0x00); err != nil {
		return errors.Wrap(err, "ft5336: set g_mode")
	}
	if cfg.Threshold != 0 {
		if err := d.writeReg(regThGroup, cfg.Threshold); err != nil {
			return errors.Wrap(err, "ft5336: set threshold")
		}
	}
	if cfg.ActivePeriod != 0 {
		if err := d.writeReg(regPeriodAct, cfg.ActivePeriod); err != nil {
			return errors.Wrap(err, "ft5336: set period")
		}
	}
	time.Sleep(cfg.Settle)
	return nil
}

// DetectTouch returns the number of active touch points.
func (d *Device) DetectTouch() (uint8, error) {
	v, err := d.readReg(regTDStatus)
	if err != nil {
		return 0, errors.Wrap(err, "ft5336: read td_status")
	}
	n := v & 0x0F
	if n > MaxTouches {
		// the controller reports 0x0F while idle on some panels
		return 0, errors.Wrapf(ErrBadCount, "td_status 0x%02x", v)
	}
	return n, nil
}

// GetTouch reads touch record n, counting from 1.
func (d *Device) GetTouch(n uint8) (Touch, error) {
	if n < 1 || n > MaxTouches {
		return Touch{}, errors.Wrapf(ErrBadIndex, "%d", n)
	}
	wr := d.buf[:1]
	rd := d.buf[1:]
	wr[0] = regP1XH + (n-1)*recordLen
	if err := d.bus.Tx(d.Address, wr, rd); err != nil {
		return Touch{}, errors.Wrapf(err, "ft5336: read touch %d", n)
	}
	return decodeRecord(rd), nil
}

// ReadTouchPoint implements touch.Pointer for the first contact. Z is the
// touch weight, or 0 when nothing is touching.
func (d *Device) ReadTouchPoint() touch.Point {
	n, err := d.DetectTouch()
	if err != nil || n == 0 {
		return touch.Point{}
	}
	t, err := d.GetTouch(1)
	if err != nil {
		return touch.Point{}
	}
	z := int(t.Weight)
	if z == 0 {
		z = 1
	}
	return touch.Point{X: int(t.X), Y: int(t.Y), Z: z}
}

var _ touch.Pointer = (*Device)(nil)

func decodeRecord(r []byte) Touch {
	return Touch{
		Event:  Event(r[0] >> 6),
		X:      uint16(r[0]&0x0F)<<8 | uint16(r[1]),
		ID:     r[2] >> 4,
		Y:      uint16(r[2]&0x0F)<<8 | uint16(r[3]),
		Weight: r[4],
		Misc:   r[5] >> 4,
	}
}

func (d *Device) readReg(reg uint8) (uint8, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

func (d *Device) writeReg(reg, val uint8) error {
	d.buf[0] = reg
	d.buf[1] = val
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}
