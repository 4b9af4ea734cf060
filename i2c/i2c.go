// Package i2c is a drivers.I2C bus over the Linux i2c-dev interface. A
// simulated bus routes transfers to attached in-memory devices instead.
package i2c

import (
	"fmt"
	"log"
	"os"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

const (
	I2C_SLAVE = 0x0703
)

var ErrNoDevice = errors.New("i2c: no device at address")

// Device is a simulated peripheral. Tx gets the bytes written and fills
// the read buffer, as one combined transfer.
type Device interface {
	Tx(w, r []byte) error
}

type Bus struct {
	mu      sync.Mutex
	fd      *os.File
	bus     int
	sim     bool
	dump    bool
	current uint16
	devices map[uint16]Device
}

var _ drivers.I2C = (*Bus)(nil)

// Open a connection to /dev/i2c-<bus>, or a simulated bus.
func Open(bus int, simulated bool) (*Bus, error) {
	b := &Bus{bus: bus, sim: simulated, current: 0xFFFF, devices: map[uint16]Device{}}
	if simulated {
		return b, nil
	}
	f, err := os.OpenFile(fmt.Sprintf("/dev/i2c-%d", bus), os.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "i2c: open bus %d", bus)
	}
	b.fd = f
	return b, nil
}

// DebugDump logs every transfer on a simulated bus.
func (b *Bus) DebugDump(on bool) {
	b.dump = on
}

// Attach puts a simulated device on the bus.
func (b *Bus) Attach(addr uint16, d Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = d
}

func (b *Bus) Close() error {
	if b.sim {
		b.logMsg("close: bus %d", b.bus)
		return nil
	}
	return b.fd.Close()
}

// Tx writes w then reads len(r) bytes from the device at addr.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sim {
		d, ok := b.devices[addr]
		b.logTx(addr, w, r, ok)
		if !ok {
			return errors.Wrapf(ErrNoDevice, "0x%02x", addr)
		}
		return d.Tx(w, r)
	}

	// not MT safe across processes, the slave address is per fd
	if err := b.selectLine(addr); err != nil {
		return err
	}
	if len(w) > 0 {
		if _, err := b.fd.Write(w); err != nil {
			return errors.Wrapf(err, "i2c: write 0x%02x", addr)
		}
	}
	if len(r) > 0 {
		if _, err := b.fd.Read(r); err != nil {
			return errors.Wrapf(err, "i2c: read 0x%02x", addr)
		}
	}
	return nil
}

// Probe reports whether something acknowledges a one byte read at addr.
func (b *Bus) Probe(addr uint16) bool {
	var buf [1]byte
	return b.Tx(addr, nil, buf[:]) == nil
}

func (b *Bus) selectLine(addr uint16) error {
	if b.current == addr {
		return nil
	}
	if err := ioctl(b.fd.Fd(), I2C_SLAVE, uintptr(addr)); err != nil {
		return errors.Wrapf(err, "i2c: ioctl I2C_SLAVE @ 0x%02x", addr)
	}
	b.current = addr
	return nil
}

func (b *Bus) logMsg(v string, args ...interface{}) {
	if b.dump {
		log.Printf(v, args...)
	}
}

func (b *Bus) logTx(addr uint16, w, r []byte, present bool) {
	if !b.dump {
		return
	}
	state := "ack"
	if !present {
		state = "nack"
	}
	log.Printf("i2c-%d 0x%02x %s write % x read %d", b.bus, addr, state, w, len(r))
}

func ioctl(fd, cmd, arg uintptr) error {
	_, _, err := syscall.Syscall6(syscall.SYS_IOCTL, fd, cmd, arg, 0, 0, 0)
	if err != 0 {
		return err
	}
	return nil
}
