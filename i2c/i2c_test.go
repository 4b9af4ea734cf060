package i2c

import (
	"errors"
	"testing"

	"gotest.tools/assert"
)

func TestSimulatedBusRoutes(t *testing.T) {
	b, err := Open(1, true)
	assert.NilError(t, err)
	defer b.Close()

	dev := NewRegisterFile()
	dev.Set(0xA8, 0x51)
	b.Attach(0x38, dev)

	r := make([]byte, 1)
	assert.NilError(t, b.Tx(0x38, []byte{0xA8}, r))
	assert.Equal(t, r[0], byte(0x51))

	err = b.Tx(0x39, []byte{0xA8}, r)
	assert.Assert(t, errors.Is(err, ErrNoDevice))
}

func TestRegisterFileWriteRead(t *testing.T) {
	dev := NewRegisterFile()
	assert.NilError(t, dev.Tx([]byte{0x80, 1, 2, 3}, nil))
	assert.Equal(t, dev.Get(0x81), byte(2))

	r := make([]byte, 3)
	assert.NilError(t, dev.Tx([]byte{0x80}, r))
	assert.DeepEqual(t, r, []byte{1, 2, 3})

	// wraps at the end of the register space
	dev.Set(0xFF, 9, 8)
	assert.Equal(t, dev.Get(0x00), byte(8))
}

func TestProbe(t *testing.T) {
	b, _ := Open(0, true)
	b.Attach(0x38, NewRegisterFile())
	assert.Assert(t, b.Probe(0x38))
	assert.Assert(t, !b.Probe(0x50))
}
