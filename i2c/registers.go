package i2c

import "sync"

// RegisterFile is a simulated device with 256 byte-wide registers. The
// first written byte selects the register, the rest are stored from there,
// and reads continue from the selected register.
type RegisterFile struct {
	mu   sync.Mutex
	regs [256]byte
}

func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

func (f *RegisterFile) Tx(w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg := 0
	if len(w) > 0 {
		reg = int(w[0])
		for i, v := range w[1:] {
			f.regs[(reg+i)&0xFF] = v
		}
	}
	for i := range r {
		r[i] = f.regs[(reg+i)&0xFF]
	}
	return nil
}

func (f *RegisterFile) Set(reg uint8, vals ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, v := range vals {
		f.regs[(int(reg)+i)&0xFF] = v
	}
}

func (f *RegisterFile) Get(reg uint8) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[reg]
}
