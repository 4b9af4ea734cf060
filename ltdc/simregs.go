package ltdc

import "sync"

// SimRegs is an in-memory LTDC register file. Writing a reload request to
// SRCR copies the layer shadow registers into the active set and clears the
// request, the way the hardware does at the next blanking period. Writing
// ICR clears the matching ISR bits.
type SimRegs struct {
	mu      sync.Mutex
	shadow  [0x100 / 4]uint32
	active  [0x100 / 4]uint32
	reloads int
	// Stuck leaves reload requests pending forever.
	Stuck bool
}

func NewSimRegs() *SimRegs {
	return &SimRegs{}
}

func (s *SimRegs) Read(off uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shadow[off/4]
}

func (s *SimRegs) Write(off uint32, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if off == regICR {
		s.shadow[regISR/4] &^= v
		return
	}
	s.shadow[off/4] = v
	if off != regSRCR || v&(srcrIMR|srcrVBR) == 0 || s.Stuck {
		return
	}
	for i := regL1CR / 4; i <= regL1CFBLN/4; i++ {
		s.active[i] = s.shadow[i]
	}
	s.reloads++
	s.shadow[regSRCR/4] = 0
}

// ScanAddress is the framebuffer address the panel is being refreshed from.
func (s *SimRegs) ScanAddress() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[regL1CFBAR/4]
}

// Raise sets interrupt status bits, as a FIFO underrun or a bus error would.
func (s *SimRegs) Raise(bits uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadow[regISR/4] |= bits
}

// Reloads counts applied reload requests.
func (s *SimRegs) Reloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloads
}
