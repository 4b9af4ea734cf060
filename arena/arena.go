// Package arena is a bump allocator over a caller supplied region of 32-bit
// words, typically external SDRAM mapped at a fixed bus address.
//
// Addresses handed out are bus addresses (base + byte offset), which is what
// a DMA reader such as a display controller is given. Resolve maps such an
// address back to the backing words.
//
// Free is LIFO: freeing the top block lowers the top; freeing a block below
// the top marks it and it is reclaimed once every block above it is freed.
package arena

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// WordBytes is the size of one allocation unit.
const WordBytes = 4

var (
	ErrOutOfMemory = errors.New("arena: out of memory")
	ErrBadBlock    = errors.New("arena: block not allocated")
	ErrBadAddress  = errors.New("arena: address outside region")
	ErrBadAlign    = errors.New("arena: bad alignment")
)

// Block describes one allocation.
type Block struct {
	Addr  uint32 // bus address of the first word
	Words int
	off   int // word offset into the region
}

// Stats is a point-in-time view of the arena.
type Stats struct {
	Base        uint32
	CapWords    int
	UsedWords   int
	Allocations int
	Peak        int
}

type alloc struct {
	off   int
	words int
	freed bool
}

type Arena struct {
	mu     sync.Mutex
	base   uint32
	mem    []uint32
	top    int
	peak   int
	allocs []alloc
}

// New places an arena over mem, whose first word lives at bus address base.
// The base must be word aligned.
func New(base uint32, mem []uint32) (*Arena, error) {
	if base%WordBytes != 0 {
		return nil, errors.Wrapf(ErrBadAlign, "base 0x%08x", base)
	}
	if uint64(base)+uint64(len(mem))*WordBytes > 1<<32 {
		return nil, errors.Wrapf(ErrBadAddress, "region 0x%08x+%d words", base, len(mem))
	}
	return &Arena{base: base, mem: mem}, nil
}

// Alloc reserves words words aligned to alignWords (a power of two, 0 or 1
// for no alignment). The returned slice is zeroed.
func (a *Arena) Alloc(words, alignWords int) (Block, []uint32, error) {
	if words <= 0 {
		return Block{}, nil, errors.Wrapf(ErrBadBlock, "size %d", words)
	}
	if alignWords <= 0 {
		alignWords = 1
	}
	if alignWords&(alignWords-1) != 0 {
		return Block{}, nil, errors.Wrapf(ErrBadAlign, "align %d", alignWords)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	off := (a.top + alignWords - 1) &^ (alignWords - 1)
	if off+words > len(a.mem) {
		return Block{}, nil, errors.Wrapf(ErrOutOfMemory, "want %d words, %d free", words, len(a.mem)-a.top)
	}

	s := a.mem[off : off+words : off+words]
	for i := range s {
		s[i] = 0
	}
	a.top = off + words
	if a.top > a.peak {
		a.peak = a.top
	}
	a.allocs = append(a.allocs, alloc{off: off, words: words})

	return Block{Addr: a.base + uint32(off)*WordBytes, Words: words, off: off}, s, nil
}

// Free releases b. Blocks freed out of order are reclaimed lazily.
func (a *Arena) Free(b Block) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i := len(a.allocs) - 1; i >= 0; i-- {
		if a.allocs[i].off == b.off && a.allocs[i].words == b.Words && !a.allocs[i].freed {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Wrapf(ErrBadBlock, "addr 0x%08x", b.Addr)
	}
	a.allocs[idx].freed = true

	// pop every freed block off the top
	for len(a.allocs) > 0 && a.allocs[len(a.allocs)-1].freed {
		a.allocs = a.allocs[:len(a.allocs)-1]
	}
	if len(a.allocs) == 0 {
		a.top = 0
	} else {
		last := a.allocs[len(a.allocs)-1]
		a.top = last.off + last.words
	}
	return nil
}

// Reset drops every allocation.
func (a *Arena) Reset() {
	a.mu.Lock()
	a.allocs = a.allocs[:0]
	a.top = 0
	a.mu.Unlock()
}

// Resolve returns the words backing [addr, addr+words*4).
func (a *Arena) Resolve(addr uint32, words int) ([]uint32, error) {
	if addr < a.base || (addr-a.base)%WordBytes != 0 {
		return nil, errors.Wrapf(ErrBadAddress, "0x%08x", addr)
	}
	off := int((addr - a.base) / WordBytes)
	if words < 0 || off+words > len(a.mem) {
		return nil, errors.Wrapf(ErrBadAddress, "0x%08x+%d words", addr, words)
	}
	return a.mem[off : off+words : off+words], nil
}

func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	live := 0
	for _, al := range a.allocs {
		if !al.freed {
			live++
		}
	}
	return Stats{
		Base:        a.base,
		CapWords:    len(a.mem),
		UsedWords:   a.top,
		Allocations: live,
		Peak:        a.peak,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("base=0x%08x used=%d/%d words allocs=%d peak=%d",
		s.Base, s.UsedWords, s.CapWords, s.Allocations, s.Peak)
}
