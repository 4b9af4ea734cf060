package main

import (
	"fmt"

	"dscheirer.com/discopanel/arena"
)

// memoryAlign is the framebuffer alignment in words (64 bytes, one AXI burst).
const memoryAlign = 16

// newExternalMemory backs the external SDRAM window with host memory.
func newExternalMemory(settings configSettings) (*arena.Arena, error) {
	base := settings.GetInt64(sSDRAMBase)
	size := settings.GetInt64(sSDRAMSize)
	if base < 0 || base > 0xFFFFFFFF || base%arena.WordBytes != 0 {
		return nil, fmt.Errorf("bad sdram base 0x%x", base)
	}
	if size <= 0 || base+size > 0x100000000 {
		return nil, fmt.Errorf("bad sdram size %d at 0x%x", size, base)
	}
	mem := make([]uint32, size/arena.WordBytes)
	return arena.New(uint32(base), mem)
}

// checkExternalMemory writes a pattern over a block of external memory,
// reads it back and compares the sum.
func checkExternalMemory(mem *arena.Arena, words int, logger flogger) (err error) {
	blk, buf, err := mem.Alloc(words, 1)
	if err != nil {
		return fmt.Errorf("memtest alloc: %v", err)
	}
	defer func() {
		if ferr := releaseBlock(mem, blk, logger); ferr != nil && err == nil {
			err = fmt.Errorf("memtest free: %v", ferr)
		}
	}()

	var want uint64
	for i := range buf {
		v := uint32(i * 2)
		buf[i] = v
		want += uint64(v)
	}

	// read back through the bus address, as the display would
	view, err := mem.Resolve(blk.Addr, blk.Words)
	if err != nil {
		return fmt.Errorf("memtest resolve: %v", err)
	}
	var got uint64
	for i, v := range view {
		if v != uint32(i*2) {
			return fmt.Errorf("memtest: word %d at 0x%08x is 0x%08x, want 0x%08x",
				i, blk.Addr+uint32(i*arena.WordBytes), v, uint32(i*2))
		}
		got += uint64(v)
	}
	if got != want {
		return fmt.Errorf("memtest: sum %d, want %d", got, want)
	}
	logger.Printf("memtest ok: %d words at 0x%08x, sum %d", words, blk.Addr, got)
	return nil
}

func releaseBlock(mem *arena.Arena, blk arena.Block, logger flogger) error {
	if err := mem.Free(blk); err != nil {
		logger.Printf("free 0x%08x (%d words): %v", blk.Addr, blk.Words, err)
		return err
	}
	return nil
}
