// Package framebuf holds ARGB8888 frame buffers and the ping-pong swap chain
// that hands them to a scanning display controller.
package framebuf

import (
	"image/color"

	"github.com/pkg/errors"
)

// FrameBuffer is one packed ARGB8888 image, one word per pixel, row major.
type FrameBuffer struct {
	Width  int
	Height int
	Addr   uint32 // bus address handed to the display controller
	Pix    []uint32
}

// New wraps pix, which must hold at least width*height words.
func New(width, height int, addr uint32, pix []uint32) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("framebuf: bad size %dx%d", width, height)
	}
	if len(pix) < width*height {
		return nil, errors.Errorf("framebuf: %d words for %dx%d", len(pix), width, height)
	}
	return &FrameBuffer{Width: width, Height: height, Addr: addr, Pix: pix[:width*height]}, nil
}

func (fb *FrameBuffer) At(x, y int) uint32 {
	return fb.Pix[y*fb.Width+x]
}

// ARGB packs c with its alpha into a single word.
func ARGB(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBA unpacks a word produced by ARGB.
func RGBA(p uint32) color.RGBA {
	return color.RGBA{A: uint8(p >> 24), R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p)}
}
