package framebuf

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"gotest.tools/assert"
	"tinygo.org/x/tinyfont"
)

func newPair(t *testing.T, w, h int) (*FrameBuffer, *FrameBuffer) {
	a, err := New(w, h, 0xC0000000, make([]uint32, w*h))
	assert.NilError(t, err)
	b, err := New(w, h, 0xC0000000+uint32(w*h*4), make([]uint32, w*h))
	assert.NilError(t, err)
	return a, b
}

func TestARGBRoundTrip(t *testing.T) {
	c := color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	assert.Equal(t, ARGB(c), uint32(0xff123456))
	assert.Equal(t, RGBA(ARGB(c)), c)
}

func TestSwapChainPingPong(t *testing.T) {
	a, b := newPair(t, 4, 4)
	sc, err := NewSwapChain(a, b)
	assert.NilError(t, err)
	assert.Assert(t, sc.Published() == nil)

	var last uint32
	for i := 0; i < 6; i++ {
		fb, err := sc.Back()
		assert.NilError(t, err)
		// never hand out what is being scanned
		if pub := sc.Published(); pub != nil {
			assert.Assert(t, fb.Addr != pub.Addr)
		}
		assert.NilError(t, sc.Finish(fb))
		addr, err := sc.Publish(fb)
		assert.NilError(t, err)
		assert.Assert(t, addr != last)
		last = addr

		owner, ok := sc.Owner(addr)
		assert.Assert(t, ok)
		assert.Equal(t, owner, OwnerDisplay)
	}
	assert.Equal(t, sc.Frames(), uint64(6))
}

func TestSwapChainRejectsUnfinished(t *testing.T) {
	a, b := newPair(t, 2, 2)
	sc, _ := NewSwapChain(a, b)

	fb, err := sc.Back()
	assert.NilError(t, err)
	_, err = sc.Publish(fb)
	assert.Assert(t, errors.Is(err, ErrNotFinished))
}

func TestSwapChainRejectsFrontBuffer(t *testing.T) {
	a, b := newPair(t, 2, 2)
	sc, _ := NewSwapChain(a, b)

	fb, _ := sc.Back()
	_ = sc.Finish(fb)
	_, err := sc.Publish(fb)
	assert.NilError(t, err)

	// the published buffer can not be finished or published again
	assert.Assert(t, errors.Is(sc.Finish(fb), ErrNotBack))
	_, err = sc.Publish(fb)
	assert.Assert(t, errors.Is(err, ErrNotBack))
}

func TestSwapChainRejectsSharedAddress(t *testing.T) {
	a, _ := newPair(t, 2, 2)
	_, err := NewSwapChain(a, a)
	assert.ErrorContains(t, err, "share address")
}

func TestCanvasFillAndBounds(t *testing.T) {
	fb, _ := newPair(t, 8, 4)
	c := NewCanvas(fb)
	red := color.RGBA{R: 0xff, A: 0xff}

	c.Clear(color.RGBA{A: 0xff})
	c.FillRect(image.Rect(2, 1, 4, 3), red)
	assert.NilError(t, c.Err())
	assert.Equal(t, fb.At(2, 1), ARGB(red))
	assert.Equal(t, fb.At(3, 2), ARGB(red))
	// max edge is exclusive
	assert.Equal(t, fb.At(4, 2), uint32(0xff000000))

	c.FillRect(image.Rect(6, 0, 9, 2), red)
	assert.ErrorContains(t, c.Err(), "outside")
}

func TestCanvasTextInside(t *testing.T) {
	fb, _ := newPair(t, 64, 16)
	c := NewCanvas(fb)
	c.Clear(color.RGBA{A: 0xff})
	c.Text(&tinyfont.TomThumb, 2, 10, "D0", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	assert.NilError(t, c.Err())

	lit := 0
	for _, p := range fb.Pix {
		if p != 0xff000000 {
			lit++
		}
	}
	assert.Assert(t, lit > 0)
	assert.Assert(t, TextWidth(&tinyfont.TomThumb, "D0") > 0)
}

func TestSwapChainBackOwnedByDisplay(t *testing.T) {
	a, b := newPair(t, 2, 2)
	sc, _ := NewSwapChain(a, b)
	sc.slots[0].owner = OwnerDisplay

	_, err := sc.Back()
	assert.Assert(t, errors.Is(err, ErrPublished))
	assert.ErrorContains(t, err, "slot 0 owned by display")
}
