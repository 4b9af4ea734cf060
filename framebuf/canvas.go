package framebuf

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Canvas draws into a FrameBuffer. It satisfies drivers.Displayer so tinyfont
// can render text into it. Writes outside the buffer are not performed; the
// first one is kept and reported by Err.
type Canvas struct {
	fb  *FrameBuffer
	err error
}

var _ drivers.Displayer = (*Canvas)(nil)

func NewCanvas(fb *FrameBuffer) *Canvas {
	return &Canvas{fb: fb}
}

func (c *Canvas) Size() (x, y int16) {
	return int16(c.fb.Width), int16(c.fb.Height)
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= c.fb.Width || iy < 0 || iy >= c.fb.Height {
		c.fail(errors.Errorf("framebuf: pixel (%d,%d) outside %dx%d", ix, iy, c.fb.Width, c.fb.Height))
		return
	}
	c.fb.Pix[iy*c.fb.Width+ix] = ARGB(col)
}

// Display is a no-op; publication is the swap chain's job.
func (c *Canvas) Display() error { return c.err }

func (c *Canvas) Clear(col color.RGBA) {
	p := ARGB(col)
	for i := range c.fb.Pix {
		c.fb.Pix[i] = p
	}
}

// FillRect fills r, which must lie inside the buffer.
func (c *Canvas) FillRect(r image.Rectangle, col color.RGBA) {
	bounds := image.Rect(0, 0, c.fb.Width, c.fb.Height)
	if !r.In(bounds) {
		c.fail(errors.Errorf("framebuf: rect %v outside %v", r, bounds))
		return
	}
	p := ARGB(col)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.fb.Pix[y*c.fb.Width : (y+1)*c.fb.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = p
		}
	}
}

// Text writes s with its baseline at y.
func (c *Canvas) Text(font tinyfont.Fonter, x, y int, s string, col color.RGBA) {
	tinyfont.WriteLine(c, font, int16(x), int16(y), s, col)
}

// TextWidth is the advance width of s in pixels.
func TextWidth(font tinyfont.Fonter, s string) int {
	_, outbox := tinyfont.LineWidth(font, s)
	return int(outbox)
}

func (c *Canvas) Err() error { return c.err }

func (c *Canvas) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}
