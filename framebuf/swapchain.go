package framebuf

import (
	"fmt"

	"github.com/pkg/errors"
)

// Owner tags who may touch a buffer.
type Owner uint8

const (
	OwnerRender  Owner = iota // free for the render loop
	OwnerDisplay              // address published to the scanning controller
)

func (o Owner) String() string {
	switch o {
	case OwnerRender:
		return "render"
	case OwnerDisplay:
		return "display"
	default:
		return fmt.Sprintf("owner(%d)", uint8(o))
	}
}

var (
	ErrNotBack     = errors.New("framebuf: buffer is not the back buffer")
	ErrNotFinished = errors.New("framebuf: buffer drawing not finished")
	ErrPublished   = errors.New("framebuf: buffer is published")
)

type slot struct {
	fb       *FrameBuffer
	owner    Owner
	drawing  bool
	finished bool
}

// SwapChain alternates two buffers between the render loop and the display.
// At most one buffer is published; the render loop only ever gets the other.
type SwapChain struct {
	slots     [2]slot
	published int // -1 until the first Publish
	frames    uint64
}

func NewSwapChain(a, b *FrameBuffer) (*SwapChain, error) {
	if a == nil || b == nil {
		return nil, errors.New("framebuf: nil buffer")
	}
	if a.Width != b.Width || a.Height != b.Height {
		return nil, errors.Errorf("framebuf: size mismatch %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if a.Addr == b.Addr {
		return nil, errors.Errorf("framebuf: buffers share address 0x%08x", a.Addr)
	}
	return &SwapChain{
		slots:     [2]slot{{fb: a}, {fb: b}},
		published: -1,
	}, nil
}

func (s *SwapChain) backIndex() int {
	if s.published == 0 {
		return 1
	}
	return 0
}

// Back hands out the buffer that is not published and marks it as being drawn.
func (s *SwapChain) Back() (*FrameBuffer, error) {
	i := s.backIndex()
	sl := &s.slots[i]
	if sl.owner != OwnerRender {
		return nil, errors.Wrapf(ErrPublished, "slot %d owned by %s", i, sl.owner)
	}
	sl.drawing = true
	sl.finished = false
	return sl.fb, nil
}

// Finish marks fb as completely drawn.
func (s *SwapChain) Finish(fb *FrameBuffer) error {
	i := s.backIndex()
	sl := &s.slots[i]
	if sl.fb != fb || !sl.drawing {
		return ErrNotBack
	}
	sl.drawing = false
	sl.finished = true
	return nil
}

// Publish transfers fb to the display and returns the previously published
// buffer to the render loop. fb must be the finished back buffer.
func (s *SwapChain) Publish(fb *FrameBuffer) (uint32, error) {
	i := s.backIndex()
	sl := &s.slots[i]
	if sl.fb != fb {
		return 0, ErrNotBack
	}
	if !sl.finished {
		return 0, ErrNotFinished
	}
	if s.published >= 0 {
		s.slots[s.published].owner = OwnerRender
	}
	sl.owner = OwnerDisplay
	sl.finished = false
	s.published = i
	s.frames++
	return fb.Addr, nil
}

// Published is the buffer currently scanned out, nil before the first frame.
func (s *SwapChain) Published() *FrameBuffer {
	if s.published < 0 {
		return nil
	}
	return s.slots[s.published].fb
}

// Owner reports the tag of the buffer at addr.
func (s *SwapChain) Owner(addr uint32) (Owner, bool) {
	for _, sl := range s.slots {
		if sl.fb.Addr == addr {
			return sl.owner, true
		}
	}
	return 0, false
}

func (s *SwapChain) Frames() uint64 { return s.frames }
