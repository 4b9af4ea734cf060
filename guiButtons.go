package main

import (
	"fmt"
	"image"
	"image/color"

	"dscheirer.com/discopanel/framebuf"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorBackground = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	colorText       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorReleased   = color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}
	colorPressed    = color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
	colorLabel      = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
)

var labelFont tinyfont.Fonter = &proggy.TinySZ8pt7b

type guiButton struct {
	id            buttonID
	area          image.Rectangle
	label         string
	pressed       bool
	pressedColor  color.RGBA
	releasedColor color.RGBA
}

func newGUIButton(id buttonID, area image.Rectangle) guiButton {
	return guiButton{
		id:            id,
		area:          area,
		label:         id.String(),
		pressedColor:  colorPressed,
		releasedColor: colorReleased,
	}
}

// checkTouch is a half-open test: the max edges are outside.
func (b *guiButton) checkTouch(p image.Point) bool {
	return p.In(b.area)
}

func (b *guiButton) draw(c *framebuf.Canvas) error {
	col := b.releasedColor
	if b.pressed {
		col = b.pressedColor
	}
	c.FillRect(b.area, col)

	// center the label, baseline on the vertical middle
	w := framebuf.TextWidth(labelFont, b.label)
	x := b.area.Min.X + (b.area.Dx()-w)/2
	y := b.area.Min.Y + b.area.Dy()/2 + fontAscent/2
	c.Text(labelFont, x, y, b.label, colorLabel)
	return c.Err()
}

// approximate cap height of labelFont
const fontAscent = 8

// buttonSet is indexed by id; hit testing goes in id order.
type buttonSet [numButtons]guiButton

// newButtonSet lays out the buttons from settings. Every button has to lie
// inside bounds and no two may overlap.
func newButtonSet(settings configSettings, bounds image.Rectangle) (*buttonSet, error) {
	var bs buttonSet
	for i := range bs {
		id := buttonID(i)
		area := settings.GetRect(sButtonArea(id))
		if area.Empty() {
			return nil, fmt.Errorf("button %s has no area", id)
		}
		if !area.In(bounds) {
			return nil, fmt.Errorf("button %s %v outside panel %v", id, area, bounds)
		}
		for j := 0; j < i; j++ {
			if bs[j].area.Overlaps(area) {
				return nil, fmt.Errorf("button %s %v overlaps %s %v", id, area, bs[j].id, bs[j].area)
			}
		}
		bs[i] = newGUIButton(id, area)
	}
	return &bs, nil
}

// hits returns the ids of every button containing p, in id order.
func (bs *buttonSet) hits(p image.Point) []buttonID {
	var ids []buttonID
	for i := range bs {
		if bs[i].checkTouch(p) {
			ids = append(ids, bs[i].id)
		}
	}
	return ids
}

func (bs *buttonSet) setPressed(id buttonID, pressed bool) {
	bs[id].pressed = pressed
}

func (bs *buttonSet) pressedStates() [numButtons]bool {
	var ret [numButtons]bool
	for i := range bs {
		ret[i] = bs[i].pressed
	}
	return ret
}

func (bs *buttonSet) draw(c *framebuf.Canvas) error {
	for i := range bs {
		if err := bs[i].draw(c); err != nil {
			return fmt.Errorf("draw %s: %v", bs[i].id, err)
		}
	}
	return nil
}
