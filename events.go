package main

import (
	"fmt"
	"image"
)

type buttonID int

// buttons, which are also the output names
const (
	D0 buttonID = iota
	D1
	D2
	D3
	numButtons
)

var buttonNames = [numButtons]string{"D0", "D1", "D2", "D3"}

func (b buttonID) String() string {
	if b < 0 || b >= numButtons {
		return fmt.Sprintf("D?(%d)", int(b))
	}
	return buttonNames[b]
}

func (b buttonID) valid() bool {
	return b >= 0 && b < numButtons
}

// touchPoint is one accepted touch, in panel pixels.
type touchPoint struct {
	x, y int
}

func (p touchPoint) point() image.Point {
	return image.Pt(p.x, p.y)
}

// buttonEvent is a request to toggle the output behind a button.
type buttonEvent struct {
	id buttonID
}

// pinStateEvent reports an output level after it was toggled.
type pinStateEvent struct {
	id   buttonID
	high bool
}

func (e pinStateEvent) String() string {
	lvl := "low"
	if e.high {
		lvl = "high"
	}
	return e.id.String() + "=" + lvl
}
