//go:build !cgo

package main

import (
	"errors"

	"dscheirer.com/discopanel/arena"
)

// windowPanel needs cgo for the desktop window; without it, only the
// constructor exists and it always fails.
type windowPanel struct {
	queuedTouch
	*logDisplay
}

func newWindowPanel(memory *arena.Arena) (*windowPanel, error) {
	return nil, errors.New("window display needs a cgo build")
}
