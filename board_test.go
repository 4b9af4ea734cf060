package main

import (
	"testing"

	"dscheirer.com/discopanel/ltdc"
	"gotest.tools/assert"
)

func TestSetupBoardLTDC(t *testing.T) {
	s := loadTestSettings(t)
	s.Set(sDisplayType, "ltdc")
	s.Set(sTouchSource, "ft5336")
	s.Set(sI2CSim, true)

	rt := initRuntime(s)
	assert.NilError(t, setupBoard(&rt))
	defer rt.touch.closeTouch()

	ld := rt.display.(*ltdcDisplay)
	assert.Assert(t, ld.ctl.Enabled())

	// every frame ends up being scanned
	reloads := ld.reloadCount()
	for i := 0; i < 3; i++ {
		addr := renderFrame(rt, "ltdc")
		assert.Equal(t, ld.scanAddress(), addr)
	}
	assert.Equal(t, ld.reloadCount(), reloads+3)
	assert.Equal(t, rt.status.snapshot().DispErrs, uint64(0))

	// the simulated controller answers but reports no touch
	n, err := rt.touch.detectTouch()
	assert.NilError(t, err)
	assert.Equal(t, n, uint8(0))
}

func TestLTDCUnderrunReported(t *testing.T) {
	s := loadTestSettings(t)
	s.Set(sDisplayType, "ltdc")

	rt := initRuntime(s)
	assert.NilError(t, setupBoard(&rt))
	ld := rt.display.(*ltdcDisplay)

	ld.regs.Raise(ltdc.StatusFIFOUnderrun)
	addr := renderFrame(rt, "ltdc")
	// the frame is still shown, the underrun is counted once
	assert.Equal(t, ld.scanAddress(), addr)
	assert.Equal(t, rt.status.snapshot().DispErrs, uint64(1))

	renderFrame(rt, "ltdc")
	assert.Equal(t, rt.status.snapshot().DispErrs, uint64(1))
}

func TestSetupBoardSimulatedTouch(t *testing.T) {
	s := loadTestSettings(t)
	s.Set(sTouchSource, "ft5336")
	s.Set(sI2CSim, true)

	rt := initRuntime(s)
	assert.NilError(t, setupBoard(&rt))
	ft := rt.touch.(*ft5336Touch)

	// a finger at (150,85) on the simulated controller
	ft.regs.Set(0x02, 1)
	ft.regs.Set(0x03, 0x80, 150, 0x00, 85, 20, 0x10)

	ts := newTouchSampler(rt.touch, 10)
	p, ok := ts.sample(testLogger())
	assert.Assert(t, ok)
	assert.Equal(t, p, touchPoint{x: 150, y: 85})
}

func TestSetupBoardUnknownKinds(t *testing.T) {
	for key, val := range map[string]string{
		sDisplayType: "crt",
		sTouchSource: "pen",
		sOutputType:  "relay",
	} {
		s := loadTestSettings(t)
		s.Set(key, val)
		rt := initRuntime(s)
		err := setupBoard(&rt)
		assert.ErrorContains(t, err, "unknown")
	}
}

func TestSetupBoardBadLayout(t *testing.T) {
	s := loadTestSettings(t)
	s.Set(sPanelWidth, 320)

	rt := initRuntime(s)
	err := setupBoard(&rt)
	// D1 and D3 reach x=380
	assert.ErrorContains(t, err, "outside panel")
}
