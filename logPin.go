package main

import (
	"fmt"
	"sync"
)

// logPin is an output that only remembers its level and keeps an audit
// trail. stuck pins ignore toggles, like a shorted or unpowered line.
type logPin struct {
	mu         sync.Mutex
	name       string
	high       bool
	stuck      bool
	audit      []string
	disableLog bool
	logger     flogger
}

func newLogPin(name string) *logPin {
	return &logPin{name: name, logger: &ThreadLogger{name: "Pins"}}
}

func (lp *logPin) toggle() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.stuck {
		lp.high = !lp.high
	}
	msg := fmt.Sprintf("Toggle %s to %v", lp.name, lp.high)
	if !lp.disableLog {
		lp.logger.Println(msg)
	}
	lp.audit = append(lp.audit, msg)
}

func (lp *logPin) isSetHigh() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.high
}

func (lp *logPin) setStuck(stuck bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.stuck = stuck
}

func (lp *logPin) auditLen() int {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return len(lp.audit)
}

func newLogOutputs() (outputBank, *logPin) {
	var bank outputBank
	for i := range bank {
		bank[i] = newLogPin(buttonID(i).String())
	}
	return bank, newLogPin("status")
}
