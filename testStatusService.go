package main

import "sync"

// testStatusService records the handler instead of serving it.
type testStatusService struct {
	mu      sync.Mutex
	handler *apiHandler
	addr    string
	stopped bool
}

func (t *testStatusService) launch(handler *apiHandler, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
	t.addr = addr
	return nil
}

func (t *testStatusService) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *testStatusService) getHandler() *apiHandler {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handler
}
