package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"gotest.tools/assert"
)

var testSettings configSettings
var cfgFile string = "./test/config.conf"

func TestMain(m *testing.M) {
	testSettings = initSettings(cfgFile)
	testlog, err := setupLogging(testSettings, false)
	if err != nil {
		log.Fatal(err)
	}

	// run the tests
	code := m.Run()
	testlog.Close()

	os.Exit(code)
}

func logCaller(pc uintptr, file string, line int, ok bool) {
	if !ok {
		file = "?"
		line = 0
	}

	fn := runtime.FuncForPC(pc)
	var fnName string
	if fn == nil {
		fnName = "?()"
	} else {
		dotName := filepath.Ext(fn.Name())
		fnName = strings.TrimLeft(dotName, ".") + "()"
	}

	log.Printf("Starting %s (%s:%d)", fnName, filepath.Base(file), line)
}

// loadTestSettings is a private copy of the test config, for tests that
// change settings.
func loadTestSettings(t *testing.T) *settings {
	s, err := loadSettings(cfgFile)
	assert.NilError(t, err)
	return s
}

// initTestRuntime is a runtime on a fake clock with in-memory collaborators.
func initTestRuntime(settings configSettings) runtimeConfig {
	rt := initRuntime(settings)
	rt.clock = clockwork.NewFakeClock()

	mem, err := newExternalMemory(settings)
	if err != nil {
		panic(err)
	}
	rt.memory = mem
	rt.touch = newQueuedTouch(rt.clock)
	rt.display = newLogDisplay(mem)
	rt.outputs, rt.statusLED = newLogOutputs()
	rt.statusSvc = &testStatusService{}
	if err := openBoard(&rt); err != nil {
		panic(err)
	}
	return rt
}

func testRuntime() (runtimeConfig, clockwork.FakeClock, commChannels) {
	// make rt for test, log the start of the test
	logCaller(runtime.Caller(1))
	rt := initTestRuntime(testSettings)
	return rt, rt.clock.(clockwork.FakeClock), rt.comms
}

func testRuntimeWith(s configSettings) (runtimeConfig, clockwork.FakeClock, commChannels) {
	logCaller(runtime.Caller(1))
	rt := initTestRuntime(s)
	return rt, rt.clock.(clockwork.FakeClock), rt.comms
}

// testBlockDuration steps the clock until total has passed, letting the one
// sleeping task finish its tick before every step and after the last one.
func testBlockDuration(clock clockwork.FakeClock, step, total time.Duration) {
	testBlockSleepers(clock, 1, step, total)
}

// testBlockSleepers is testBlockDuration for n tasks sleeping on the clock.
func testBlockSleepers(clock clockwork.FakeClock, n int, step, total time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += step {
		clock.BlockUntil(n)
		clock.Advance(step)
	}
	clock.BlockUntil(n)
}

// testQuit signals quit and keeps the clock moving until every task is gone.
func testQuit(rt runtimeConfig) {
	close(rt.comms.quit)
	done := make(chan struct{})
	go func() {
		rt.wg.Wait()
		close(done)
	}()

	fc, _ := rt.clock.(clockwork.FakeClock)
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			return
		case <-deadline:
			panic("tasks did not exit after quit")
		case <-time.After(time.Millisecond):
			if fc != nil {
				fc.Advance(time.Second)
			}
		}
	}
}

// waitFor polls cond in real time, for work that does not sleep on the clock.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func touchRead(t *testing.T, c chan touchPoint) touchPoint {
	t.Helper()
	select {
	case e := <-c:
		return e
	default:
		assert.Assert(t, false, "Nothing to read from touch channel")
	}
	return touchPoint{}
}

func touchNoRead(t *testing.T, c chan touchPoint) {
	t.Helper()
	select {
	case e := <-c:
		assert.Assert(t, false, "Got an unexpected touch %v", e)
	default:
	}
}

func buttonRead(t *testing.T, c chan buttonEvent) buttonEvent {
	t.Helper()
	select {
	case e := <-c:
		return e
	default:
		assert.Assert(t, false, "Nothing to read from button channel")
	}
	return buttonEvent{}
}

func buttonNoRead(t *testing.T, c chan buttonEvent) {
	t.Helper()
	select {
	case e := <-c:
		assert.Assert(t, false, "Got an unexpected button event %v", e)
	default:
	}
}

// pinWait blocks for a pin state, the output driver does not use the clock.
func pinWait(t *testing.T, c chan pinStateEvent) pinStateEvent {
	t.Helper()
	select {
	case e := <-c:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("Nothing to read from pin channel")
	}
	return pinStateEvent{}
}

// testLogger is a task logger for calling task helpers directly.
func testLogger() flogger {
	return &ThreadLogger{name: "test"}
}

// recordLogger keeps every line for tests that check what was logged.
type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (rl *recordLogger) Printf(format string, v ...interface{}) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.lines = append(rl.lines, fmt.Sprintf(format, v...))
}

func (rl *recordLogger) Println(v ...interface{}) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.lines = append(rl.lines, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (rl *recordLogger) Fatalf(format string, v ...interface{}) {
	panic(fmt.Sprintf(format, v...))
}

func (rl *recordLogger) contains(sub string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, l := range rl.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}
