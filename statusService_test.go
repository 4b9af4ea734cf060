package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buger/jsonparser"
	"gotest.tools/assert"
)

func launchTestStatus(t *testing.T, rt runtimeConfig) *apiHandler {
	t.Helper()
	startStatusService(rt)
	svc := rt.statusSvc.(*testStatusService)
	waitFor(t, "status service launch", func() bool { return svc.getHandler() != nil })
	return svc.getHandler()
}

func doRequest(h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		req.SetBasicAuth("discopanel", "testsecret")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusServiceLifecycle(t *testing.T) {
	rt, _, _ := testRuntime()
	handler := launchTestStatus(t, rt)
	assert.Equal(t, handler.secret, "testsecret")

	testQuit(rt)
	assert.Assert(t, rt.statusSvc.(*testStatusService).stopped)
}

func TestStatusRequiresAuth(t *testing.T) {
	rt, _, _ := testRuntime()
	handler := launchTestStatus(t, rt)
	r := (&httpStatusService{}).router(handler)

	rec := doRequest(r, "GET", "/api/status", "", false)
	assert.Equal(t, rec.Code, http.StatusUnauthorized)
	assert.Assert(t, strings.Contains(rec.Header().Get("WWW-Authenticate"), "discopanel"))

	testQuit(rt)
}

func TestStatusReport(t *testing.T) {
	rt, clock, _ := testRuntime()
	handler := launchTestStatus(t, rt)
	r := (&httpStatusService{}).router(handler)

	startGUI(rt)
	clock.BlockUntil(1)

	rec := doRequest(r, "GET", "/api/status", "", true)
	assert.Equal(t, rec.Code, http.StatusOK)
	body := rec.Body.Bytes()

	resp, err := jsonparser.GetString(body, "response")
	assert.NilError(t, err)
	assert.Equal(t, resp, "OK")
	frames, err := jsonparser.GetInt(body, "status", "frames")
	assert.NilError(t, err)
	assert.Equal(t, frames, int64(1))
	d0, err := jsonparser.GetBoolean(body, "status", "buttons", "D0")
	assert.NilError(t, err)
	assert.Equal(t, d0, false)
	used, err := jsonparser.GetInt(body, "status", "memory", "UsedWords")
	assert.NilError(t, err)
	assert.Equal(t, used, int64(2*480*272))

	testQuit(rt)
}

func TestStatusInjectTouch(t *testing.T) {
	rt, _, _ := testRuntime()
	handler := launchTestStatus(t, rt)
	r := (&httpStatusService{}).router(handler)
	qt := rt.touch.(*queuedTouch)

	rec := doRequest(r, "POST", "/api/touch", `{"x": 150, "y": 85}`, true)
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, qt.pending(), 1)
	td, err := qt.getTouch(1)
	assert.NilError(t, err)
	assert.Equal(t, td.x, uint16(150))
	assert.Equal(t, td.y, uint16(85))

	rec = doRequest(r, "POST", "/api/touch", `{"x": 900, "y": 85}`, true)
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	rec = doRequest(r, "POST", "/api/touch", `{"y": 85}`, true)
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	// wrong method
	rec = doRequest(r, "GET", "/api/touch", "", true)
	assert.Equal(t, rec.Code, http.StatusMethodNotAllowed)

	testQuit(rt)
}

func TestStatusInjectNeedsQueuedTouch(t *testing.T) {
	rt, _, _ := testRuntime()
	rt.touch = &ft5336Touch{}
	handler := launchTestStatus(t, rt)

	code, resp := handler.injectTouch(touchRequest{X: 1, Y: 1})
	assert.Equal(t, code, http.StatusNotFound)
	assert.Equal(t, resp.Response, "BAD")

	testQuit(rt)
}

func TestGeneratedSecretNotLogged(t *testing.T) {
	s := loadTestSettings(t)
	s.Set(sStatusSecret, "")
	rt, _, _ := testRuntimeWith(s)
	rl := &recordLogger{}
	rt.logger = rl

	var out bytes.Buffer
	saved := secretOut
	secretOut = &out
	defer func() { secretOut = saved }()

	h := newHandler(rt)
	assert.Assert(t, len(h.secret) > 0)
	assert.Assert(t, rl.contains("generated one"))
	assert.Assert(t, !rl.contains(h.secret))
	assert.Assert(t, strings.Contains(out.String(), h.secret))
}
