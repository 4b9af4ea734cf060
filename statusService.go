package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"

	"github.com/buger/jsonparser"
)

type statusResponse struct {
	Response string          `json:"response"`
	Error    string          `json:"error,omitempty"`
	Status   *statusSnapshot `json:"status,omitempty"`
}

type touchRequest struct {
	X int
	Y int
}

// parseTouchRequest reads {"x": .., "y": ..}.
func parseTouchRequest(body []byte) (touchRequest, error) {
	x, err := jsonparser.GetInt(body, "x")
	if err != nil {
		return touchRequest{}, fmt.Errorf("x: %v", err)
	}
	y, err := jsonparser.GetInt(body, "y")
	if err != nil {
		return touchRequest{}, fmt.Errorf("y: %v", err)
	}
	return touchRequest{X: int(x), Y: int(y)}, nil
}

// apiHandler - settings for the thing that handles HTTP requests
// where a generated status secret is shown
var secretOut io.Writer = os.Stdout

type apiHandler struct {
	rt     runtimeConfig
	secret string
	user   string
	realm  string
}

func newHandler(rt runtimeConfig) *apiHandler {
	secret := rt.settings.GetString(sStatusSecret)
	if secret == "" {
		secret = randomSecret()
		// stdout only, never the log file
		fmt.Fprintf(secretOut, "status secret for %s: %s\n", rt.settings.GetString(sStatusUser), secret)
		rt.logger.Println("no status secret configured, generated one")
	}
	return &apiHandler{
		rt:     rt,
		secret: secret,
		user:   rt.settings.GetString(sStatusUser),
		realm:  "discopanel",
	}
}

func randomSecret() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// BasicAuth - provide a middleware to authenticate users
func (m *apiHandler) BasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(user), []byte(m.user)) != 1 || subtle.ConstantTimeCompare([]byte(pass), []byte(m.secret)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+m.realm+`"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorised.\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *apiHandler) getStatus() statusResponse {
	snap := m.rt.status.snapshot()
	if m.rt.memory != nil {
		st := m.rt.memory.Stats()
		snap.Memory = &st
	}
	return statusResponse{Response: "OK", Status: &snap}
}

// injectTouch queues a press, when the touch source takes injected presses.
func (m *apiHandler) injectTouch(req touchRequest) (int, statusResponse) {
	qt, ok := m.rt.touch.(*queuedTouch)
	if !ok {
		return http.StatusNotFound, statusResponse{Response: "BAD", Error: "touch source does not accept injected presses"}
	}
	w, h := m.rt.settings.GetInt(sPanelWidth), m.rt.settings.GetInt(sPanelHeight)
	if req.X < 0 || req.Y < 0 || req.X >= w || req.Y >= h {
		return http.StatusBadRequest, statusResponse{Response: "BAD", Error: "touch outside the panel"}
	}
	qt.push(req.X, req.Y)
	m.rt.logger.Printf("injected touch (%d,%d)", req.X, req.Y)
	return http.StatusOK, statusResponse{Response: "OK"}
}

func writeAnswer(w http.ResponseWriter, code int, sr statusResponse) {
	output, _ := json.Marshal(sr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(output)
}

func (m *apiHandler) apiStatus(w http.ResponseWriter, r *http.Request) {
	writeAnswer(w, http.StatusOK, m.getStatus())
}

func (m *apiHandler) apiTouch(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, 1024))
	if err != nil {
		writeAnswer(w, http.StatusBadRequest, statusResponse{Response: "BAD", Error: err.Error()})
		return
	}
	req, err := parseTouchRequest(body)
	if err != nil {
		writeAnswer(w, http.StatusBadRequest, statusResponse{Response: "BAD", Error: err.Error()})
		return
	}
	code, sr := m.injectTouch(req)
	writeAnswer(w, code, sr)
}

func startStatusService(rt runtimeConfig) {
	startTask(rt, "Status", runStatusService)
}

func runStatusService(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runStatusService")
	}()

	handler := newHandler(rt)
	addr := rt.settings.GetString(sStatusAddr)
	if err := rt.statusSvc.launch(handler, addr); err != nil {
		rt.logger.Printf("status service on %s: %v", addr, err)
		return
	}
	rt.logger.Printf("status service on %s", addr)

	<-rt.comms.quit
	rt.logger.Println("quit from status service")
	rt.statusSvc.stop()
}
