package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"
)

type httpStatusService struct {
	srv      *http.Server
	handler  *apiHandler
	maxConns int
	done     chan struct{}
}

func newHTTPStatusService(settings configSettings) *httpStatusService {
	return &httpStatusService{maxConns: settings.GetInt(sStatusConns)}
}

func (h *httpStatusService) router(handler *apiHandler) *mux.Router {
	r := mux.NewRouter()
	// auth middleware
	r.Use(handler.BasicAuth)
	r.HandleFunc("/api/status", handler.apiStatus).Methods("GET")
	r.HandleFunc("/api/touch", handler.apiTouch).Methods("POST")
	return r
}

func (h *httpStatusService) launch(handler *apiHandler, addr string) error {
	h.handler = handler
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if h.maxConns > 0 {
		l = netutil.LimitListener(l, h.maxConns)
	}

	h.srv = &http.Server{
		Handler:      h.router(handler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)
		log.Println("starting status service http server")
		err := h.srv.Serve(l)
		if err != http.ErrServerClosed {
			log.Print(err)
		}
		log.Print("Exiting status service")
	}()
	return nil
}

func (h *httpStatusService) stop() {
	if h.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	h.srv.Shutdown(ctx)
	<-h.done
}
