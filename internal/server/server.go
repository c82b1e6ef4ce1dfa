package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/berfenger/ecovolter2mqtt/internal/config"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
)

const (
	// writes and manual refreshes may wait behind one full refresh cycle
	REQUEST_TIMEOUT = 60 * time.Second
	// reads are served from the last snapshot
	READ_TIMEOUT = 10 * time.Second
)

// Server exposes the master actor over HTTP.
type Server struct {
	port           uint
	httpLog        bool
	requestTimeout time.Duration
	rootContext    *actor.RootContext
	masterActor    *actor.PID
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID) *http.Server {
	s := newServer(cfg, rootContext, masterActor)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.requestTimeout + 10*time.Second,
	}
}

func newServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID) *Server {
	return &Server{
		port:           cfg.Port,
		httpLog:        cfg.HttpLog,
		requestTimeout: REQUEST_TIMEOUT,
		rootContext:    rootContext,
		masterActor:    masterActor,
	}
}
