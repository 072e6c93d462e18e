// Package matchserver is the rendezvous server core: it owns the per-group
// room directories, the connection driver, and the request dispatcher.
// Grounded on the teacher's Server/Room split (server.go owns the listener
// and lifecycle; room.go owns concurrent shared state) and on the original
// PlanetaMatchMakerServer's accept-loop/session lifecycle, translated to
// Go's goroutine-per-connection model.
package matchserver

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"

	"matchmaker/internal/denylist"
	"matchmaker/internal/directory"
	"matchmaker/internal/telemetry"
)

// Server owns every group's room directory and accepts connections on a
// single listener.
type Server struct {
	cfg Config

	directories []*directory.Directory
	nextRoomID  atomic.Uint32

	denylist *denylist.Store // nil disables the denylist check
	metrics  *telemetry.Metrics

	sem chan struct{}
}

// New builds a Server from cfg. dl and m may both be nil.
func New(cfg Config, dl *denylist.Store, m *telemetry.Metrics) *Server {
	s := &Server{cfg: cfg, denylist: dl, metrics: m}

	s.directories = make([]*directory.Directory, len(cfg.Groups))
	for i := range s.directories {
		s.directories[i] = directory.New(uint8(i), &s.nextRoomID, cfg.MaxRoomsPerGroup)
	}

	if cfg.MaxConcurrentSessions > 0 {
		s.sem = make(chan struct{}, cfg.MaxConcurrentSessions)
	}
	return s
}

func (s *Server) acquireSlot() bool {
	if s.sem == nil {
		return true
	}
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) releaseSlot() {
	if s.sem == nil {
		return
	}
	<-s.sem
}

// Run listens on cfg.ListenNetwork/ListenAddr and serves connections until
// ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen(s.cfg.ListenNetwork, s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections off an already-created listener until ctx is
// canceled. Splitting this out from Run lets tests bind to "127.0.0.1:0" and
// discover the chosen port via ln.Addr() before serving.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("matchserver: listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("matchserver: accept failed", "error", err)
			continue
		}

		if !s.acquireSlot() {
			// Ordinary backpressure, not an error: close before a
			// session_state even exists.
			if s.metrics != nil {
				s.metrics.ConnectionRejected("max_concurrent_sessions")
			}
			conn.Close()
			continue
		}

		if s.metrics != nil {
			s.metrics.ConnectionAccepted()
		}

		go func() {
			defer s.releaseSlot()
			s.handleConn(ctx, conn)
		}()
	}
}
