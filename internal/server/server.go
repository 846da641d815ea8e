package server

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/nlhe/pokerserver/internal/protocol"
)

// Server is the HTTP/WebSocket front door: it upgrades incoming
// connections, reads and validates the mandatory first join frame,
// and hands everything past that to the Coordinator.
type Server struct {
	cfg         Config
	logger      *log.Logger
	coordinator *Coordinator
	upgrader    websocket.Upgrader

	mux        *http.ServeMux
	httpServer *http.Server
	routesOnce sync.Once
}

// NewServer builds a Server around a fresh Coordinator. rng drives
// every hand dealt this tournament — callers seed it explicitly for
// reproducible play.
func NewServer(cfg Config, logger *log.Logger, monitor HandMonitor, rng *rand.Rand) *Server {
	coordinator := NewCoordinator(cfg, logger, quartz.NewReal(), monitor, rng)
	return &Server{
		cfg:         cfg,
		logger:      logger,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
}

// Start listens on addr and serves until Shutdown is called or an
// unrecoverable error occurs.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve runs the HTTP server on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.ensureRoutes()
	s.httpServer = &http.Server{Handler: s.mux}
	s.logger.Info("server starting", "addr", listener.Addr().String())
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully stops accepting new connections and waits for
// the HTTP server to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/ws", s.handleWebSocket)
		s.mux.HandleFunc("/health", s.handleHealth)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handleWebSocket upgrades the connection, requires a join frame as
// the very first message (spec §6.1), and either admits the bot to a
// seat or reports the exact error code and closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		s.logger.Warn("failed to read join frame", "error", err)
		_ = conn.Close()
		return
	}

	msgType, err := protocol.PeekType(raw)
	if err != nil {
		s.rejectAndClose(conn, protocol.CodeBadJSON, "malformed JSON")
		return
	}
	if msgType != protocol.TypeJoin {
		s.rejectAndClose(conn, protocol.CodeUnknownType, fmt.Sprintf("expected join, got %q", msgType))
		return
	}

	join, err := protocol.ParseJoin(raw)
	if err != nil {
		s.rejectAndClose(conn, protocol.CodeBadName, err.Error())
		return
	}

	// seatNum is filled in by the onMessage/onDisconnect closures below
	// once Admit succeeds, since NewConnection needs them up front but
	// Admit needs the Connection to hand back on success.
	var seatNum int
	c := NewConnection(conn, s.logger, func(raw []byte) {
		s.coordinator.HandleAction(seatNum, raw)
	}, func() {
		s.coordinator.HandleDisconnect(seatNum)
	})

	seatNum, err = s.coordinator.Admit(join.Name, c)
	if err != nil {
		code := protocol.CodeBadJoin
		if we, ok := err.(*wireError); ok {
			code = we.code
		}
		s.rejectAndClose(conn, code, err.Error())
		return
	}

	c.Start()
}

func (s *Server) rejectAndClose(conn *websocket.Conn, code, message string) {
	raw, err := protocol.Marshal(&protocol.Error{Type: protocol.TypeError, Code: code, Message: message})
	if err == nil {
		_ = conn.WriteMessage(websocket.TextMessage, raw)
	}
	_ = conn.Close()
}
