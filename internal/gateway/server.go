// Package gateway exposes the sweep agent's status to local observers: a
// WebSocket stream of bus events on /ws and a one-shot JSON snapshot on
// /status. Broadcast-only; clients never send anything the server acts on.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/sweeper/internal/bus"
	"github.com/nextlevelbuilder/sweeper/pkg/protocol"
)

const busSubscriberID = "gateway"

// StatusFunc supplies the current snapshot for /status and for newly
// connected WebSocket clients.
type StatusFunc func() protocol.SweepStatus

// Server broadcasts bus events to WebSocket observers.
type Server struct {
	addr   string
	bus    *bus.EventBus
	status StatusFunc

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a gateway server on addr.
func New(addr string, b *bus.EventBus, status StatusFunc) *Server {
	return &Server{
		addr:   addr,
		bus:    b,
		status: status,
		upgrader: websocket.Upgrader{
			// Local observer endpoint; same-origin policy does not apply.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Start begins serving and subscribes to the bus. Non-blocking.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/status", s.handleStatus)

	s.httpSrv = &http.Server{Addr: s.addr, Handler: mux}

	s.bus.Subscribe(busSubscriberID, s.broadcast)

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("gateway server failed", "error", err)
		}
	}()

	slog.Info("gateway listening", "addr", s.addr)
	return nil
}

// Stop tells observers the process is going away and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.bus.Unsubscribe(busSubscriberID)
	s.broadcast(protocol.EventShutdown, nil)

	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status()); err != nil {
		slog.Warn("gateway: status encode failed", "error", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("gateway: websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	slog.Debug("gateway: observer connected", "observers", n)

	// Seed the new observer with the current snapshot.
	s.sendTo(c, protocol.EventStatus, s.status())

	go s.writePump(c)
	s.readPump(c)
}

// readPump drains (and ignores) client frames so pings/pongs and close
// handshakes work; any read error drops the client.
func (s *Server) readPump(c *client) {
	defer s.drop(c)

	c.conn.SetReadLimit(4 * 1024)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// broadcast fans one bus event out to every connected observer. Slow
// observers get dropped rather than blocking the bus.
func (s *Server) broadcast(event string, payload any) {
	data, err := json.Marshal(protocol.EventFrame{Event: event, Payload: payload})
	if err != nil {
		slog.Warn("gateway: event encode failed", "event", event, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			delete(s.clients, c)
			close(c.send)
			slog.Warn("gateway: dropping slow observer")
		}
	}
}

func (s *Server) sendTo(c *client, event string, payload any) {
	data, err := json.Marshal(protocol.EventFrame{Event: event, Payload: payload})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
