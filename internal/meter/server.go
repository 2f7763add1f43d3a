// ABOUTME: WebSocket broadcast server for meter levels
// ABOUTME: Streams level snapshots to connected monitoring clients
package meter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSPath is the WebSocket endpoint clients connect to; discovery
// advertises it alongside the port.
const WSPath = "/meter"

// Levels are broadcast at this rate
const broadcastInterval = 33 * time.Millisecond

// ServerConfig holds meter server configuration
type ServerConfig struct {
	Port int
}

// Server exposes a meter's levels over WebSocket. Clients connect to
// /meter and receive JSON level snapshots about 30 times per second.
type Server struct {
	config ServerConfig
	meter  *Meter

	upgrader   websocket.Upgrader
	httpServer *http.Server

	clients   map[*client]struct{}
	clientsMu sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type client struct {
	conn     *websocket.Conn
	sendChan chan Levels
}

// NewServer creates a meter server; call Start to begin serving
func NewServer(config ServerConfig, m *Meter) *Server {
	return &Server{
		config: config,
		meter:  m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Trusted local networks only
				return true
			},
		},
		clients:  make(map[*client]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Start begins serving and blocks until Stop is called or the
// listener fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc(WSPath, s.handleWebSocket)

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	log.Printf("Meter server listening on %s", addr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop()
	}()

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Meter server shutting down...")
	case err := <-errChan:
		log.Printf("Meter server error: %v", err)
		serverErr = err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("Meter server shutdown error: %v", err)
	}

	s.clientsMu.Lock()
	for c := range s.clients {
		close(c.sendChan)
		delete(s.clients, c)
	}
	s.clientsMu.Unlock()

	s.wg.Wait()
	if serverErr != nil {
		return fmt.Errorf("meter server failed: %w", serverErr)
	}
	return nil
}

// Stop shuts the server down; safe to call more than once
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// broadcastLoop fans level snapshots out to every connected client
func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			levels := s.meter.Levels()
			if len(levels.Peak) == 0 {
				continue
			}

			s.clientsMu.Lock()
			for c := range s.clients {
				select {
				case c.sendChan <- levels:
				default:
					// Slow client, skip this frame
				}
			}
			s.clientsMu.Unlock()
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Meter WebSocket upgrade error: %v", err)
		return
	}
	log.Printf("Meter client connected from %s", r.RemoteAddr)

	c := &client{
		conn:     conn,
		sendChan: make(chan Levels, 8),
	}

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	// Drain incoming messages to notice disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.removeClient(c)
}

// clientWriter sends level snapshots to one client
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case levels, ok := <-c.sendChan:
			if !ok {
				return
			}
			data, err := json.Marshal(levels)
			if err != nil {
				log.Printf("Error marshaling levels: %v", err)
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.sendChan)
	}
	s.clientsMu.Unlock()

	c.conn.Close()
	log.Printf("Meter client disconnected")
}
