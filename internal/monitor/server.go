package monitor

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// the monitor binds to 127.0.0.1 by default; same-origin checks
		// would just get in the way of a local viewer page served
		// elsewhere during development.
		return true
	},
}

// Server is the optional local HTTP+WebSocket progress server, wired up
// the way the teacher's internal/api.Server composes a gorilla/mux router
// with a websocket hub.
type Server struct {
	addr   string
	router *mux.Router
	hub    *Hub
	http   *http.Server
}

// NewServer builds a Server bound to addr (host:port) broadcasting hub's
// frames over /ws and exposing the run ID as a JSON object over /status.
func NewServer(addr string, hub *Hub) *Server {
	s := &Server{addr: addr, router: mux.NewRouter(), hub: hub}
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving in the background. It returns the listen error if
// one arrives within 50 ms, and nil otherwise.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[monitor] serving on http://%s (run %s)", s.addr, s.hub.RunID)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"run_id":"` + s.hub.RunID.String() + `"}`))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[monitor] upgrade failed: %v", err)
		return
	}

	v := &viewer{conn: conn, send: make(chan []byte, 16)}
	s.hub.register <- v
	go s.writePump(v)
	s.readPump(v)
}

// readPump drains and discards any client frames purely to detect
// disconnects; viewers have nothing to say to the hub.
func (s *Server) readPump(v *viewer) {
	defer func() {
		s.hub.unregister <- v
		v.conn.Close()
	}()
	v.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(v *viewer) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()
	for {
		select {
		case data, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
