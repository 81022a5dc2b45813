// Package monitor implements an optional local HTTP+WebSocket server that
// broadcasts hashing progress to any attached viewer. It is adapted from
// the teacher's internal/websocket hub (register/unregister/broadcast
// channels driving a single-goroutine Run loop) with the database-backed
// activity store and server-authentication concerns stripped out: a monitor run has exactly one producer (the hasher) and
// any number of anonymous WebSocket viewers.
package monitor

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Frame is one progress update broadcast to every attached viewer.
type Frame struct {
	RunID       uuid.UUID `json:"run_id"`
	BytesDone   uint64    `json:"bytes_done"`
	TotalBytes  uint64    `json:"total_bytes"`
	Timestamp   time.Time `json:"timestamp"`
	Done        bool      `json:"done"`
	Err         string    `json:"error,omitempty"`
}

// Hub fans out progress frames for a single run to every connected
// viewer. It is safe for concurrent use.
type Hub struct {
	RunID uuid.UUID

	register   chan *viewer
	unregister chan *viewer
	broadcast  chan Frame

	mu      sync.RWMutex
	viewers map[*viewer]struct{}

	done chan struct{}
}

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub tagging every broadcast frame with a fresh
// correlation ID, mirroring the teacher's use of uuid.New() to tag
// per-connection identity.
func NewHub() *Hub {
	return &Hub{
		RunID:      uuid.New(),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan Frame, 64),
		viewers:    make(map[*viewer]struct{}),
		done:       make(chan struct{}),
	}
}

// Run drives the hub's event loop until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case v := <-h.register:
			h.mu.Lock()
			h.viewers[v] = struct{}{}
			h.mu.Unlock()
			log.Printf("[monitor] viewer attached, run %s", h.RunID)

		case v := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.viewers[v]; ok {
				delete(h.viewers, v)
				close(v.send)
			}
			h.mu.Unlock()

		case frame := <-h.broadcast:
			data, err := json.Marshal(frame)
			if err != nil {
				log.Printf("[monitor] marshal frame: %v", err)
				continue
			}
			h.mu.RLock()
			for v := range h.viewers {
				select {
				case v.send <- data:
				default:
					log.Printf("[monitor] dropping slow viewer, run %s", h.RunID)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Close stops the hub's event loop.
func (h *Hub) Close() { close(h.done) }

// broadcastProgress queues a progress Frame for every viewer, dropping it
// when the broadcast channel is full. Sink.Report calls it with the running
// byte total and the totalBytes given to NewSink.
func (h *Hub) broadcastProgress(bytesDone, totalBytes uint64) {
	select {
	case h.broadcast <- Frame{RunID: h.RunID, BytesDone: bytesDone, TotalBytes: totalBytes, Timestamp: time.Now()}:
	default:
		log.Printf("[monitor] broadcast channel full, run %s", h.RunID)
	}
}

// ReportDone broadcasts a terminal frame; errMsg is empty on success.
func (h *Hub) ReportDone(totalBytes uint64, errMsg string) {
	h.broadcast <- Frame{RunID: h.RunID, BytesDone: totalBytes, TotalBytes: totalBytes, Timestamp: time.Now(), Done: true, Err: errMsg}
}
