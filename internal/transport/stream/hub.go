package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

type HubStats struct {
	Subscribers    int
	PublishedTotal uint64
	DroppedTotal   uint64
}

type subscriber struct {
	id  string
	out chan []byte
}

// Hub owns the subscriber set. Publish marshals once and copies the
// bytes into every subscriber queue; a full queue drops that
// subscriber on the spot.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool

	nextID         atomic.Uint64
	publishedTotal atomic.Uint64
	droppedTotal   atomic.Uint64
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			// operators front this with their own proxy
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// Publish sends ev to every subscriber. Never blocks.
func (h *Hub) Publish(ev Event) {
	if ev.TS == 0 {
		ev.TS = time.Now().Unix()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		h.printf("stream marshal failed type=%s err=%v", ev.Type, err)
		return
	}
	h.publishedTotal.Add(1)

	h.mu.Lock()
	var slow []*subscriber
	for s := range h.subs {
		select {
		case s.out <- b:
		default:
			slow = append(slow, s)
		}
	}
	for _, s := range slow {
		h.dropLocked(s)
	}
	h.mu.Unlock()

	for _, s := range slow {
		h.droppedTotal.Add(1)
		h.printf("stream dropped slow watcher id=%s", s.id)
	}
}

// Handler upgrades the request and streams events until the client
// leaves or falls behind.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}

		s := &subscriber{
			id:  fmt.Sprintf("W%d", h.nextID.Add(1)),
			out: make(chan []byte, sendBuffer),
		}
		if !h.add(s) {
			_ = conn.Close()
			return
		}

		// Writer: subscriber queue plus keepalive pings.
		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			defer conn.Close()
			for {
				select {
				case b, ok := <-s.out:
					if !ok {
						_ = conn.WriteControl(websocket.CloseMessage,
							websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
							time.Now().Add(time.Second))
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						h.drop(s)
						return
					}
				case <-ticker.C:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						h.drop(s)
						return
					}
				}
			}
		}()

		// Reader: watchers send nothing, but reads surface disconnects
		// and pongs refresh the deadline.
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.drop(s)
	}
}

func (h *Hub) add(s *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subs[s] = struct{}{}
	return true
}

// drop removes the subscriber and closes its queue exactly once.
func (h *Hub) drop(s *subscriber) {
	h.mu.Lock()
	h.dropLocked(s)
	h.mu.Unlock()
}

func (h *Hub) dropLocked(s *subscriber) {
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.out)
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.out)
	}
}

func (h *Hub) Stats() HubStats {
	h.mu.Lock()
	n := len(h.subs)
	h.mu.Unlock()
	return HubStats{
		Subscribers:    n,
		PublishedTotal: h.publishedTotal.Load(),
		DroppedTotal:   h.droppedTotal.Load(),
	}
}

func (h *Hub) printf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
