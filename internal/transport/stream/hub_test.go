package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPublishReachesWatcher(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, "subscriber registration", func() bool {
		return h.Stats().Subscribers == 1
	})

	origin := [3]int{16, -60, 0}
	h.Publish(Event{
		Type:        EventBuildStarted,
		BuildID:     "b-1",
		Total:       42,
		Description: "a cozy cottage",
		Origin:      &origin,
	})

	var got Event
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != EventBuildStarted || got.BuildID != "b-1" || got.Total != 42 {
		t.Fatalf("event = %+v", got)
	}
	if got.TS == 0 {
		t.Fatalf("timestamp not stamped")
	}
	if got.Origin == nil || *got.Origin != origin {
		t.Fatalf("origin = %v", got.Origin)
	}
}

func TestSlowWatcherDropped(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	s := &subscriber{id: "W0", out: make(chan []byte, 1)}
	if !h.add(s) {
		t.Fatal("add refused")
	}

	h.Publish(Event{Type: EventOpApplied, BuildID: "b-1", Seq: 1})
	h.Publish(Event{Type: EventOpApplied, BuildID: "b-1", Seq: 2})

	st := h.Stats()
	if st.Subscribers != 0 {
		t.Fatalf("slow subscriber kept: %+v", st)
	}
	if st.DroppedTotal != 1 {
		t.Fatalf("dropped = %d, want 1", st.DroppedTotal)
	}
	if st.PublishedTotal != 2 {
		t.Fatalf("published = %d, want 2", st.PublishedTotal)
	}

	// queue got the first event, then closed
	if b, ok := <-s.out; !ok || len(b) == 0 {
		t.Fatalf("first event missing")
	}
	if _, ok := <-s.out; ok {
		t.Fatalf("queue left open")
	}
}

func TestCloseDisconnectsWatchers(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, "subscriber registration", func() bool {
		return h.Stats().Subscribers == 1
	})
	h.Close()
	if n := h.Stats().Subscribers; n != 0 {
		t.Fatalf("subscribers after close = %d", n)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 4; i++ {
		if _, _, err := conn.ReadMessage(); err != nil {
			return // server closed the stream
		}
	}
	t.Fatalf("connection survived hub close")
}
