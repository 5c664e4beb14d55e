package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte, timeout time.Duration) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(timeout):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "index.built", Data: map[string]string{"build_id": "b1"}})

	s := recv(t, ch, time.Second)
	if !strings.HasPrefix(s, "event: index.built\n") {
		t.Errorf("missing event type in %q", s)
	}
	if !strings.Contains(s, `data: {"build_id":"b1"}`) || !strings.HasSuffix(s, "\n\n") {
		t.Errorf("bad framing in %q", s)
	}
}

func TestNoteChanged_CoalescesIntoOneHierarchyEvent(t *testing.T) {
	b := NewBroker(150 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.NoteChanged("created", "a.md")
	b.NoteChanged("updated", "b.md")

	s := recv(t, ch, 2*time.Second)
	if !strings.HasPrefix(s, "event: hierarchy\n") {
		t.Fatalf("unexpected event %q", s)
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(s, "event: hierarchy\ndata: "), "\n\n")
	var data HierarchyData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	want := []Change{{Kind: "created", Path: "a.md"}, {Kind: "updated", Path: "b.md"}}
	if len(data.Changes) != 2 || data.Changes[0] != want[0] || data.Changes[1] != want[1] {
		t.Errorf("changes = %+v, want %+v", data.Changes, want)
	}

	select {
	case msg := <-ch:
		t.Errorf("unexpected second event %q", msg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNoteChanged_NewWindowAfterFlush(t *testing.T) {
	b := NewBroker(50 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.NoteChanged("created", "a.md")
	first := recv(t, ch, time.Second)
	b.NoteChanged("deleted", "a.md")
	second := recv(t, ch, time.Second)

	if !strings.Contains(first, `"kind":"created"`) || !strings.Contains(second, `"kind":"deleted"`) {
		t.Errorf("events = %q / %q", first, second)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.NoteChanged("updated", "x.md")
	time.Sleep(250 * time.Millisecond)

	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if body := w.Body.String(); !strings.Contains(body, "event: hierarchy") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Subscriber buffer holds 64; the rest must be dropped, not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// No-ops after close.
	b.Publish(Event{Type: "x"})
	b.NoteChanged("updated", "x.md")
	b.Close()
}
