package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// The chat stream writes from two goroutines: the read loop and the pub/sub
// fan-in. Conn must serialize those writes; run with -race.
func TestConnConcurrentWriters(t *testing.T) {
	const writers = 4
	const perWriter = 25

	upgrader := websocket.Upgrader{}
	done := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conn := NewConn(raw)
		defer conn.Close()

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perWriter; j++ {
					if err := conn.WriteTyped(PongResponse{Event: EventPong}); err != nil {
						t.Errorf("concurrent write failed: %v", err)
						return
					}
				}
			}()
		}
		wg.Wait()
		close(done)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	for received := 0; received < writers*perWriter; received++ {
		var msg PongResponse
		if err := client.ReadJSON(&msg); err != nil {
			t.Fatalf("read %d failed: %v", received, err)
		}
		if msg.Event != EventPong {
			t.Fatalf("read %d: got event %q, want %q", received, msg.Event, EventPong)
		}
	}
	<-done
}

func TestConnWriteError(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conn := NewConn(raw)
		defer conn.Close()
		conn.WriteError("something broke")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	var resp ErrorResponse
	if err := client.ReadJSON(&resp); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if resp.Event != EventError || resp.Error != "something broke" {
		t.Fatalf("got %+v, want error event with message", resp)
	}
}
