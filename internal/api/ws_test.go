package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// subscribe manda o subscribe e espera o hub registrar a conexão.
func subscribe(t *testing.T, hub *Hub, conn *websocket.Conn, gameID string) {
	t.Helper()
	if err := conn.WriteJSON(wsClientMsg{Type: "subscribe", GameID: gameID}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.subs[gameID])
		hub.mu.RUnlock()
		if n == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never registered subscription for %s", gameID)
}

func TestHubBroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	conn := dialHub(t, hub)
	subscribe(t, hub, conn, "g1")

	hub.Broadcast(wsOddsUpdate{GameID: "g1", Payload: json.RawMessage(`{"odds":150}`)})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got wsOddsUpdate
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if got.GameID != "g1" || string(got.Payload) != `{"odds":150}` {
		t.Errorf("got %+v", got)
	}
}

// O subscriber do Pub/Sub e a resposta de ping escrevem na mesma conexão a
// partir de goroutines diferentes; nada pode se perder nem corromper.
func TestHubConcurrentBroadcastAndPing(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	conn := dialHub(t, hub)
	subscribe(t, hub, conn, "g1")

	const n = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			hub.Broadcast(wsOddsUpdate{GameID: "g1", Payload: json.RawMessage(`{"seq":1}`)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			if err := conn.WriteJSON(wsClientMsg{Type: "ping"}); err != nil {
				return
			}
		}
	}()

	updates, pongs := 0, 0
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for updates+pongs < 2*n {
		var msg map[string]json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read after %d updates, %d pongs: %v", updates, pongs, err)
		}
		if _, ok := msg["gameId"]; ok {
			updates++
		} else {
			pongs++
		}
	}
	wg.Wait()
	if updates != n || pongs != n {
		t.Errorf("updates = %d, pongs = %d, want %d each", updates, pongs, n)
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	conn := dialHub(t, hub)
	subscribe(t, hub, conn, "g1")

	if err := conn.WriteJSON(wsClientMsg{Type: "unsubscribe", GameID: "g1"}); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, ok := hub.subs["g1"]
		hub.mu.RUnlock()
		if !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("subscription still registered after unsubscribe")
}
