package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// wsClientMsg é o protocolo do cliente: subscribe | unsubscribe | ping.
// GameID é obrigatório em subscribe/unsubscribe.
type wsClientMsg struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

// wsOddsUpdate é o envelope recebido do canal Pub/Sub e repassado aos clientes.
type wsOddsUpdate struct {
	GameID  string          `json:"gameId"`
	Payload json.RawMessage `json:"payload"`
}

// wsConn serializa as escritas na conexão: o goroutine do subscriber
// (Broadcast) e o leitor (resposta de ping) escrevem no mesmo socket, e o
// gorilla/websocket só admite um escritor por vez.
type wsConn struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *wsConn) write(messageType int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *wsConn) writeJSON(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub gerencia as conexões WebSocket e as assinaturas por jogo.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// gameID -> conjunto de conexões inscritas
	subs map[string]map[*wsConn]struct{}
}

// NewHub cria o hub com a política de origem do CORS.
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*wsConn]struct{}),
	}
}

// HandleWS conduz o ciclo de vida de uma conexão: o cliente pode assinar
// vários jogos e responder pings; na desconexão todas as assinaturas caem.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	for {
		var msg wsClientMsg
		if err := raw.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.GameID == "" {
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.GameID]; !ok {
				h.subs[msg.GameID] = make(map[*wsConn]struct{})
			}
			h.subs[msg.GameID][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.GameID]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.GameID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.writeJSON(map[string]string{"type": "pong"})
		}
	}

	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, conn)
	}
	h.mu.Unlock()
}

// Broadcast envia a atualização para todos os inscritos no jogo.
func (h *Hub) Broadcast(update wsOddsUpdate) {
	h.mu.RLock()
	conns := h.subs[update.GameID]
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for c := range conns {
		_ = c.write(websocket.TextMessage, b)
	}
}

// StartRedisSubscriber liga o canal Pub/Sub do poller ao hub: cada mensagem
// do canal vira um broadcast pros clientes inscritos naquele jogo.
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd wsOddsUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Warn("ws subscriber unmarshal", zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
}
