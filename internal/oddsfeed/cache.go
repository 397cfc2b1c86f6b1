package oddsfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot encapsula o cache Redis das linhas correntes por jogo.
// Usado pela leitura de odds (cache-first) e pelo check de deriva na aposta.
type Snapshot struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSnapshot(c *redis.Client, ttl time.Duration) *Snapshot {
	return &Snapshot{Client: c, TTL: ttl}
}

func snapshotKey(gameID string) string { return "odds:current:" + gameID }

// Set grava as linhas de um jogo com o TTL do snapshot.
func (s *Snapshot) Set(ctx context.Context, gameID string, lines []Line) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, snapshotKey(gameID), b, s.TTL).Err()
}

// Get retorna as linhas de um jogo. ok=false em cache miss.
func (s *Snapshot) Get(ctx context.Context, gameID string) (lines []Line, ok bool, err error) {
	raw, err := s.Client.Get(ctx, snapshotKey(gameID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, false, err
	}
	return lines, true, nil
}
