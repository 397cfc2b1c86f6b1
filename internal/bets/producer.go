package bets

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/benyetra/yetai-backend/internal/shared/kafka"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

// KafkaPublisher emite bet_placed no tópico configurado.
type KafkaPublisher struct {
	Writer *kafkago.Writer
}

func NewKafkaPublisher(w *kafkago.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Writer, e.BetID, b)
}
