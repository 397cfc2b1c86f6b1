package settlement

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/benyetra/yetai-backend/internal/shared/kafka"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

// Publisher emite os eventos do worker: resultado de liquidação e DLQ.
type Publisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
	PublishDLQ(ctx context.Context, key string, payload []byte) error
}

// KafkaPublisher implementa Publisher com um writer por tópico.
// DLQWriter nil desliga a fila morta.
type KafkaPublisher struct {
	SettledWriter *kafkago.Writer
	DLQWriter     *kafkago.Writer
}

func NewKafkaPublisher(settled, dlq *kafkago.Writer) *KafkaPublisher {
	return &KafkaPublisher{SettledWriter: settled, DLQWriter: dlq}
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.SettledWriter, e.BetID, b)
}

func (p *KafkaPublisher) PublishDLQ(ctx context.Context, key string, payload []byte) error {
	if p.DLQWriter == nil {
		return nil
	}
	return kafka.WriteJSON(ctx, p.DLQWriter, key, payload)
}
