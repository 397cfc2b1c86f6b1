package oddsfeed

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/benyetra/yetai-backend/internal/shared/kafka"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

// Publisher emite os eventos do poller no Kafka.
type Publisher interface {
	PublishOddsUpdate(ctx context.Context, e events.OddsUpdate) error
	PublishGameFinal(ctx context.Context, e events.GameFinal) error
}

// KafkaPublisher implementa Publisher com um writer por tópico.
type KafkaPublisher struct {
	OddsWriter  *kafkago.Writer
	FinalWriter *kafkago.Writer
}

func NewKafkaPublisher(odds, final *kafkago.Writer) *KafkaPublisher {
	return &KafkaPublisher{OddsWriter: odds, FinalWriter: final}
}

func (p *KafkaPublisher) PublishOddsUpdate(ctx context.Context, e events.OddsUpdate) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.OddsWriter, e.GameID, b)
}

func (p *KafkaPublisher) PublishGameFinal(ctx context.Context, e events.GameFinal) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.FinalWriter, e.GameID, b)
}
