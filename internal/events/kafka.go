package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
		log: log,
	}
}

func (k *KafkaPublisher) PublishOrderPayment(ctx context.Context, event OrderPaymentEvent) error {
	msg, err := orderPaymentMessage(event)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order payment event: %w", err)
	}
	k.log.Debug("order payment event published",
		zap.String("order_guid", event.OrderGUID),
		zap.String("to", event.To),
	)
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// orderPaymentMessage keys messages by order GUID so one order's events stay ordered per partition.
func orderPaymentMessage(event OrderPaymentEvent) (kafka.Message, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	v, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode order payment event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.OrderGUID),
		Value: v,
		Time:  event.OccurredAt,
	}, nil
}
