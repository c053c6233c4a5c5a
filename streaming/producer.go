package streaming

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"github.com/jrmnl/yandex-techstore/events"
)

type Encoder interface {
	Encode(events.UserAction) ([]byte, error)
}

type sender interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

const flushTimeoutMs = 5000

// ProduceMessages sends every action from the channel to the topic until ctx
// is cancelled, then flushes what is still queued.
func ProduceMessages(
	ctx context.Context,
	config *kafka.ConfigMap,
	topic string,
	actions <-chan events.UserAction,
	codec Encoder) error {

	p, err := kafka.NewProducer(config)
	if err != nil {
		return fmt.Errorf("producer %s: ошибка при создании продьюсера: %w", topic, err)
	}
	defer p.Close()

	go logDeliveries(topic, p.Events())

	err = produce(ctx, p, topic, actions, codec)
	if left := p.Flush(flushTimeoutMs); left > 0 {
		zap.S().Warnf("Producer %s: %d сообщений не доставлено при остановке", topic, left)
	}
	return err
}

func produce(
	ctx context.Context,
	p sender,
	topic string,
	actions <-chan events.UserAction,
	codec Encoder) error {

	for {
		select {
		case <-ctx.Done():
			return nil
		case action, ok := <-actions:
			if !ok {
				return nil
			}
			bytes, err := codec.Encode(action)
			if err != nil {
				zap.S().Errorf("Producer %s: не удалось сериализовать сообщение: %v", topic, err)
				continue
			}

			err = p.Produce(&kafka.Message{
				TopicPartition: kafka.TopicPartition{
					Topic:     &topic,
					Partition: kafka.PartitionAny,
				},
				Key:   []byte(action.SessionId),
				Value: bytes,
			}, nil)
			if err != nil {
				zap.S().Errorf("Producer %s: ошибка при отправке сообщения: %v", topic, err)
			}
		}
	}
}

func logDeliveries(topic string, reports chan kafka.Event) {
	for e := range reports {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				zap.S().Errorf("Producer %s: ошибка доставки сообщения: %v", topic, ev.TopicPartition.Error)
			}
		case kafka.Error:
			zap.S().Errorf("Producer %s: %v", topic, ev)
		}
	}
}
