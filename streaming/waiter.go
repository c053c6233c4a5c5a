package streaming

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"go.uber.org/zap"
)

var pollInterval = 2 * time.Second

// WaitTopic blocks until the topic exists and the producer may write to it.
func WaitTopic(ctx context.Context, config *kafka.ConfigMap, topic string) error {
	admin, err := kafka.NewAdminClient(config)
	if err != nil {
		return fmt.Errorf("не удалось создать AdminClient: %w", err)
	}
	defer admin.Close()

	for {
		if checkTopicExists(admin, topic) && checkTopicWrite(ctx, admin, topic) {
			return nil
		}
		zap.S().Infof("Ожидаем создание топика %s", topic)
		if err := sleep(ctx); err != nil {
			return err
		}
	}
}

func checkTopicExists(admin *kafka.AdminClient, topic string) bool {
	metadata, err := admin.GetMetadata(&topic, false, 200)
	if err != nil {
		zap.S().Warnf("Waiter: не получилось получить метаданные %v", err)
		return false
	}

	_, exists := metadata.Topics[topic]
	return exists
}

func checkTopicWrite(ctx context.Context, admin *kafka.AdminClient, topic string) bool {
	topics := kafka.NewTopicCollectionOfTopicNames([]string{topic})
	results, err := admin.DescribeTopics(ctx, topics, kafka.SetAdminOptionIncludeAuthorizedOperations(true))
	if err != nil {
		zap.S().Warnf("Waiter: не получилось получить информацию по ACL %v", err)
		return false
	}
	if len(results.TopicDescriptions) == 0 {
		return false
	}

	info := results.TopicDescriptions[0]
	return slices.Contains(info.AuthorizedOperations, kafka.ACLOperationWrite)
}

// WaitRegistry blocks until the schema registry answers.
func WaitRegistry(ctx context.Context, cfg *schemaregistry.Config) error {
	client, err := schemaregistry.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("ошибка при подключении к Schema Registry: %w", err)
	}
	defer client.Close()

	for {
		_, err := client.GetAllSubjects()
		if err == nil {
			return nil
		}
		zap.S().Warnf("Waiter: не удалось получить данные из Schema Registry: %v", err)
		zap.L().Info("Ожидаем доступа к Registry")
		if err := sleep(ctx); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context) error {
	t := time.NewTimer(pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
