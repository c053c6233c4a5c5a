package codecs

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry/serde"
	avroserde "github.com/confluentinc/confluent-kafka-go/v2/schemaregistry/serde/avro"
)

// Avro encodes values of T through the schema registry, registering the
// schema derived from T on first use.
type Avro[T any] struct {
	serializer   *avroserde.GenericSerializer
	deserializer *avroserde.GenericDeserializer
	topic        string
}

func NewAvro[T any](config *schemaregistry.Config, topic string) (*Avro[T], error) {
	client, err := schemaregistry.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Schema Registry: %w", err)
	}

	serCfg := avroserde.NewSerializerConfig()
	serCfg.AutoRegisterSchemas = true
	serializer, err := avroserde.NewGenericSerializer(client, serde.ValueSerde, serCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании сериализатора: %w", err)
	}

	deserializer, err := avroserde.NewGenericDeserializer(client, serde.ValueSerde, avroserde.NewDeserializerConfig())
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании десериализатора: %w", err)
	}

	return &Avro[T]{
		serializer:   serializer,
		deserializer: deserializer,
		topic:        topic,
	}, nil
}

func (s *Avro[T]) Encode(value T) ([]byte, error) {
	return s.serializer.Serialize(s.topic, &value)
}

// Decode reads a value written by Encode, resolving the writer schema by id.
func (s *Avro[T]) Decode(data []byte) (T, error) {
	var msg T
	err := s.deserializer.DeserializeInto(s.topic, data, &msg)
	return msg, err
}
