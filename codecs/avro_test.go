package codecs

import (
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmnl/yandex-techstore/events"
)

func newMockCodec(t *testing.T) *Avro[events.UserAction] {
	t.Helper()
	codec, err := NewAvro[events.UserAction](schemaregistry.NewConfig("mock://"), "storefront-actions")
	require.NoError(t, err)
	return codec
}

func TestAvroRoundTrip(t *testing.T) {
	codec := newMockCodec(t)

	action := events.NewUserAction("session-1", events.PromoApplied)
	action.PromoCode = "SALE25"
	action.Percent = 25
	action.ProductId = 3

	data, err := codec.Encode(action)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// confluent wire format: magic byte then schema id
	assert.Equal(t, byte(0), data[0])

	decoded, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, action, decoded)
	assert.Equal(t, "promo_applied", decoded.Kind.String())
}

func TestAvroDecodeGarbage(t *testing.T) {
	codec := newMockCodec(t)
	_, err := codec.Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}
