package streaming

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jrmnl/yandex-techstore/events"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*kafka.Message
}

func (f *fakeSender) Produce(msg *kafka.Message, _ chan kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type kindCodec struct{}

func (kindCodec) Encode(a events.UserAction) ([]byte, error) {
	if a.Kind == events.ReviewSubmitted {
		return nil, errors.New("boom")
	}
	return []byte(a.Kind.String()), nil
}

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.InfoLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(undo)
	return logs
}

func TestProduceKeysBySession(t *testing.T) {
	logs := observe(t)
	actions := make(chan events.UserAction, 3)
	actions <- events.NewUserAction("s-1", events.CartAdd)
	actions <- events.NewUserAction("s-2", events.ReviewSubmitted)
	actions <- events.NewUserAction("s-2", events.Search)
	close(actions)

	s := &fakeSender{}
	require.NoError(t, produce(context.Background(), s, "storefront-actions", actions, kindCodec{}))

	require.Len(t, s.sent, 2)
	assert.Equal(t, "s-1", string(s.sent[0].Key))
	assert.Equal(t, "cart_add", string(s.sent[0].Value))
	assert.Equal(t, "storefront-actions", *s.sent[0].TopicPartition.Topic)
	assert.Equal(t, "s-2", string(s.sent[1].Key))
	assert.Equal(t, "search", string(s.sent[1].Value))

	assert.Equal(t, 1, logs.FilterMessageSnippet("не удалось сериализовать").Len())
}

func TestProduceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- produce(ctx, &fakeSender{}, "t", make(chan events.UserAction), kindCodec{})
	}()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("producer did not stop")
	}
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	logs := observe(t)
	p := NewChannelPublisher(1)
	p.Publish(events.NewUserAction("s-1", events.CartAdd))
	p.Publish(events.NewUserAction("s-1", events.CartRemove))

	got := <-p.Actions()
	assert.Equal(t, events.CartAdd, got.Kind)
	select {
	case a := <-p.Actions():
		t.Fatalf("unexpected action %v", a.Kind)
	default:
	}
	assert.Equal(t, 1, logs.FilterMessage("Очередь действий переполнена, действие отброшено").Len())
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx), context.Canceled)
}
