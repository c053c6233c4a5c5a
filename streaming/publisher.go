package streaming

import (
	"go.uber.org/zap"

	"github.com/jrmnl/yandex-techstore/events"
)

// ChannelPublisher hands actions to the producer goroutine without blocking
// the caller. When the buffer is full the action is dropped.
type ChannelPublisher struct {
	actions chan events.UserAction
}

func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{actions: make(chan events.UserAction, buffer)}
}

func (p *ChannelPublisher) Publish(a events.UserAction) {
	select {
	case p.actions <- a:
	default:
		zap.L().Warn("Очередь действий переполнена, действие отброшено",
			zap.String("session", a.SessionId),
			zap.Stringer("kind", a.Kind))
	}
}

func (p *ChannelPublisher) Actions() <-chan events.UserAction {
	return p.actions
}
