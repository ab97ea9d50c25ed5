// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// NatsMessage adapts a *nats.Msg to domain.Message.
type NatsMessage struct {
	msg *nats.Msg
}

var _ domain.Message = (*NatsMessage)(nil)

// NewNatsMessage wraps msg.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// ISubscriber is the subset of *nats.Conn used by [Subscribe].
type ISubscriber interface {
	QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Subscribe joins queue on every subject and dispatches the messages to
// handler. Messages are dropped while the handler is not ready.
func Subscribe(ctx context.Context, conn ISubscriber, queue string, handler domain.MessageHandler, subjects ...string) ([]*nats.Subscription, error) {
	subscriptions := make([]*nats.Subscription, 0, len(subjects))
	for _, subject := range subjects {
		sub, err := conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
			if !handler.HandlerReady() {
				slog.WarnContext(ctx, "handler not ready, dropping message", "subject", msg.Subject)
				return
			}
			handler.HandleMessage(ctx, NewNatsMessage(msg))
		})
		if err != nil {
			slog.ErrorContext(ctx, "error creating NATS queue subscription", logging.ErrKey, err, "subject", subject, "queue", queue)
			for _, s := range subscriptions {
				_ = s.Unsubscribe()
			}
			return nil, err
		}
		subscriptions = append(subscriptions, sub)
		slog.DebugContext(ctx, "subscribed to NATS subject", "subject", subject, "queue", queue)
	}
	return subscriptions, nil
}
