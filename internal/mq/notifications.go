package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/online-social/apiserver/types"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Attribute keys set on every notification message.
const (
	AttrEventType   = "event_type"
	AttrRecipientID = "recipient_id"
	AttrContentType = "content_type"
)

const notificationEventType = "notification.created"

// NotificationPublisher emits committed notifications to a channel. Delivery
// failures are logged and never surface to the caller.
type NotificationPublisher struct {
	mq      *MQ
	channel string
	logger  *zap.Logger
}

func NewNotificationPublisher(mq *MQ, channel string, logger *zap.Logger) *NotificationPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationPublisher{mq: mq, channel: channel, logger: logger}
}

// Publish encodes n as JSON and sends it. The request context only
// contributes its values; a client disconnect does not abort the send.
func (p *NotificationPublisher) Publish(ctx context.Context, n types.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		p.logger.Error("encode notification", zap.String("notification_id", n.ID.String()), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	id, err := p.mq.Publish(ctx, p.channel, data, map[string]string{
		AttrEventType:   notificationEventType,
		AttrRecipientID: n.UserID.String(),
		AttrContentType: "application/json",
	})
	if err != nil {
		p.logger.Warn("publish notification",
			zap.String("channel", p.channel),
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("notification published",
		zap.String("channel", p.channel),
		zap.String("message_id", id),
		zap.String("notification_id", n.ID.String()),
	)
}

// DecodeNotification parses a message produced by NotificationPublisher.
func DecodeNotification(msg Message) (types.Notification, error) {
	if event := msg.Attributes[AttrEventType]; event != "" && event != notificationEventType {
		return types.Notification{}, fmt.Errorf("unexpected event type %q", event)
	}
	var n types.Notification
	if err := json.Unmarshal(msg.Data, &n); err != nil {
		return types.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	return n, nil
}
