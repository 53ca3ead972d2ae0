package worker

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/example/p2h/backend/internal/mq"
)

// AuditWorker consumes inspection lifecycle events and writes them to the
// structured log, giving operations a trail of submissions and approvals
// without touching the request path.
type AuditWorker struct {
	consumer mq.Consumer
}

// NewAuditWorker wraps a consumer.
func NewAuditWorker(consumer mq.Consumer) *AuditWorker {
	return &AuditWorker{consumer: consumer}
}

// Run subscribes and blocks until the context is cancelled.
func (w *AuditWorker) Run(ctx context.Context) error {
	err := w.consumer.Consume(func(msg amqp091.Delivery) {
		var payload map[string]any
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			logrus.WithError(err).Warn("audit: undecodable event payload")
			_ = msg.Nack(false, false)
			return
		}
		logrus.WithFields(logrus.Fields{
			"event":   msg.RoutingKey,
			"payload": payload,
		}).Info("inspection event")
		_ = msg.Ack(false)
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	logrus.Info("audit worker shutting down")
	return w.consumer.Close()
}
