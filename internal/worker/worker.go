package worker

import (
	"context"

	"hos-shop/internal/broker"
	"hos-shop/internal/models"
	"hos-shop/internal/service"
	"hos-shop/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes OrderPlaced events and sends confirmation
// emails. Sending is strictly best-effort: a failed email is counted and
// logged, the message is still committed, and nothing propagates back to
// the order flow.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	mailer       service.Mailer
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, mailer service.Mailer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		mailer:   mailer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	w.eventHandler = eventHandler

	return w
}

func (w *NotificationWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	if err := w.mailer.SendOrderConfirmation(ctx, event); err != nil {
		util.EmailsFailedTotal.Inc()
		w.logger.Error("Failed to send confirmation email",
			zap.String("order_number", event.OrderNumber),
			zap.Error(err))
		return nil
	}

	util.EmailsSentTotal.Inc()
	return nil
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}
