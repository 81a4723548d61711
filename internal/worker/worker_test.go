package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"hos-shop/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []string
	fail bool
}

func (f *fakeMailer) SendOrderConfirmation(ctx context.Context, event *models.OrderPlacedEvent) error {
	if f.fail {
		return fmt.Errorf("smtp relay down")
	}
	f.sent = append(f.sent, event.OrderNumber)
	return nil
}

func placedMessage(t *testing.T, orderNumber string) kafka.Message {
	t.Helper()
	event := models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:        1,
		OrderNumber:    orderNumber,
		RecipientEmail: "marko@example.com",
		RecipientName:  "Marko",
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestWorkerSendsConfirmation(t *testing.T) {
	mailer := &fakeMailer{}
	w := NewNotificationWorker(nil, mailer)

	err := w.eventHandler.HandleMessage(context.Background(), placedMessage(t, "HOS-AABB01"))
	require.NoError(t, err)
	assert.Equal(t, []string{"HOS-AABB01"}, mailer.sent)
}

func TestWorkerSwallowsMailFailure(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	w := NewNotificationWorker(nil, mailer)

	// A failed send must not bubble up, or the message would be retried.
	err := w.eventHandler.HandleMessage(context.Background(), placedMessage(t, "HOS-AABB02"))
	assert.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestWorkerIgnoresOtherEventTypes(t *testing.T) {
	mailer := &fakeMailer{}
	w := NewNotificationWorker(nil, mailer)

	event := models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-2",
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    1,
		FromStatus: models.OrderStatusReceived,
		ToStatus:   models.OrderStatusShipped,
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	err = w.eventHandler.HandleMessage(context.Background(), kafka.Message{Value: value})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}
