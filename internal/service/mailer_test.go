package service

import (
	"testing"
	"time"

	"hos-shop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRSD(t *testing.T) {
	assert.Equal(t, "1234,56 RSD", formatRSD(123456))
	assert.Equal(t, "0,05 RSD", formatRSD(5))
	assert.Equal(t, "390,00 RSD", formatRSD(39000))
}

func TestRenderConfirmation(t *testing.T) {
	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "test-event",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:        1,
		OrderNumber:    "HOS-3F9A1C",
		RecipientEmail: "marko@example.com",
		RecipientName:  "Marko Marković",
		Subtotal:       200000,
		Shipping:       39000,
		Total:          239000,
		Items: []models.OrderItemData{
			{ProductID: 1, ProductName: "Whey Protein", VariantInfo: "Ukus: Čokolada", Quantity: 2, UnitPrice: 100000},
		},
	}

	body, err := renderConfirmation("shop@example.com", event)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "To: marko@example.com")
	assert.Contains(t, text, "Subject: Potvrda porudžbine HOS-3F9A1C")
	assert.Contains(t, text, "Marko Marković")
	assert.Contains(t, text, "Whey Protein (Ukus: Čokolada)")
	assert.Contains(t, text, "Ukupno: 2390,00 RSD")
	assert.Contains(t, text, "Dostava: 390,00 RSD")
}
