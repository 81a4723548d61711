package service

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"hos-shop/config"
	"hos-shop/internal/models"
	"hos-shop/internal/util"

	"go.uber.org/zap"
)

// Mailer sends order confirmation emails.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, event *models.OrderPlacedEvent) error
}

const confirmationTemplate = `From: {{.From}}
To: {{.To}}
Subject: Potvrda porudžbine {{.Event.OrderNumber}}
MIME-Version: 1.0
Content-Type: text/html; charset="UTF-8"

<html>
<body>
<h2>Hvala na porudžbini, {{.Event.RecipientName}}!</h2>
<p>Vaša porudžbina <strong>{{.Event.OrderNumber}}</strong> je primljena.</p>
<table border="0" cellpadding="4">
<tr><th align="left">Proizvod</th><th align="right">Količina</th><th align="right">Cena</th></tr>
{{range .Event.Items}}<tr>
<td>{{.ProductName}}{{if .VariantInfo}} ({{.VariantInfo}}){{end}}</td>
<td align="right">{{.Quantity}}</td>
<td align="right">{{rsd .UnitPrice}}</td>
</tr>
{{end}}</table>
<p>Međuzbir: {{rsd .Event.Subtotal}}<br>
Dostava: {{rsd .Event.Shipping}}<br>
<strong>Ukupno: {{rsd .Event.Total}}</strong></p>
<p>Obavestićemo vas kada porudžbina bude poslata.</p>
</body>
</html>
`

var confirmationTmpl = template.Must(template.New("confirmation").
	Funcs(template.FuncMap{"rsd": formatRSD}).
	Parse(confirmationTemplate))

// formatRSD renders para as dinars, e.g. 123456 -> "1234,56 RSD".
func formatRSD(para int64) string {
	return fmt.Sprintf("%d,%02d RSD", para/100, para%100)
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: util.GetLogger()}
}

// SendOrderConfirmation renders and sends the confirmation email.
func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, event *models.OrderPlacedEvent) error {
	body, err := renderConfirmation(m.cfg.From, event)
	if err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{event.RecipientEmail}, body); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	m.logger.Info("Confirmation email sent",
		zap.String("order_number", event.OrderNumber),
		zap.String("to", event.RecipientEmail))
	return nil
}

func renderConfirmation(from string, event *models.OrderPlacedEvent) ([]byte, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct {
		From  string
		To    string
		Event *models.OrderPlacedEvent
	}{From: from, To: event.RecipientEmail, Event: event})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
