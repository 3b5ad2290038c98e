// Package mailer delivers supplier-facing notifications over SMTP. Delivery
// is best-effort by contract: callers treat failures as warnings, so nothing
// here retries or queues.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"strconv"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// Config carries the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// ConfigFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and
// SMTP_FROM. A missing host means mail is not configured.
func ConfigFromEnv() Config {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	return Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// Enabled reports whether the relay is configured at all.
func (c Config) Enabled() bool { return c.Host != "" }

// SMTP sends purchase-order notifications through a plain-auth SMTP relay.
type SMTP struct {
	cfg Config
}

// NewSMTP constructs an SMTP mailer from cfg.
func NewSMTP(cfg Config) *SMTP {
	return &SMTP{cfg: cfg}
}

var poTemplate = template.Must(template.New("purchase_order").Parse(`
<h2>Purchase Order {{.InvoiceNumber}}</h2>
<p>Dear {{.SupplierName}},</p>
<p>Please find our purchase order below. Kindly confirm receipt and expected delivery date.</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Product</th><th>Quantity</th><th>Unit Price</th><th>Line Total</th></tr>
  {{range .Lines}}
  <tr><td>{{.Product}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Total}}</td></tr>
  {{end}}
</table>
<p><strong>Order total: {{.Total}}</strong></p>
<p>Order date: {{.OrderDate}}</p>
`))

type poLine struct {
	Product   string
	Quantity  string
	UnitPrice string
	Total     string
}

// SendPurchaseOrder renders the order as HTML and mails it to the supplier's
// contact address.
func (m *SMTP) SendPurchaseOrder(ctx context.Context, po *core.PurchaseOrder, supplier *core.Supplier) error {
	if supplier.Email == nil || *supplier.Email == "" {
		return fmt.Errorf("supplier %q has no email on file", supplier.Name)
	}

	ref := fmt.Sprintf("#%d", po.ID)
	if po.InvoiceNumber != nil {
		ref = *po.InvoiceNumber
	}

	lines := make([]poLine, 0, len(po.Items))
	for _, it := range po.Items {
		lines = append(lines, poLine{
			Product:   it.ProductName,
			Quantity:  it.Quantity.String(),
			UnitPrice: it.UnitPrice.StringFixed(2),
			Total:     it.Quantity.Mul(it.UnitPrice).StringFixed(2),
		})
	}

	var body bytes.Buffer
	err := poTemplate.Execute(&body, map[string]any{
		"InvoiceNumber": ref,
		"SupplierName":  supplier.Name,
		"Lines":         lines,
		"Total":         po.TotalAmount.StringFixed(2),
		"OrderDate":     po.OrderDate,
	})
	if err != nil {
		return fmt.Errorf("render purchase order mail: %w", err)
	}

	subject := fmt.Sprintf("Purchase Order %s from Zellow Enterprises", ref)
	return m.send(ctx, []string{*supplier.Email}, subject, body.String())
}

func (m *SMTP) send(_ context.Context, to []string, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, m.cfg.From, to, msg)
}

// Noop discards every notification. Used when SMTP is not configured and in
// tests.
type Noop struct{}

func (Noop) SendPurchaseOrder(context.Context, *core.PurchaseOrder, *core.Supplier) error {
	return nil
}

var (
	_ core.PurchaseOrderNotifier = (*SMTP)(nil)
	_ core.PurchaseOrderNotifier = Noop{}
)
