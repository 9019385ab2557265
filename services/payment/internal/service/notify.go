package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/mail"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
)

var funcs = map[string]any{
	"money":     formatMoney,
	"lineTotal": lineTotal,
}

var confirmationText = texttemplate.Must(texttemplate.New("confirmation").Funcs(funcs).Parse(
	`Thanks for your order!

Order #{{.Ref}}
{{range .Order.Items}}- {{if .Brand}}{{.Brand}} - {{end}}{{.Name}}{{if .Size}} (size {{.Size}}){{end}} x{{.Qty}}: {{money (lineTotal .) $.Currency}}
{{end}}
Total: {{money .Order.TotalAmount .Currency}}

Track your order at {{.SiteURL}}/account/orders
`))

var confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation").Funcs(funcs).Parse(
	`<h1>Thanks for your order!</h1>
<p>Order <strong>#{{.Ref}}</strong></p>
<table>
{{range .Order.Items}}<tr><td>{{if .Brand}}{{.Brand}} - {{end}}{{.Name}}{{if .Size}} (size {{.Size}}){{end}}</td><td>x{{.Qty}}</td><td>{{money (lineTotal .) $.Currency}}</td></tr>
{{end}}</table>
<p>Total: <strong>{{money .Order.TotalAmount .Currency}}</strong></p>
<p><a href="{{.SiteURL}}/account/orders">Track your order</a></p>
`))

var adminText = texttemplate.Must(texttemplate.New("admin").Funcs(funcs).Parse(
	`New order #{{.Ref}}

Customer: {{.Order.BillingEmail}}
Total: {{money .Order.TotalAmount .Currency}}
Lines: {{len .Order.Items}}
{{if .Order.NeedsReview}}Needs review: {{.Order.ReviewNotes}}
{{end}}`))

type orderMailData struct {
	Order    *models.Order
	Ref      string
	Currency string
	SiteURL  string
}

// sendOrderEmails mails the customer and the shop admin. Failures are logged.
func (s *PaymentService) sendOrderEmails(ctx context.Context, order *models.Order) {
	if s.Mail == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "payment.order_emails", "order_id", order.ID)

	data := orderMailData{
		Order:    order,
		Ref:      order.ShortID(),
		Currency: order.Currency,
		SiteURL:  s.Settings.SiteURL,
	}

	if order.BillingEmail != "" {
		msg := mail.Message{
			To:      order.BillingEmail,
			Subject: "Order confirmed #" + data.Ref,
		}
		var err error
		if msg.Text, msg.HTML, err = render(data); err != nil {
			l.Error("render_confirmation_failed", "error", err)
		} else if err := s.Mail.Send(ctx, msg); err != nil {
			l.Warn("confirmation_email_failed", "to", order.BillingEmail, "error", err)
		}
	}

	if s.Settings.AdminEmail != "" {
		var buf bytes.Buffer
		if err := adminText.Execute(&buf, data); err != nil {
			l.Error("render_admin_failed", "error", err)
			return
		}
		msg := mail.Message{
			To:      s.Settings.AdminEmail,
			Subject: "[ADMIN] New order #" + data.Ref,
			Text:    buf.String(),
		}
		if err := s.Mail.Send(ctx, msg); err != nil {
			l.Warn("admin_email_failed", "error", err)
		}
	}
}

func render(data orderMailData) (string, string, error) {
	var text, html bytes.Buffer
	if err := confirmationText.Execute(&text, data); err != nil {
		return "", "", err
	}
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return "", "", err
	}
	return text.String(), html.String(), nil
}

// formatMoney renders minor units, e.g. 18999 "eur" as "189.99 EUR".
func formatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}

func lineTotal(it models.LineItem) int64 {
	return it.Price * int64(it.Qty)
}
