package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Skotchmaster/kicks_premium/pkg/config"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// EmailClient sends one message.
type EmailClient interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a SendGrid client, or a LogClient when no API key is set.
func New(cfg config.MailConfig, log *slog.Logger) EmailClient {
	if cfg.SendGridAPIKey == "" {
		return &LogClient{Log: log}
	}
	return NewSendGridClient(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
}

type SendGridClient struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridClient(apiKey, from, fromName string) *SendGridClient {
	return &SendGridClient{apiKey: apiKey, from: from, fromName: fromName}
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if c.from == "" {
		return errors.New("from address is empty")
	}
	if msg.To == "" {
		return errors.New("to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(c.fromName, c.from),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Text,
		htmlBody(msg),
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	logging.FromContext(ctx).Info("mail_sent", "status", response.StatusCode, "to", msg.To, "subject", msg.Subject)
	return nil
}

// htmlBody falls back to the escaped plain text when no HTML part is set.
func htmlBody(msg Message) string {
	if msg.HTML != "" {
		return msg.HTML
	}
	return "<pre>" + html.EscapeString(msg.Text) + "</pre>"
}

// LogClient records messages in the log instead of delivering them.
type LogClient struct {
	Log *slog.Logger
}

func (c *LogClient) Send(ctx context.Context, msg Message) error {
	l := c.Log
	if l == nil {
		l = logging.FromContext(ctx)
	}
	if msg.To == "" {
		return errors.New("to address is empty")
	}
	l.Info("mail_not_sent", "reason", "sendgrid not configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
