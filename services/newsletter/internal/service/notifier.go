package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/mail"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/repo"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = time.Second
)

type NotifyResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// Notifier announces new products to verified subscribers. Sends within a
// batch run concurrently and batches are spaced by BatchDelay.
type Notifier struct {
	Repo       *repo.GormRepo
	Mail       mail.EmailClient
	SiteURL    string
	BatchSize  int
	BatchDelay time.Duration
}

func (n *Notifier) NotifyNewProduct(ctx context.Context, p events.ProductEvent) (*NotifyResult, error) {
	l := logging.FromContext(ctx).With("svc", "newsletter.notify_new_product", "product_id", p.ProductID)

	emails, err := n.Repo.VerifiedEmails(ctx)
	if err != nil {
		return nil, err
	}

	size := n.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	res := &NotifyResult{Errors: []string{}}
	var mu sync.Mutex

	for start := 0; start < len(emails); start += size {
		if start > 0 {
			if err := wait(ctx, n.BatchDelay); err != nil {
				return res, err
			}
		}
		end := min(start+size, len(emails))

		var g errgroup.Group
		for _, email := range emails[start:end] {
			g.Go(func() error {
				err := n.sendNewProduct(ctx, email, p)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					l.Warn("new_product_email_failed", "to", email, "error", err)
					res.Failed++
					res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", email, err))
					return nil
				}
				res.Sent++
				return nil
			})
		}
		_ = g.Wait()
	}

	l.Info("newsletter_sent", "sent", res.Sent, "failed", res.Failed, "subscribers", len(emails))
	return res, nil
}

func (n *Notifier) sendNewProduct(ctx context.Context, email string, p events.ProductEvent) error {
	text, html, err := renderBoth(newProductText, newProductHTML, mailData{
		SiteURL: n.SiteURL,
		Email:   email,
		Name:    p.Name,
		Brand:   p.Brand,
		Slug:    p.Slug,
		Image:   p.Image,
		Price:   p.Price,
	})
	if err != nil {
		return err
	}
	return n.Mail.Send(ctx, mail.Message{
		To:      email,
		Subject: newProductPrefix + p.Name,
		Text:    text,
		HTML:    html,
	})
}

func (s *NewsletterService) sendWelcome(ctx context.Context, email string) {
	if s.Mail == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "newsletter.welcome")

	text, html, err := renderBoth(welcomeText, welcomeHTML, mailData{SiteURL: s.SiteURL, Email: email})
	if err != nil {
		l.Error("render_welcome_failed", "error", err)
		return
	}
	msg := mail.Message{To: email, Subject: welcomeSubject, Text: text, HTML: html}
	if err := s.Mail.Send(ctx, msg); err != nil {
		l.Warn("welcome_email_failed", "to", email, "error", err)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
