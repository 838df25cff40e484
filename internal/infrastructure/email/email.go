// Package email sends transactional notification emails through Brevo.
package email

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"concoro/internal/config"

	"github.com/go-resty/resty/v2"
)

var ErrDisabled = errors.New("email sending disabled")

type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Tags    []string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

// NewSender returns the Brevo client, or a Noop sender without an API key.
func NewSender(cfg config.BrevoConfig, logger *log.Logger) Sender {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Noop{logger: logger}
	}
	return NewBrevo(cfg, logger)
}

type Noop struct {
	logger *log.Logger
}

func NewNoop(logger *log.Logger) Noop {
	return Noop{logger: logger}
}

func (n Noop) Send(_ context.Context, msg Message) (string, error) {
	if n.logger != nil {
		n.logger.Printf("[Email] Disabled, skipping to=%s subject=%q", msg.To, msg.Subject)
	}
	return "", ErrDisabled
}

type Brevo struct {
	client      *resty.Client
	senderEmail string
	senderName  string
	logger      *log.Logger
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	Tags        []string       `json:"tags,omitempty"`
}

type brevoResult struct {
	MessageID string `json:"messageId"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewBrevo(cfg config.BrevoConfig, logger *log.Logger) *Brevo {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.brevo.com/v3"
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(15*time.Second).
		SetHeader("api-key", cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Brevo{
		client:      client,
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		logger:      logger,
	}
}

func (b *Brevo) Send(ctx context.Context, msg Message) (string, error) {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return "", errors.New("missing recipient")
	}

	var out brevoResult
	var apiErr brevoError
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(brevoPayload{
			Sender:      brevoContact{Email: b.senderEmail, Name: b.senderName},
			To:          []brevoContact{{Email: to, Name: msg.ToName}},
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
			Tags:        msg.Tags,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/smtp/email")
	if err != nil {
		return "", fmt.Errorf("brevo request: %w", err)
	}
	if resp.IsError() {
		detail := apiErr.Message
		if detail == "" {
			detail = strings.TrimSpace(resp.String())
		}
		if b.logger != nil {
			b.logger.Printf("[Email] Brevo rejected to=%s status=%d code=%s", to, resp.StatusCode(), apiErr.Code)
		}
		return "", fmt.Errorf("brevo status %d: %s", resp.StatusCode(), detail)
	}

	if b.logger != nil {
		b.logger.Printf("[Email] Sent to=%s message_id=%s", to, out.MessageID)
	}
	return out.MessageID, nil
}
