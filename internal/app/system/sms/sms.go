// Package sms delivers login codes to phones through an HTTP SMS
// gateway, with a log-only sender for development.
package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Sender delivers one SMS message.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

// ErrGatewayRejected is returned when the gateway answered with a
// non-2xx status.
var ErrGatewayRejected = errors.New("sms gateway rejected the message")

// LoginCodeBody formats the message carrying a login code.
func LoginCodeBody(code string, lifetime time.Duration) string {
	return fmt.Sprintf("Your login code is %s. It expires in %d minutes.",
		code, int(lifetime.Minutes()))
}

// Config holds gateway settings.
type Config struct {
	BaseURL string
	APIKey  string
	// From is the sender id the gateway shows to recipients.
	From string

	Timeout    time.Duration
	RetryCount int
}

// Gateway sends messages through an HTTP SMS provider.
type Gateway struct {
	client *resty.Client
	from   string
	log    *zap.Logger
}

// NewGateway creates a gateway sender.
func NewGateway(cfg Config, log *zap.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Gateway{client: client, from: cfg.From, log: log}
}

type sendRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

// Send posts the message to the gateway's /messages endpoint.
func (g *Gateway) Send(ctx context.Context, phone, body string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(sendRequest{To: phone, From: g.from, Body: body}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	if resp.IsError() {
		g.log.Warn("sms gateway error",
			zap.Int("status", resp.StatusCode()),
			zap.String("phone", phone))
		return fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode())
	}
	g.log.Info("sms sent", zap.String("phone", phone))
	return nil
}

// LogSender writes messages to the log instead of sending them. Used
// in development and when no gateway is configured.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, phone, body string) error {
	s.log.Info("sms (log only)",
		zap.String("phone", phone),
		zap.String("body", body))
	return nil
}
