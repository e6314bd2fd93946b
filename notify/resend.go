// Package notify emails the site owner when the API hits an unexpected error.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const resendEndpoint = "https://api.resend.com/emails"

// Notifier delivers an alert. Implementations must not block the caller for long.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Noop drops every alert. It is used when Resend is not configured.
type Noop struct{}

func (Noop) Notify(context.Context, string, string) error { return nil }

// resendEmailRequest represents the request payload for Resend API
type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
}

type Resend struct {
	apiKey     string
	from       string
	recipients []string
	endpoint   string
	client     *http.Client
	logger     zerolog.Logger
}

// New returns a Resend notifier, or Noop when any of RESEND_API_KEY,
// RESEND_FROM_EMAIL or ALERT_EMAIL is missing.
func New(settings config.Settings) Notifier {
	if settings.ResendAPIKey == "" || settings.ResendFromEmail == "" || settings.AlertEmail == "" {
		log.Debug().Msg("Resend not configured, error alerts disabled")
		return Noop{}
	}
	resend := NewResend(settings.ResendAPIKey, settings.ResendFromEmail, []string{settings.AlertEmail}, resendEndpoint)
	return NewThrottled(resend, settings.AlertInterval, alertBurst)
}

func NewResend(apiKey, from string, recipients []string, endpoint string) *Resend {
	return &Resend{
		apiKey:     apiKey,
		from:       from,
		recipients: recipients,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     log.With().Str("component", "resendNotifier").Logger(),
	}
}

// Notify sends body as an escaped <pre> block.
func (r *Resend) Notify(ctx context.Context, subject, body string) error {
	payload := resendEmailRequest{
		From:    r.from,
		To:      r.recipients,
		Subject: subject,
		Html:    "<pre>" + html.EscapeString(body) + "</pre>",
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp resendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse resendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		r.logger.Info().Str("emailId", emailResponse.ID).Msg("Sent error alert via Resend")
	}
	return nil
}

// Async fires Notify in the background with its own timeout so the request
// that failed is not held up by the mail API. A Throttled notifier is checked
// before the goroutine starts.
func Async(n Notifier, subject, body string) {
	if _, ok := n.(Noop); ok || n == nil {
		return
	}
	if t, ok := n.(*Throttled); ok {
		var allowed bool
		if body, allowed = t.admit(body); !allowed {
			return
		}
		n = t.next
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := n.Notify(ctx, subject, body); err != nil {
			log.Error().Err(err).Msg("Error sending error notification")
		}
	}()
}
