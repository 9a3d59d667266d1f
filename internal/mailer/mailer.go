package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// EventType enumerates the transactional email templates.
type EventType string

const (
	EventRegistration         EventType = "registration"
	EventBookingCreated       EventType = "booking_created"
	EventBookingConfirmed     EventType = "booking_confirmed"
	EventBookingRejected      EventType = "booking_rejected"
	EventBookingCancelled     EventType = "booking_cancelled"
	EventBookingCompleted     EventType = "booking_completed"
	EventPaymentReceived      EventType = "payment_received"
	EventMessageReceived      EventType = "message_received"
	EventReviewReceived       EventType = "review_received"
	EventVerificationApproved EventType = "verification_approved"
)

// Mailer dispatches transactional emails.
type Mailer interface {
	// Send dispatches one templated email. Failures are the caller's to log;
	// email is never on the critical path.
	Send(ctx context.Context, event EventType, recipientEmail, recipientName string, data map[string]interface{}) error
}

// HTTPMailer calls the external event-email API.
type HTTPMailer struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPMailer creates an HTTPMailer for the given endpoint.
func NewHTTPMailer(baseURL, apiKey string, logger *zap.Logger) *HTTPMailer {
	return &HTTPMailer{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type sendRequest struct {
	EventType      string                 `json:"event_type"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name,omitempty"`
	Data           map[string]interface{} `json:"data"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Send posts the event to the email API.
func (m *HTTPMailer) Send(ctx context.Context, event EventType, recipientEmail, recipientName string, data map[string]interface{}) error {
	if m.baseURL == "" {
		m.logger.Debug("email API not configured, skipping send",
			zap.String("event", string(event)))
		return nil
	}

	payload, err := json.Marshal(sendRequest{
		EventType:      string(event),
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		Data:           data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	var out sendResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode email response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("email dispatch rejected: %s", out.Error)
	}
	return nil
}
