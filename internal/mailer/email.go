package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fintrackeasy/user-service/internal/httpclient"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// EmailNotifier sends transactional emails via the Brevo (Sendinblue) HTTP API
// v3. A circuit breaker keeps a misbehaving provider from tying up request
// handlers once it starts failing consistently.
type EmailNotifier struct {
	apiKey      string
	senderEmail string
	senderName  string
	endpoint    string
	client      *httpclient.Client
	breaker     *gobreaker.CircuitBreaker
	logger      *zap.SugaredLogger
}

func NewEmailNotifier(apiKey, senderEmail, senderName string, logger *zap.SugaredLogger) *EmailNotifier {
	return &EmailNotifier{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		endpoint:    brevoEndpoint,
		client: httpclient.New(httpclient.Config{
			Timeout:         10 * time.Second,
			RetryMaxElapsed: 20 * time.Second,
			MaxIdleConns:    10,
			IdleConnTimeout: 60 * time.Second,
		}),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "brevo",
			Timeout: 30 * time.Second,
		}),
		logger: logger,
	}
}

// Send delivers a pre-rendered HTML email.
func (e *EmailNotifier) Send(ctx context.Context, toEmail, subject, html string) error {
	payload := map[string]any{
		"sender":      map[string]string{"name": e.senderName, "email": e.senderEmail},
		"to":          []map[string]string{{"email": toEmail}},
		"subject":     subject,
		"htmlContent": html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = e.breaker.Execute(func() (any, error) {
		resp, err := e.client.DoWithRetry(ctx, func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("api-key", e.apiKey)
			return req, nil
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, nil
		}
		return nil, fmt.Errorf("brevo send failed status=%d", resp.StatusCode)
	})
	if err != nil {
		e.logger.Warnf("email send to %s failed: %v", toEmail, err)
		return err
	}
	e.logger.Infof("email sent to %s subject=%s", toEmail, subject)
	return nil
}
