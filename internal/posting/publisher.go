package posting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Publisher sends one post to the outside world and returns the id the
// remote side assigned to it.
type Publisher interface {
	Publish(ctx context.Context, text string) (string, error)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, text string) (string, error)

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// permanentError marks a publish failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the scheduler gives up without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err or anything it wraps came from Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// WebhookPublisher posts {"text": ...} as JSON to Endpoint and reads the
// remote id from the "id" field of the response.
type WebhookPublisher struct {
	Endpoint string
	Token    string
	Client   *http.Client
	// Limiter spaces out requests, retries included. Nil means no limit.
	Limiter *rate.Limiter
}

// NewWebhookPublisher builds a publisher for endpoint. The bearer token is
// read from the tokenEnv environment variable when it is set. A positive
// minInterval is enforced between requests.
func NewWebhookPublisher(endpoint, tokenEnv string, timeout, minInterval time.Duration) (*WebhookPublisher, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, &ConfigurationError{Reason: "publish.endpoint is not set"}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	p := &WebhookPublisher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
	if tokenEnv != "" {
		p.Token = os.Getenv(tokenEnv)
	}
	if minInterval > 0 {
		p.Limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return p, nil
}

type webhookRequest struct {
	Text string `json:"text"`
}

type webhookResponse struct {
	ID string `json:"id"`
}

// Publish sends text. Network errors, 429 and 5xx responses are
// transient; any other non-2xx response is permanent.
func (p *WebhookPublisher) Publish(ctx context.Context, text string) (string, error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return "", Permanent(fmt.Errorf("rate limiter: %w", err))
		}
	}

	body, err := json.Marshal(webhookRequest{Text: text})
	if err != nil {
		return "", Permanent(fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to %s: %w", p.Endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("publish rejected: %s: %s", resp.Status, strings.TrimSpace(string(data)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", err
		}
		return "", Permanent(err)
	}

	var out webhookResponse
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return "", Permanent(fmt.Errorf("decode response: %w", err))
		}
	}
	return out.ID, nil
}
