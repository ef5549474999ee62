// Package halo is the client for the HaloPSA-style ticketing API. It owns
// the OAuth client-credentials token lifecycle and the retry policy; nothing
// else in the process talks to the external system.
package halo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/secrets"
	"bendigotelco/connecthub/pkg/apperr"
)

// API is the surface the lookup and call-logging services depend on.
type API interface {
	// SearchCustomerByPhone returns the first customer matching the phone
	// number, or (nil, nil) when none matches.
	SearchCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error)
	// CreateCallLog creates a ticket recording a finished call.
	CreateCallLog(ctx context.Context, data model.CallData) (*model.Ticket, error)
}

const (
	defaultMaxRetries = 3
	defaultTimeout    = 5 * time.Second

	baseDelay = 500 * time.Millisecond
	maxDelay  = 8 * time.Second
)

type Options struct {
	MaxRetries int           // total attempts per call, default 3
	Timeout    time.Duration // per-request timeout, default 5s
}

type Client struct {
	httpClient *http.Client
	secrets    secrets.Provider
	logger     *zap.Logger
	maxRetries int

	// injectable for tests
	sleep func(time.Duration)
	now   func() time.Time

	token atomic.Pointer[authToken]
}

var _ API = (*Client)(nil)

func NewClient(provider secrets.Provider, logger *zap.Logger, opts Options) *Client {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		secrets:    provider,
		logger:     logger,
		maxRetries: opts.MaxRetries,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// SetSleepForTest replaces the backoff sleep, so retry tests run instantly.
func (c *Client) SetSleepForTest(sleep func(time.Duration)) {
	c.sleep = sleep
}

type customerSearchResponse struct {
	Customers []model.Customer `json:"customers"`
}

func (c *Client) SearchCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	q := url.Values{}
	q.Set("search", phone)
	q.Set("searchtype", "phone")
	q.Set("count", "1")

	data, err := c.do(ctx, http.MethodGet, "/api/Customers", q, nil)
	if err != nil {
		return nil, err
	}

	var resp customerSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "malformed customer search response", err)
	}
	if len(resp.Customers) == 0 {
		return nil, nil
	}
	return &resp.Customers[0], nil
}

type ticketRequest struct {
	Summary      string `json:"summary"`
	Details      string `json:"details"`
	CustomerID   string `json:"customer_id"`
	CategoryID   int    `json:"category_id"`
	TypeID       int    `json:"type_id"`
	AgentID      string `json:"agent_id"`
	StatusID     int    `json:"status_id"`
	DateOccurred string `json:"dateoccurred"`
	DateClosed   string `json:"dateclosed"`
}

func (c *Client) CreateCallLog(ctx context.Context, data model.CallData) (*model.Ticket, error) {
	details := data.Transcript
	if details == "" {
		details = "No transcript available"
	}
	body := ticketRequest{
		Summary:      "Call from " + data.PhoneNumber,
		Details:      details,
		CustomerID:   data.CustomerID,
		CategoryID:   1,  // phone call category
		TypeID:       26, // call type
		AgentID:      data.AgentID,
		StatusID:     29, // closed
		DateOccurred: data.StartTime.UTC().Format(time.RFC3339),
		DateClosed:   data.EndTime.UTC().Format(time.RFC3339),
	}

	raw, err := c.do(ctx, http.MethodPost, "/api/Tickets", nil, body)
	if err != nil {
		return nil, err
	}

	var ticket model.Ticket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "malformed ticket response", err)
	}
	return &ticket, nil
}

// do runs one API call through the retry policy: network errors and 429 are
// retried with exponential backoff up to maxRetries total attempts; a 401
// triggers exactly one re-authentication plus one replay of the original
// request; any other non-2xx fails immediately.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	bundle, err := c.secrets.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnknown, "failed to encode request body", err)
		}
	}

	urlStr := strings.TrimRight(bundle.APIBaseURL, "/") + path
	if len(query) > 0 {
		urlStr += "?" + query.Encode()
	}

	reauthed := false
	delay := baseDelay
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(rand.Int63n(int64(delay)))
			c.sleep(delay + jitter)
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}

		data, status, err := c.attempt(ctx, bundle, method, urlStr, payload)
		if err != nil {
			if apperr.IsKind(err, apperr.KindAuthentication) {
				return nil, err
			}
			lastErr = err
			c.logger.Warn("halo request failed",
				zap.String("method", method), zap.String("path", path),
				zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		if status == http.StatusUnauthorized && !reauthed {
			reauthed = true
			c.invalidateToken()
			if _, err := c.authenticate(ctx, bundle); err != nil {
				return nil, err
			}
			// Single replay of the original request. A second 401 falls
			// through below and propagates; no re-auth loop.
			data, status, err = c.attempt(ctx, bundle, method, urlStr, payload)
			if err != nil {
				lastErr = err
				continue
			}
		}

		switch {
		case status >= 200 && status < 300:
			return data, nil
		case status == http.StatusUnauthorized:
			return nil, apperr.New(apperr.KindAuthentication, "api rejected credentials after re-authentication")
		case status == http.StatusTooManyRequests:
			lastErr = apperr.Newf(apperr.KindNetwork, "rate limited by api (%s %s)", method, path)
			continue
		default:
			return nil, apperr.Newf(apperr.KindUnknown, "unexpected status %d from %s %s", status, method, path)
		}
	}
	return nil, lastErr
}

// attempt performs a single HTTP exchange with a fresh-enough token.
func (c *Client) attempt(ctx context.Context, bundle *secrets.Bundle, method, urlStr string, payload []byte) ([]byte, int, error) {
	token, err := c.ensureToken(ctx, bundle)
	if err != nil {
		return nil, 0, err
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, bodyReader)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindUnknown, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant", bundle.TenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, classifyTransportError(err, fmt.Sprintf("%s %s failed", method, urlStr))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, classifyTransportError(err, "failed to read response body")
	}
	return data, resp.StatusCode, nil
}

func classifyTransportError(err error, msg string) *apperr.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, msg, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Wrap(apperr.KindTimeout, msg, err)
	}
	return apperr.Wrap(apperr.KindNetwork, msg, err)
}
