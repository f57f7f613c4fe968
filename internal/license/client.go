package license

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"madaris/internal/config"
	licenseErrors "madaris/internal/errors"
	"madaris/pkg/contracts/domain"
)

// licensesPath is the REST path of the remote licenses table.
const licensesPath = "/rest/v1/licenses"

// Client talks to the hosted row store backing the licenses table. Two
// operations are used: a filtered GET and a filtered PATCH. There are no
// retries anywhere; the binding policy substitutes for transactions.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	lookupTimeout  time.Duration
	updateTimeout  time.Duration
	checkinTimeout time.Duration
}

// NewClient creates a row store client from the remote configuration.
func NewClient(cfg config.RemoteConfig) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		httpClient:     &http.Client{},
		lookupTimeout:  cfg.LookupTimeout,
		updateTimeout:  cfg.UpdateTimeout,
		checkinTimeout: cfg.CheckinTimeout,
	}
}

// FetchRow looks up the row for an activation code. It returns (nil, nil)
// when no row matches; the caller decides what a missing row means.
func (c *Client) FetchRow(ctx context.Context, code string) (*domain.LicenseRow, error) {
	ctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s%s?activation_code=eq.%s&select=*",
		c.baseURL, licensesPath, url.QueryEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyNetworkError("lookup", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, licenseErrors.NewRemoteHTTPError(resp.StatusCode, "lookup")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyNetworkError("lookup", err)
	}

	var rows []domain.LicenseRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode license rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateRow PATCHes partial fields onto the row for an activation code.
func (c *Client) UpdateRow(ctx context.Context, code string, fields map[string]any) error {
	return c.patch(ctx, code, fields, c.updateTimeout, "update")
}

// Checkin PATCHes only last_checkin_at, with the shorter check-in timeout.
func (c *Client) Checkin(ctx context.Context, code string, at time.Time) error {
	fields := map[string]any{"last_checkin_at": at.UTC().Format(time.RFC3339)}
	return c.patch(ctx, code, fields, c.checkinTimeout, "checkin")
}

func (c *Client) patch(ctx context.Context, code string, fields map[string]any, timeout time.Duration, op string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", op, err)
	}

	endpoint := fmt.Sprintf("%s%s?activation_code=eq.%s",
		c.baseURL, licensesPath, url.QueryEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyNetworkError(op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return licenseErrors.NewRemoteHTTPError(resp.StatusCode, op)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// classifyNetworkError sorts a transport failure into the timeout or
// unreachable sentinel, keeping the cause in the chain.
func classifyNetworkError(op string, err error) error {
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		slog.Warn("remote row store timed out", slog.String("operation", op))
		return fmt.Errorf("%s timed out: %w", op, licenseErrors.ErrNetworkTimeout)
	}
	slog.Warn("remote row store unreachable",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s failed: %w", op, licenseErrors.ErrNetworkUnreachable)
}
