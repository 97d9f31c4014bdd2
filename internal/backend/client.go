package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghufronakbar/hasmart-pos/internal/common"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
	"github.com/ghufronakbar/hasmart-pos/internal/obs"
	"github.com/ghufronakbar/hasmart-pos/internal/resilience"
)

var (
	// ErrInvoiceNotFound indicates the invoice number has no match.
	ErrInvoiceNotFound = errors.New("backend: invoice not found")
	// ErrMemberNotFound indicates the counterparty code has no match.
	ErrMemberNotFound = errors.New("backend: member not found")
)

// Client is a typed client for the hasmart backend REST API. It implements
// catalog.Lookup and returns.Source.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *resilience.HTTPClient
	Logger  zerolog.Logger
}

// NewClient builds a client whose transport is traced via otelhttp and
// guarded by the provided breaker settings.
func NewClient(baseURL, apiKey string, wrapped *resilience.HTTPClient, logger zerolog.Logger) *Client {
	if wrapped == nil {
		wrapped = &resilience.HTTPClient{Client: DefaultHTTPClient(), Target: "hasmart-api"}
	}
	if wrapped.Client == nil {
		wrapped.Client = DefaultHTTPClient()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    wrapped,
		Logger:  logger,
	}
}

// DefaultHTTPClient returns an instrumented http.Client suitable for the
// resilience wrapper.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   10 * time.Second,
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, method, path, query, body, out)
	obs.ObserveBackendCall(op, time.Since(start).Seconds(), err)
	if err != nil {
		evt := c.Logger.Warn().Str("op", op).Str("path", path).Err(err)
		if span := trace.SpanContextFromContext(ctx); span.IsValid() {
			evt = evt.Str("trace_id", span.TraceID().String())
		}
		evt.Msg("backend_call_failed")
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		var statusErr *resilience.StatusError
		if errors.As(err, &statusErr) {
			if message := envelopeMessage(statusErr.Body); message != "" {
				return common.NewAppError(common.CodeBackend, message, err)
			}
		}
		return common.NewAppError(common.CodeBackend, "backend unavailable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return errStatusNotFound
	}
	if resp.StatusCode >= 400 {
		return backendError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return common.NewAppError(common.CodeBackend, "malformed backend response", err)
	}
	return nil
}

var errStatusNotFound = errors.New("backend: not found")

// backendError converts a non-2xx response into an AppError carrying the
// backend's message when one is present, falling back to a generic one.
func backendError(resp *http.Response) error {
	message := "request failed"
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		if m := envelopeMessage(data); m != "" {
			message = m
		}
	}
	return common.NewAppError(common.CodeBackend, message, fmt.Errorf("backend: %s", resp.Status))
}

func envelopeMessage(data []byte) string {
	var envelope errorEnvelope
	if json.Unmarshal(data, &envelope) != nil {
		return ""
	}
	return envelope.Error.Message
}

func kindPath(kind document.Kind) string {
	switch kind {
	case document.KindPurchase:
		return "/api/v1/purchases"
	case document.KindPurchaseReturn:
		return "/api/v1/purchase-returns"
	case document.KindSale:
		return "/api/v1/sales"
	case document.KindSell:
		return "/api/v1/sells"
	case document.KindSellReturn:
		return "/api/v1/sell-returns"
	case document.KindSalesReturn:
		return "/api/v1/sales-returns"
	default:
		return "/api/v1/documents"
	}
}
