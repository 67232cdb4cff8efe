// Package orderclient talks to the external order service that creates and
// verifies gateway orders.
package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/metrics"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/signature"
)

const (
	pathCreateOrder = "/api/payment/create-order"
	pathVerify      = "/api/payment/verify"
	pathHealth      = "/health"

	maxBodyBytes = 1 << 20
)

type Options struct {
	BaseURL    string
	Secret     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Collector
	Logger     *zap.Logger
}

type Client struct {
	baseURL  string
	secret   string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker[response]
	metrics  *metrics.Collector
	log      *zap.Logger
	validate *validator.Validate
}

type response struct {
	status int
	body   []byte
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		secret:   opts.Secret,
		http:     hc,
		metrics:  opts.Metrics,
		log:      log,
		validate: validator.New(),
	}
	c.cb = gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        "order-service",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

type createOrderReq struct {
	Amount   int64  `json:"amount"`
	PackName string `json:"packName"`
}

type createOrderResp struct {
	Success  bool   `json:"success"`
	Key      string `json:"key"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	ID       string `json:"id"`
	Message  string `json:"message,omitempty"`
}

// CreateOrder asks the order service for a gateway order.
func (c *Client) CreateOrder(ctx context.Context, req domain.PurchaseRequest) (domain.OrderReceipt, error) {
	if err := c.validate.Struct(req); err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("invalid purchase request: %w", err)
	}

	resp, err := c.do(ctx, "create-order", http.MethodPost, pathCreateOrder, createOrderReq{
		Amount:   req.Amount,
		PackName: req.PackName,
	})
	if err != nil {
		return domain.OrderReceipt{}, err
	}
	if resp.status < 200 || resp.status > 299 {
		return domain.OrderReceipt{}, &domain.NetworkError{Op: "create order", Status: resp.status}
	}

	var out createOrderResp
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("decode create-order response: %w", err)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "Failed to create order"
		}
		return domain.OrderReceipt{}, &domain.RejectedError{Message: msg}
	}

	return domain.OrderReceipt{
		OrderID:    out.ID,
		Amount:     out.Amount,
		Currency:   out.Currency,
		GatewayKey: out.Key,
		Success:    out.Success,
		Message:    out.Message,
	}, nil
}

type verifyResp struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message,omitempty"`
}

// Verify forwards the gateway result for signature verification. The body
// decides the outcome; the status code is not inspected.
func (c *Client) Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationOutcome, error) {
	resp, err := c.do(ctx, "verify", http.MethodPost, pathVerify, req)
	if err != nil {
		return domain.VerificationOutcome{}, err
	}

	var out verifyResp
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return domain.VerificationOutcome{}, fmt.Errorf("decode verify response (status %d): %w", resp.status, err)
	}
	return domain.VerificationOutcome{
		Success: out.Success,
		OrderID: out.OrderID,
		Message: out.Message,
	}, nil
}

type healthResp struct {
	Message string `json:"message"`
}

func (c *Client) Health(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, "health", http.MethodGet, pathHealth, nil)
	if err != nil {
		return "", err
	}
	if resp.status < 200 || resp.status > 299 {
		return "", &domain.NetworkError{Op: "health", Status: resp.status}
	}

	var out healthResp
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	return out.Message, nil
}

// do runs one call through the breaker. Only transport failures count
// against the breaker and come back as errors; status codes are left to
// the caller.
func (c *Client) do(ctx context.Context, endpoint, method, path string, payload any) (response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
	}

	start := time.Now()
	resp, err := c.cb.Execute(func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
			if c.secret != "" {
				signature.SignRequest(req, c.secret, body, time.Now())
			}
		}

		res, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
		if err != nil {
			return response{}, err
		}
		return response{status: res.StatusCode, body: data}, nil
	})
	c.metrics.OrderAPICall(endpoint, start, err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.Warn("order service breaker rejected call", zap.String("endpoint", endpoint))
		}
		return response{}, &domain.NetworkError{Op: endpoint, Err: err}
	}

	c.log.Debug("order service call",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.status),
		zap.Duration("took", time.Since(start)))
	return resp, nil
}
