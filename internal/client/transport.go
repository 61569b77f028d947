package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

const (
	// DefaultTimeout bounds every backend request.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 4096
)

// Config configures a Transport.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RateLimit  int // requests per second, 0 disables limiting
	HTTPClient *http.Client
}

// Transport performs authorized JSON requests against the rental backend
// and unwraps the response envelope.
type Transport struct {
	baseURL string
	token   string
	http    *http.Client
	limiter ratelimit.Limiter
}

// NewTransport creates a transport from cfg.
func NewTransport(cfg Config) *Transport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
	}
	return &Transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
		limiter: limiter,
	}
}

type rawEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do sends a request and decodes the envelope's data into out (which may be nil).
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := t.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindTransport, Message: fmt.Sprintf("marshal request: %v", err), Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	t.limiter.Take()
	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"method":     method,
			"path":       path,
			"request_id": requestID,
		}).Warn("Backend request failed")
		return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"duration":   time.Since(start),
		"request_id": requestID,
	}).Debug("Backend request")

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	var env rawEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	if !env.Success {
		return &Error{Kind: KindRejected, Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: fmt.Sprintf("decode data: %v", err), Err: err}
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env rawEnvelope
	_ = json.Unmarshal(data, &env)

	e := &Error{Status: resp.StatusCode, Message: env.Message}
	switch {
	case resp.StatusCode == http.StatusForbidden:
		e.Kind = KindForbidden
	case resp.StatusCode == http.StatusNotFound:
		e.Kind = KindNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		e.Kind = KindServer
	default:
		e.Kind = KindTransport
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
	}
	return e
}

func (t *Transport) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return t.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (t *Transport) post(ctx context.Context, path string, body, out interface{}) error {
	return t.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (t *Transport) put(ctx context.Context, path string, body, out interface{}) error {
	return t.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (t *Transport) delete(ctx context.Context, path string) error {
	return t.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func escape(id string) string {
	return url.PathEscape(id)
}
