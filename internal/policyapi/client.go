package policyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// PolicyPath is the endpoint template; %s is the path-escaped identifier.
	PolicyPath = "/api/v1/policy/%s"

	// APIKeyHeader carries the static API key on every request.
	APIKeyHeader = "X-API-KEY"

	// DefaultDetail is used when a failed response carries no usable message.
	DefaultDetail = "Error..."

	maxBodyBytes = 10 << 20
)

// Client resolves policy identifiers against the remote policy API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client is copied and its
// redirect policy replaced, so a lookup stays a single request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = noRedirects(hc)
		}
	}
}

// New creates a client for the API rooted at baseURL.
// The default HTTP client has no timeout; a lookup is bounded only by its context.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: noRedirects(&http.Client{}),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// noRedirects returns a copy of hc that hands 3xx responses back to the
// caller instead of following them. The API key never leaves the API host.
func noRedirects(hc *http.Client) *http.Client {
	cp := *hc
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}

// Endpoint returns the lookup URL for an already normalized identifier.
func (c *Client) Endpoint(id string) string {
	return c.baseURL + fmt.Sprintf(PolicyPath, url.PathEscape(id))
}

// Fetch issues exactly one GET for id and reduces every outcome to a Result.
// It never returns an error: transport faults and undecodable bodies become
// status 500 failures, HTTP errors keep the server's status code.
func (c *Client) Fetch(ctx context.Context, id string) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(id), nil)
	if err != nil {
		return failed(http.StatusInternalServerError, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return failed(http.StatusInternalServerError, err.Error())
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return failed(http.StatusInternalServerError, fmt.Sprintf("read response body: %v", err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return failed(res.StatusCode, errorDetail(body))
	}

	payload, err := decodeObject(body)
	if err != nil {
		return failed(http.StatusInternalServerError, fmt.Sprintf("decode response body: %v", err))
	}

	return Result{StatusCode: res.StatusCode, Payload: payload}
}

func decodeObject(body []byte) (map[string]any, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", jsonKind(raw))
	}
	return obj, nil
}

// errorDetail extracts the message of a failed response: the JSON "detail"
// field, else the raw text, else DefaultDetail. A blank detail string counts
// as no message.
func errorDetail(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		switch detail := obj["detail"].(type) {
		case nil:
		case string:
			if strings.TrimSpace(detail) == "" {
				return DefaultDetail
			}
			return detail
		default:
			if encoded, err := json.Marshal(detail); err == nil {
				return string(encoded)
			}
		}
	}

	if text := string(bytes.TrimSpace(body)); text != "" {
		return text
	}
	return DefaultDetail
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
