// Package gateway is the HTTP JSON client for the registration platform's
// backend API. The backend owns all business state; this client only reads
// it and submits mutations, classifying failures into the error taxonomy the
// orchestrators present to the user.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// Client talks to the backend REST API.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onSessionReset func()
}

// NewClient creates a Client for the given API base URL. A nil httpClient
// gets a default with a 10 second timeout, matching the platform's frontend
// transport settings.
func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}, nil
}

// SetSessionResetHook registers the hook invoked when an authenticated call
// comes back 401 and the endpoint is eligible for the automatic sign-in
// redirect. Registration mutations suppress it so the calling operation can
// present a contextual error instead.
func (c *Client) SetSessionResetHook(fn func()) {
	c.onSessionReset = fn
}

// call carries one request's shape through do.
type call struct {
	method               string
	path                 string
	query                url.Values
	body                 any
	authRequired         bool
	suppressSessionReset bool
	registrationCreate   bool
}

// errorBody is the backend's structured error envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	token := c.tokens.Token()
	if cl.authRequired && token == "" {
		return nil, &Error{Kind: KindNotAuthenticated, Message: "please sign in first"}
	}

	var reqBody io.Reader
	if cl.body != nil {
		encoded, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", cl.method, cl.path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", cl.method, cl.path, err)
	}
	if len(cl.query) > 0 {
		req.URL.RawQuery = cl.query.Encode()
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	// The backend sits behind caches that must never serve stale registration
	// state.
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("gateway_transport_failed", "method", cl.method, "path", cl.path, "request_id", requestID, "error", err)
		return nil, &Error{Kind: KindTransport, Message: defaultMessage(KindTransport), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: defaultMessage(KindTransport), Err: err}
	}

	if resp.StatusCode >= 400 {
		kind := classify(resp.StatusCode, cl.registrationCreate)
		msg := defaultMessage(kind)
		var eb errorBody
		if jsonErr := json.Unmarshal(data, &eb); jsonErr == nil {
			if eb.Message != "" {
				msg = eb.Message
			} else if eb.Error != "" {
				msg = eb.Error
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && !cl.suppressSessionReset && c.onSessionReset != nil {
			c.onSessionReset()
		}
		slog.Debug("gateway_call_rejected", "method", cl.method, "path", cl.path,
			"status", resp.StatusCode, "kind", string(kind), "request_id", requestID)
		return nil, &Error{Kind: kind, Message: msg, HTTPStatus: resp.StatusCode}
	}

	return data, nil
}

// unmarshalList decodes either a bare JSON array or an envelope carrying the
// array under key (with "data" as a secondary envelope key), the same
// tolerance the platform's frontends needed across backend iterations.
func unmarshalList(data []byte, key string, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	if raw, ok := envelope[key]; ok {
		return json.Unmarshal(raw, out)
	}
	if raw, ok := envelope["data"]; ok {
		return json.Unmarshal(raw, out)
	}
	return nil
}
