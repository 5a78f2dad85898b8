// Package gateway is the HTTP client for the aggregating chat gateway and
// the microservices behind it — users, channels, threads, messages, files,
// search, moderation, presence, and the chat assistants. All calls are JSON
// over HTTP with bearer-token auth; the token is shared process-wide and
// swapped atomically by the session layer.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/JohannVasquez/chatdeck/internal/config"
)

// Client dispatches requests against the gateway.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   atomic.Value
}

// NewClient initializes a gateway client from configuration.
func NewClient(cfg config.ClientConfig) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.GatewayURL, "/"),
		httpc:   &http.Client{Timeout: cfg.HTTPTimeout},
	}
	c.token.Store("")
	return c
}

// SetToken installs the bearer credential used by every subsequent request.
func (c *Client) SetToken(token string) {
	c.token.Store(token)
}

// ClearToken removes the bearer credential.
func (c *Client) ClearToken() {
	c.token.Store("")
}

// Token returns the currently installed bearer credential, if any.
func (c *Client) Token() string {
	v, _ := c.token.Load().(string)
	return v
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, nil, "application/json", body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, nil)
}

// postMultipart uploads a form with one file part plus plain fields.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, content []byte, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize form: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, writer.FormDataContentType(), &buf, out)
}

// getList fetches a collection endpoint and normalizes whatever wrapper the
// upstream chose into a plain slice.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw []byte
	if err := c.getJSON(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw), nil
}
