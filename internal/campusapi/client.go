package campusapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"smartcampus/portal/internal/config"
)

const maxLoggedBody = 256

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

type RequestOptions struct {
	Method  string
	Body    any
	Headers http.Header
}

func New(cfg config.UpstreamConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log.With().Str("component", "campusapi").Logger(),
	}
}

// Request performs a single call against the campus API and returns the
// decoded JSON body unchanged. Non-JSON answers fail with ErrInvalidResponse
// whatever their status; non-2xx JSON answers fail with *HTTPError.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	c.log.Debug().Str("method", method).Str("endpoint", endpoint).Msg("campus api call")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("campus api response")

	if !isJSON(resp.Header.Get("Content-Type")) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		c.log.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("content_type", resp.Header.Get("Content-Type")).
			Bytes("body", snippet).
			Msg("non-json response")
		return nil, ErrInvalidResponse
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode body: %w", ErrInvalidResponse)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &envelope)
		return nil, newHTTPError(resp.StatusCode, envelope.Error)
	}

	return json.RawMessage(raw), nil
}

func (c *Client) do(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	raw, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
