package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"uranus/pkg/config"
	"uranus/pkg/errors"
	"uranus/pkg/logger"
)

// Response is a fully read API response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is a bearer-authenticated GET client for the v2 API.
// One Client is shared by every component of a run.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates an API client. An empty token is a fatal configuration error.
func NewClient(cfg *config.APIConfig, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	token := strings.TrimSpace(cfg.BearerToken)
	if token == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "bearer token is empty")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "application/json",
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log,
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// BaseURL returns the API root used to build endpoints
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs one GET request and reads the whole body.
//
// A transport failure returns a network error and no response. A 401 or 403
// returns a fatal auth error. Any other status >= 400 returns the response
// together with an api error so rate-limit headers can still be consulted.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, "failed to create request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	c.logger.TraceWithFields("Sending API request", map[string]interface{}{
		"method": req.Method,
		"url":    url,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("API request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "failed to read response body",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}
	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, time.Since(start))

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	return out, c.checkResponseStatus(url, resp.StatusCode)
}

// checkResponseStatus maps HTTP statuses onto typed errors
func (c *Client) checkResponseStatus(url string, status int) error {
	switch {
	case status < 400:
		return nil
	case errors.IsFatalStatusCode(status):
		c.logger.ErrorWithFields("Credentials rejected", map[string]interface{}{
			"status": status,
			"url":    url,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "bearer token rejected",
			Code:    status,
		}
	case status == http.StatusNotFound:
		return &errors.Error{Type: errors.ErrorTypeNotFound, Message: "resource not found", Code: status}
	case status == http.StatusTooManyRequests:
		c.logger.WarnWithFields("Request refused by rate limit", map[string]interface{}{
			"status": status,
			"url":    url,
		})
		return &errors.Error{Type: errors.ErrorTypeAPI, Message: "too many requests", Code: status}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeAPI,
			Message: fmt.Sprintf("unexpected status code: %d", status),
			Code:    status,
		}
	}
}

// DecodeEnvelope parses a response body as the common v2 envelope
func DecodeEnvelope(resp *Response) (*Envelope, error) {
	if resp == nil {
		return nil, errors.New(errors.ErrorTypeParsing, "no response")
	}
	var env Envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "failed to parse response envelope",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}
	return &env, nil
}

// GetEnvelope performs a GET and decodes the envelope. The response is
// returned whenever one was received, even when decoding fails.
func (c *Client) GetEnvelope(ctx context.Context, url string) (*Envelope, *Response, error) {
	resp, err := c.Get(ctx, url)
	if resp == nil {
		return nil, nil, err
	}
	env, decodeErr := DecodeEnvelope(resp)
	if err != nil {
		return env, resp, err
	}
	if decodeErr != nil {
		preview := string(resp.Body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("Failed to parse API response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"body_preview": preview,
		})
		return nil, resp, decodeErr
	}
	return env, resp, nil
}

// LookupUser resolves a username to its account. A response without data
// is a not_found error. The response headers are returned for rate limiting.
func (c *Client) LookupUser(ctx context.Context, username string) (*User, http.Header, error) {
	env, resp, err := c.GetEnvelope(ctx, UserByUsernameURL(c.baseURL, username))
	var header http.Header
	if resp != nil {
		header = resp.Header
	}
	if err != nil {
		return nil, header, err
	}
	if !env.HasData() {
		msg := "user not found"
		if env.HasErrors() {
			msg = env.Errors[0].Detail
		}
		return nil, header, errors.New(errors.ErrorTypeNotFound, msg)
	}

	user, err := env.User()
	if err != nil || user.ID == "" {
		return nil, header, errors.Wrap(errors.ErrorTypeParsing, "user payload has no id", err)
	}
	return user, header, nil
}
