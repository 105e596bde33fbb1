// Package api is the console's only way onto the network: an HTTP client for
// the contracts API that attaches the session credential to every call.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Credentials is the client's view of the session store. ClearIf drops the
// held credential only while it is still token, so a late 401 for a
// superseded credential leaves a newer one alone.
type Credentials interface {
	Token() string
	ClearIf(token string) error
}

// Client calls the contracts API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	logger  *log.Logger
}

// NewClient returns a client rooted at baseURL. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client, creds Credentials, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		creds:   creds,
		logger:  logger,
	}
}

// Call sends one request. When a credential is held it is attached as a bearer
// Authorization header; otherwise the request goes out unauthenticated. There
// are no retries and no caching. A 401 clears the credential the request was
// sent with, if it is still the one held; the response is still returned to
// the caller.
func (c *Client) Call(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	token := ""
	if c.creds != nil {
		token = c.creds.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api call failed", "method", method, "path", path, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		c.logger.Info("credential rejected, clearing session", "path", path)
		if err := c.creds.ClearIf(token); err != nil {
			c.logger.Error("clear session", "err", err)
		}
	}
	return resp, nil
}

// drain discards the rest of a body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
