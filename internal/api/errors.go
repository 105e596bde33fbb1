package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrInvalidCredentials is returned by Login for any non-2xx answer.
var ErrInvalidCredentials = errors.New("invalid credentials")

// maxErrorBody caps how much of an error body is read looking for detail.
const maxErrorBody = 64 << 10

// HTTPError is a non-2xx answer. Detail is the server's "detail" field, or ""
// when the body did not carry one.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// ErrorMessage reads resp's body looking for a JSON object with a string
// "detail" field and returns it. Anything else (non-JSON, no detail, empty
// detail, detail that is not a string) yields fallback. The body is consumed
// and closed.
func ErrorMessage(resp *http.Response, fallback string) string {
	if resp == nil || resp.Body == nil {
		return fallback
	}
	defer drain(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fallback
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return fallback
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return fallback
	}
	if strings.TrimSpace(detail) == "" {
		return fallback
	}
	return detail
}

func newHTTPError(resp *http.Response) *HTTPError {
	return &HTTPError{StatusCode: resp.StatusCode, Detail: ErrorMessage(resp, "")}
}

// Detail returns the server detail carried by err, or "".
func Detail(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Detail
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 answer.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}
