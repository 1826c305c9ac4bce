// Package remote performs JSON requests against the Nexus API.
package remote

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
)

// ErrMalformedResponse means a response decoded as JSON but had the wrong shape.
var ErrMalformedResponse = errors.New("malformed response")

// TransportError is a network failure or an unsuccessful response.
type TransportError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports if err is a TransportError for a 404 response.
func IsNotFound(err error) bool {
	var transportErr *TransportError

	return errors.As(err, &transportErr) && transportErr.Status == http.StatusNotFound
}

// Client sends requests relative to a base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// Do sends a request with an optional JSON body and returns the raw
// response body for a 2xx response.
func (c *Client) Do(ctx context.Context, method string, path string, body any) ([]byte, error) {
	url := c.URL(path)
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)

		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, url, err)
		}

		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)

	if err != nil {
		return nil, &TransportError{Op: method, URL: url, Err: err}
	}

	request.Header.Set("Accept", "application/json")

	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.http.Do(request)

	if err != nil {
		return nil, &TransportError{Op: method, URL: url, Err: err}
	}

	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return nil, &TransportError{Op: method, URL: url, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		message := strings.TrimSpace(string(content))

		if message == "" {
			message = http.StatusText(response.StatusCode)
		}

		return nil, &TransportError{
			Op:     method,
			URL:    url,
			Status: response.StatusCode,
			Err:    errors.New(message),
		}
	}

	return content, nil
}

// GetList fetches a JSON array into a slice.
//
// Content that is not JSON is a TransportError. JSON of any other shape, like
// an object or null, returns ErrMalformedResponse.
func GetList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	content, err := c.Do(ctx, http.MethodGet, path, nil)

	if err != nil {
		return nil, err
	}

	var raw json.RawMessage

	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &TransportError{Op: http.MethodGet, URL: c.URL(path), Err: err}
	}

	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("GET %s: expected a list: %w", c.URL(path), ErrMalformedResponse)
	}

	var list []T

	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("GET %s: %v: %w", c.URL(path), err, ErrMalformedResponse)
	}

	if list == nil {
		list = []T{}
	}

	return list, nil
}
