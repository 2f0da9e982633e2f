// Package remote posts JSON payloads to the faucet API and turns non-success
// replies into errors carrying the server's message.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrTransport wraps every failure that happened before a response arrived.
	ErrTransport = errors.New("transport failure")
	// ErrEmptyResponse is returned by Post when a 200 reply has no body.
	ErrEmptyResponse = errors.New("unexpected type of response")
)

// StatusError is returned for any reply other than 200 OK.
type StatusError struct {
	StatusCode int
	// Message is the server supplied message, empty when the body carried none.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type Client struct {
	r *resty.Client
}

// New wraps the given http client. A nil client falls back to http.DefaultClient.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	r := resty.NewWithClient(httpClient).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &Client{r: r}
}

// Post sends body as JSON and decodes the 200 reply into out. An empty reply
// is an error.
func (c *Client) Post(ctx context.Context, url string, body, out any) error {
	ok, err := c.PostWithOptionalResponse(ctx, url, body, out)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEmptyResponse
	}
	return nil
}

// PostWithOptionalResponse is Post without the requirement of a reply body.
// It reports whether out was populated.
func (c *Client) PostWithOptionalResponse(ctx context.Context, url string, body, out any) (bool, error) {
	req := c.r.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(url)
	if err != nil {
		return false, fmt.Errorf("%w: post %s: %w", ErrTransport, url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return false, &StatusError{
			StatusCode: resp.StatusCode(),
			Message:    serverMessage(resp.Body()),
		}
	}

	raw := bytes.TrimSpace(resp.Body())
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return true, nil
}

// serverMessage extracts "message", falling back to "error", from a JSON
// error body. Anything else yields an empty string.
func serverMessage(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if msg, ok := fields[key].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}
