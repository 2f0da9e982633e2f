package captcha

import (
	"context"
	"errors"
)

// ErrNoResponse means the page submitted without a challenge response.
var ErrNoResponse = errors.New("no captcha response submitted")

// TokenSource produces the one-time token for a site key and action.
type TokenSource interface {
	Token(ctx context.Context, siteKey, action string) (string, error)
}

type responseKey struct{}

// WithResponse attaches the token the browser script produced to ctx.
func WithResponse(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, responseKey{}, token)
}

// BrowserSource hands out the token the visitor's browser solved, as carried
// on the request context by WithResponse.
type BrowserSource struct{}

func (BrowserSource) Token(ctx context.Context, _, _ string) (string, error) {
	token, _ := ctx.Value(responseKey{}).(string)
	if token == "" {
		return "", ErrNoResponse
	}
	return token, nil
}

// StaticSource always returns the same token. Useful with provider test keys,
// which accept any response.
type StaticSource string

func (s StaticSource) Token(context.Context, string, string) (string, error) {
	if s == "" {
		return "", ErrNoResponse
	}
	return string(s), nil
}
