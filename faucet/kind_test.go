package faucet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kdwils/eth-faucet-web/pkg/captcha"
	"github.com/kdwils/eth-faucet-web/pkg/remote"
	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"empty address", ErrEmptyAddress, KindInvalid},
		{"captcha unavailable", captcha.ErrUnavailable, KindCaptcha},
		{"captcha missing", fmt.Errorf("wrapped: %w", captcha.ErrNoResponse), KindCaptcha},
		{"server", &remote.StatusError{StatusCode: 500}, KindServer},
		{"transport", fmt.Errorf("%w: dial", remote.ErrTransport), KindTransport},
		{"timeout", fmt.Errorf("%w: %w", remote.ErrTransport, context.DeadlineExceeded), KindTimeout},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "success", KindNone.String())
	assert.Equal(t, "server", KindServer.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
