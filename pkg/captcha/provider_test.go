package captcha

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFor(t *testing.T) {
	p, err := ProviderFor("")
	require.NoError(t, err)
	assert.Equal(t, "recaptcha", p.Name())

	p, err = ProviderFor(" Turnstile ")
	require.NoError(t, err)
	assert.Equal(t, "turnstile", p.Name())

	_, err = ProviderFor("hcaptcha")
	assert.Error(t, err)
}

func TestProvider_Action(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		label    string
		want     string
	}{
		{"recaptcha address", RecaptchaProvider{}, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"},
		{"recaptcha strips dashes and spaces", RecaptchaProvider{}, "faucet request-1/a b", "faucetrequest1/ab"},
		{"turnstile keeps dashes", TurnstileProvider{}, "faucet-request_1", "faucet-request_1"},
		{"turnstile caps length", TurnstileProvider{}, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", "0x7E5F4552091A69125d5DfCb7b8C265"},
		{"turnstile strips slash", TurnstileProvider{}, "a/b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.provider.Action(tt.label))
		})
	}
}

func TestTurnstile_Injection(t *testing.T) {
	w := NewWidget(TurnstileProvider{}, "site", BrowserSource{})
	assert.Equal(t, "https://challenges.cloudflare.com/turnstile/v0/api.js?render=explicit", w.Injection().ScriptURL)
	assert.Empty(t, w.Injection().StyleRule)
}

func TestSources(t *testing.T) {
	ctx := context.Background()

	_, err := BrowserSource{}.Token(ctx, "site", "a")
	assert.ErrorIs(t, err, ErrNoResponse)

	token, err := BrowserSource{}.Token(WithResponse(ctx, "from-browser"), "site", "a")
	require.NoError(t, err)
	assert.Equal(t, "from-browser", token)

	_, err = StaticSource("").Token(ctx, "site", "a")
	assert.ErrorIs(t, err, ErrNoResponse)

	token, err = StaticSource("fixed").Token(ctx, "site", "a")
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)
}
