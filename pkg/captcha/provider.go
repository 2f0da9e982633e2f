package captcha

import (
	"fmt"
	"strings"
)

// Provider describes the browser side of a challenge service: which script
// the page loads, what it injects and how action labels are spelled.
type Provider interface {
	Name() string
	ScriptURL(siteKey string) string
	StyleRule() string
	Action(label string) string
}

// ProviderFor resolves a configured provider name.
func ProviderFor(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "recaptcha":
		return RecaptchaProvider{}, nil
	case "turnstile":
		return TurnstileProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown captcha provider %q", name)
	}
}

// keep returns label with every rune rejected by allowed removed, truncated
// to max runes when max > 0.
func keep(label string, allowed func(r rune) bool, max int) string {
	var b strings.Builder
	n := 0
	for _, r := range label {
		if max > 0 && n == max {
			break
		}
		if allowed(r) {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
