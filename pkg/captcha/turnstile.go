package captcha

// TurnstileProvider is Cloudflare Turnstile, rendered explicitly on submit.
type TurnstileProvider struct{}

const turnstileMaxAction = 32

func (TurnstileProvider) Name() string {
	return "turnstile"
}

func (TurnstileProvider) ScriptURL(string) string {
	return "https://challenges.cloudflare.com/turnstile/v0/api.js?render=explicit"
}

func (TurnstileProvider) StyleRule() string {
	return ""
}

// Action keeps [A-Za-z0-9_-] and caps the label at 32 characters.
func (TurnstileProvider) Action(label string) string {
	return keep(label, func(r rune) bool {
		return isAlnum(r) || r == '_' || r == '-'
	}, turnstileMaxAction)
}
