package template

import (
	_ "embed"
	"html/template"
	"net/http"
	"time"

	"github.com/kdwils/eth-faucet-web/form"
	"github.com/kdwils/eth-faucet-web/pkg/captcha"
)

//go:embed html/faucet.html
var faucetHTML string

// FaucetPageData is everything the faucet page renders. It is derived from
// the form state and never mutated by the template.
type FaucetPageData struct {
	Title         string
	RepositoryURL string
	Captcha       captcha.Injection
	State         form.State
	AmountText    string
	ExplorerLink  string
	ActionURL     string
}

// NotificationMillis is the notification duration in milliseconds for the page script.
func (d FaucetPageData) NotificationMillis() int64 {
	if d.State.Notification == nil {
		return 0
	}
	return d.State.Notification.Duration.Milliseconds()
}

// StyleRule is the provider's injected CSS. It comes from the provider
// definitions, never from visitors.
func (d FaucetPageData) StyleRule() template.CSS {
	return template.CSS(d.Captcha.StyleRule)
}

// AddressMissing reports whether to flag the address field.
func (d FaucetPageData) AddressMissing() bool {
	return d.State.Dirty && form.Validate(d.State.Address) != nil
}

// RefreshSeconds is how often the page reloads while a request is in flight.
func (d FaucetPageData) RefreshSeconds() int {
	if !d.State.InProgress {
		return 0
	}
	return int((2 * time.Second).Seconds())
}

type Store struct {
	faucetTemplate *template.Template
}

// NewStore compiles the embedded templates into a *template.Template
func NewStore() (*Store, error) {
	tmpl, err := template.New("faucet").Parse(faucetHTML)
	if err != nil {
		return nil, err
	}

	return &Store{
		faucetTemplate: tmpl,
	}, nil
}

// RenderFaucet renders the faucet page into an http.ResponseWriter
func (s *Store) RenderFaucet(w http.ResponseWriter, data FaucetPageData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	return s.faucetTemplate.Execute(w, data)
}
