package captcha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/kdwils/eth-faucet-web/logger"
)

var (
	// ErrUnavailable is returned by Execute before the widget is ready.
	ErrUnavailable = errors.New("captcha script not available")
	// ErrLoading is returned by Load while another load is in flight.
	ErrLoading = errors.New("captcha script is already loading")
)

type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Injection is what every rendered page needs to run the challenge.
type Injection struct {
	Provider  string
	SiteKey   string
	ScriptURL string
	StyleRule string
}

// Widget is the process-wide handle on the browser challenge script.
type Widget struct {
	provider    Provider
	siteKey     string
	source      TokenSource
	client      HTTP
	checkScript bool
	injection   Injection

	mu     sync.Mutex
	status Status
	ready  chan struct{}
}

type Option func(*Widget)

// WithHTTPClient sets the client used to probe the script.
func WithHTTPClient(client HTTP) Option {
	return func(w *Widget) {
		w.client = client
	}
}

// WithoutScriptCheck makes Load mark the widget ready without fetching the script.
func WithoutScriptCheck() Option {
	return func(w *Widget) {
		w.checkScript = false
	}
}

func NewWidget(provider Provider, siteKey string, source TokenSource, opts ...Option) *Widget {
	w := &Widget{
		provider:    provider,
		siteKey:     siteKey,
		source:      source,
		client:      http.DefaultClient,
		checkScript: true,
		ready:       make(chan struct{}),
		injection: Injection{
			Provider:  provider.Name(),
			SiteKey:   siteKey,
			ScriptURL: provider.ScriptURL(siteKey),
			StyleRule: provider.StyleRule(),
		},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *Widget) Injection() Injection {
	return w.injection
}

func (w *Widget) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Ready is closed once the widget reaches StatusReady.
func (w *Widget) Ready() <-chan struct{} {
	return w.ready
}

// Load takes the widget from uninitialized to ready. A failed load leaves it
// uninitialized so it can be attempted again; loading a ready widget does nothing.
func (w *Widget) Load(ctx context.Context) error {
	w.mu.Lock()
	switch w.status {
	case StatusReady:
		w.mu.Unlock()
		return nil
	case StatusLoading:
		w.mu.Unlock()
		return ErrLoading
	}
	w.status = StatusLoading
	w.mu.Unlock()

	var err error
	if w.checkScript {
		err = w.probe(ctx)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.status = StatusUninitialized
		return err
	}
	w.status = StatusReady
	close(w.ready)
	logger.FromContext(ctx).Info("captcha widget ready", "provider", w.provider.Name())
	return nil
}

func (w *Widget) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.injection.ScriptURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s script request: %w", w.provider.Name(), err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s script request failed: %w", w.provider.Name(), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s script returned status %d", w.provider.Name(), resp.StatusCode)
	}
	return nil
}

// Execute returns a one-time token for the action, scoped to the site key.
func (w *Widget) Execute(ctx context.Context, action string) (string, error) {
	if w.Status() != StatusReady {
		return "", ErrUnavailable
	}
	return w.source.Token(ctx, w.siteKey, w.provider.Action(action))
}
