package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kdwils/eth-faucet-web/faucet"
	"github.com/kdwils/eth-faucet-web/logger"
	"github.com/kdwils/eth-faucet-web/metrics"
)

// ErrBusy is returned when a submission arrives while another is in flight.
var ErrBusy = errors.New("a funding request is already in progress")

const DefaultNotificationDuration = 3 * time.Second

// Funder requests funds for an address.
type Funder interface {
	RequestFunds(ctx context.Context, address string) (faucet.FundsResponse, error)
}

// Form owns the state of one visitor's faucet form.
type Form struct {
	funder   Funder
	metrics  metrics.Metricer
	duration time.Duration
	amount   func(faucet.Amount) string
	now      func() time.Time

	mu         sync.Mutex
	state      State
	lastActive time.Time
}

type Option func(*Form)

// WithNotificationDuration sets how long notifications stay on screen.
func WithNotificationDuration(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.duration = d
		}
	}
}

// WithAmountFormat sets how funded amounts are written in notifications.
func WithAmountFormat(format func(faucet.Amount) string) Option {
	return func(f *Form) {
		f.amount = format
	}
}

func WithMetrics(m metrics.Metricer) Option {
	return func(f *Form) {
		f.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		f.now = now
	}
}

func New(funder Funder, opts ...Option) *Form {
	f := &Form{
		funder:   funder,
		metrics:  metrics.NoopMetrics{},
		duration: DefaultNotificationDuration,
		amount:   func(a faucet.Amount) string { return a.String() },
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.lastActive = f.now()
	return f
}

// State returns a copy of the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActive = f.now()
	return f.state
}

// Consume returns the current state and dismisses its notification, so every
// notification is rendered exactly once.
func (f *Form) Consume() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActive = f.now()
	s := f.state
	f.state = f.state.Apply(Dismissed{})
	return s
}

// IdleSince reports whether the form has been untouched since t and has no
// request in flight.
func (f *Form) IdleSince(t time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.state.InProgress && f.lastActive.Before(t)
}

// Submit asks the funder for funds for address. While another request is in
// flight every submission, valid or not, is rejected with ErrBusy and leaves
// the state of that request alone. It blocks until the funder returns.
func (f *Form) Submit(ctx context.Context, address string) (State, error) {
	log := logger.FromContext(ctx)
	address = strings.TrimSpace(address)

	f.mu.Lock()
	f.lastActive = f.now()
	if f.state.InProgress {
		f.state = f.state.Apply(Rejected{Notification: f.notification(NotificationError, msgBusy)})
		s := f.state
		f.mu.Unlock()
		f.metrics.RecordSubmission("busy")
		log.Warn("rejected submission while another is in flight", "address", address)
		return s, ErrBusy
	}
	if err := Validate(address); err != nil {
		f.state = f.state.Apply(Invalid{Address: address})
		s := f.state
		f.mu.Unlock()
		f.metrics.RecordSubmission("invalid")
		return s, err
	}
	f.state = f.state.Apply(Submitted{Address: address})
	f.mu.Unlock()
	f.metrics.RecordSubmission("accepted")

	if !faucet.LooksLikeAddress(address) {
		log.Debug("submitted address is not a hex account address", "address", address)
	}

	resp, err := f.funder.RequestFunds(ctx, address)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActive = f.now()
	if err != nil {
		f.state = f.state.Apply(Failed{Notification: f.notification(NotificationError, Message(err))})
		return f.state, err
	}

	amount := f.amount(resp.Amount)
	f.state = f.state.Apply(Succeeded{
		Response:     resp,
		AmountText:   amount,
		Notification: f.notification(NotificationSuccess, "Funded with "+amount),
	})
	return f.state, nil
}

func (f *Form) notification(kind NotificationKind, text string) Notification {
	return Notification{
		Kind:     kind,
		Text:     text,
		Duration: f.duration,
	}
}
