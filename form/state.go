package form

import (
	"errors"
	"strings"
	"time"

	"github.com/kdwils/eth-faucet-web/faucet"
)

var ErrAddressRequired = errors.New("wallet address is required")

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient message, dismissed after Duration.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Text     string           `json:"text"`
	Duration time.Duration    `json:"duration"`
}

// State is everything the page needs to render the form.
type State struct {
	Address      string                `json:"address"`
	Dirty        bool                  `json:"dirty"`
	InProgress   bool                  `json:"inProgress"`
	Response     *faucet.FundsResponse `json:"response,omitempty"`
	AmountText   string                `json:"amountText,omitempty"`
	Error        string                `json:"error,omitempty"`
	Notification *Notification         `json:"notification,omitempty"`
}

// Validate reports whether address may be submitted.
func Validate(address string) error {
	if strings.TrimSpace(address) == "" {
		return ErrAddressRequired
	}
	return nil
}

// Event is a discrete change to the form state.
type Event interface {
	apply(State) State
}

// Apply returns the state after e. The receiver is not modified.
func (s State) Apply(e Event) State {
	return e.apply(s)
}

// Invalid marks a submission that failed validation.
type Invalid struct {
	Address string
}

func (e Invalid) apply(s State) State {
	s.Address = e.Address
	s.Dirty = true
	return s
}

// Submitted starts a request and clears the previous outcome.
type Submitted struct {
	Address string
}

func (e Submitted) apply(s State) State {
	return State{
		Address:    e.Address,
		Dirty:      s.Dirty,
		InProgress: true,
	}
}

type Succeeded struct {
	Response faucet.FundsResponse
	// AmountText is the funded amount as shown to the visitor.
	AmountText   string
	Notification Notification
}

func (e Succeeded) apply(s State) State {
	resp := e.Response
	n := e.Notification
	s.InProgress = false
	s.Response = &resp
	s.AmountText = e.AmountText
	s.Error = ""
	s.Notification = &n
	return s
}

type Failed struct {
	Notification Notification
}

func (e Failed) apply(s State) State {
	n := e.Notification
	s.InProgress = false
	s.Response = nil
	s.AmountText = ""
	s.Error = n.Text
	s.Notification = &n
	return s
}

// Rejected reports a submission that never started, leaving any request in
// flight untouched.
type Rejected struct {
	Notification Notification
}

func (e Rejected) apply(s State) State {
	n := e.Notification
	s.Notification = &n
	return s
}

// Dismissed removes the notification once it has been shown.
type Dismissed struct{}

func (Dismissed) apply(s State) State {
	s.Notification = nil
	return s
}
