package form

import (
	"errors"

	"github.com/kdwils/eth-faucet-web/faucet"
	"github.com/kdwils/eth-faucet-web/pkg/remote"
)

const (
	msgInvalid   = "Please enter a wallet address."
	msgCaptcha   = "Captcha verification is unavailable. Reload the page and try again."
	msgTransport = "Could not reach the faucet. Please try again later."
	msgTimeout   = "The faucet did not respond in time. Please try again later."
	msgServer    = "The faucet could not process your request."
	msgUnknown   = "Something went wrong. Please try again."
	msgBusy      = "A funding request is already in progress."
)

// Message is the text shown to a visitor for err. A message sent by the
// faucet API always wins.
func Message(err error) string {
	var statusErr *remote.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	if errors.Is(err, ErrAddressRequired) {
		return msgInvalid
	}
	if errors.Is(err, ErrBusy) {
		return msgBusy
	}

	switch faucet.ErrorKind(err) {
	case faucet.KindInvalid:
		return msgInvalid
	case faucet.KindCaptcha:
		return msgCaptcha
	case faucet.KindTransport:
		return msgTransport
	case faucet.KindTimeout:
		return msgTimeout
	case faucet.KindServer:
		return msgServer
	default:
		return msgUnknown
	}
}
