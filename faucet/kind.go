package faucet

import (
	"context"
	"errors"

	"github.com/kdwils/eth-faucet-web/pkg/captcha"
	"github.com/kdwils/eth-faucet-web/pkg/remote"
)

// Kind groups failures the way they are reported to visitors and metrics.
type Kind int

const (
	KindNone Kind = iota
	KindInvalid
	KindCaptcha
	KindTransport
	KindTimeout
	KindServer
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "success"
	case KindInvalid:
		return "invalid"
	case KindCaptcha:
		return "captcha"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

func ErrorKind(err error) Kind {
	var statusErr *remote.StatusError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyAddress):
		return KindInvalid
	case errors.Is(err, captcha.ErrUnavailable), errors.Is(err, captcha.ErrNoResponse):
		return KindCaptcha
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &statusErr):
		return KindServer
	case errors.Is(err, remote.ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}
