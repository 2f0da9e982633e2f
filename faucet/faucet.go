package faucet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kdwils/eth-faucet-web/logger"
	"github.com/kdwils/eth-faucet-web/metrics"
)

// RequestPath is appended to the API endpoint for every funding request.
const RequestPath = "/api/v1/faucet/request"

// ErrEmptyAddress is returned when RequestFunds is called without an address.
var ErrEmptyAddress = errors.New("wallet address is required")

// Environment is the static configuration the service needs. It is read once
// at startup.
type Environment struct {
	APIEndpoint    string
	CaptchaSiteKey string
}

// RequestURL is the funding endpoint under the configured API base.
func (e Environment) RequestURL() string {
	return strings.TrimRight(e.APIEndpoint, "/") + RequestPath
}

type FundsRequest struct {
	WalletAddress   string `json:"walletAddress"`
	CaptchaResponse string `json:"captchaResponse"`
}

type FundsResponse struct {
	Amount          Amount `json:"amount"`
	TransactionHash string `json:"transactionHash"`
}

// Amount is the funded value in the API's display unit. The API may send it
// as a JSON string or number; both decode to the same text.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) String() string {
	return string(a)
}

// Captcha hands out one-time challenge tokens.
type Captcha interface {
	Execute(ctx context.Context, action string) (string, error)
}

// Poster sends a JSON body and decodes the reply into out.
type Poster interface {
	Post(ctx context.Context, url string, body, out any) error
}

type Service struct {
	env     Environment
	captcha Captcha
	http    Poster
	metrics metrics.Metricer
}

type Option func(*Service)

func WithMetrics(m metrics.Metricer) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(env Environment, captcha Captcha, http Poster, opts ...Option) *Service {
	s := &Service{
		env:     env,
		captcha: captcha,
		http:    http,
		metrics: metrics.NoopMetrics{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RequestFunds solves a challenge for address and asks the faucet API to fund
// it. Errors from either step are returned as is.
func (s *Service) RequestFunds(ctx context.Context, address string) (resp FundsResponse, err error) {
	if address == "" {
		return resp, ErrEmptyAddress
	}

	log := logger.FromContext(ctx).With("address", address)
	onDone := s.metrics.RecordFundsRequest()
	defer func() {
		onDone(ErrorKind(err).String())
	}()

	token, err := s.captcha.Execute(ctx, address)
	if err != nil {
		log.Warn("could not obtain captcha token", "error", err)
		return resp, err
	}

	req := FundsRequest{
		WalletAddress:   address,
		CaptchaResponse: token,
	}

	if err = s.http.Post(ctx, s.env.RequestURL(), req, &resp); err != nil {
		log.Error("funding request failed", "error", err)
		return FundsResponse{}, err
	}

	log.Info("funded", "txHash", resp.TransactionHash, "amount", resp.Amount)
	return resp, nil
}
