package faucet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kdwils/eth-faucet-web/pkg/captcha"
	"github.com/kdwils/eth-faucet-web/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaptcha struct {
	token   string
	err     error
	actions []string
	mu      sync.Mutex
}

func (f *fakeCaptcha) Execute(_ context.Context, action string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return f.token, f.err
}

// echoBackend answers like the faucet API: 0x123 with token T gets funded.
func echoBackend(t *testing.T, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, RequestPath, r.URL.Path)

		var req FundsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req.WalletAddress != "0x123" || req.CaptchaResponse != "T" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"Failed captcha verification"}`))
			return
		}
		w.Write([]byte(`{"amount":"1","transactionHash":"0xabc"}`))
	}))
}

func TestService_RequestFunds(t *testing.T) {
	var calls atomic.Int32
	srv := echoBackend(t, &calls)
	defer srv.Close()

	c := &fakeCaptcha{token: "T"}
	svc := NewService(Environment{APIEndpoint: srv.URL + "/"}, c, remote.New(srv.Client()))

	resp, err := svc.RequestFunds(context.Background(), "0x123")
	require.NoError(t, err)
	assert.Equal(t, FundsResponse{Amount: "1", TransactionHash: "0xabc"}, resp)
	assert.Equal(t, []string{"0x123"}, c.actions)
	assert.EqualValues(t, 1, calls.Load())
}

func TestService_CaptchaFailureSkipsHTTP(t *testing.T) {
	var calls atomic.Int32
	srv := echoBackend(t, &calls)
	defer srv.Close()

	svc := NewService(Environment{APIEndpoint: srv.URL}, &fakeCaptcha{err: captcha.ErrUnavailable}, remote.New(srv.Client()))

	_, err := svc.RequestFunds(context.Background(), "0x123")
	assert.Same(t, captcha.ErrUnavailable, err)
	assert.EqualValues(t, 0, calls.Load())
}

func TestService_EmptyAddress(t *testing.T) {
	c := &fakeCaptcha{token: "T"}
	svc := NewService(Environment{APIEndpoint: "http://unused"}, c, remote.New(nil))

	_, err := svc.RequestFunds(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyAddress)
	assert.Empty(t, c.actions)
}

func TestService_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	svc := NewService(Environment{APIEndpoint: srv.URL}, &fakeCaptcha{token: "T"}, remote.New(srv.Client()))

	resp, err := svc.RequestFunds(context.Background(), "0x123")
	assert.Zero(t, resp)

	var statusErr *remote.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "rate limited", statusErr.Message)
	assert.Equal(t, KindServer, ErrorKind(err))
}

func TestService_IndependentRequests(t *testing.T) {
	var calls atomic.Int32
	srv := echoBackend(t, &calls)
	defer srv.Close()

	svc := NewService(Environment{APIEndpoint: srv.URL}, &fakeCaptcha{token: "T"}, remote.New(srv.Client()))

	var wg sync.WaitGroup
	results := make([]FundsResponse, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.RequestFunds(context.Background(), "0x123")
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, FundsResponse{Amount: "1", TransactionHash: "0xabc"}, results[i])
	}
	assert.EqualValues(t, 2, calls.Load())
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Amount
	}{
		{"string", `{"amount":"32.5"}`, "32.5"},
		{"number", `{"amount":32.5}`, "32.5"},
		{"big integer", `{"amount":32500000000000000000}`, "32500000000000000000"},
		{"null", `{"amount":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp FundsResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.want, resp.Amount)
		})
	}

	var resp FundsResponse
	assert.Error(t, json.Unmarshal([]byte(`{"amount":true}`), &resp))
}

func TestEnvironment_RequestURL(t *testing.T) {
	assert.Equal(t, "http://api:8000/api/v1/faucet/request", Environment{APIEndpoint: "http://api:8000"}.RequestURL())
	assert.Equal(t, "http://api:8000/api/v1/faucet/request", Environment{APIEndpoint: "http://api:8000/"}.RequestURL())
}
