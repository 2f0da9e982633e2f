package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoReq struct {
	Name string `json:"name"`
}

type echoResp struct {
	Greeting string `json:"greeting"`
}

func TestClient_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var req echoReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(echoResp{Greeting: "hello " + req.Name})
	}))
	defer srv.Close()

	var out echoResp
	err := New(srv.Client()).Post(context.Background(), srv.URL, echoReq{Name: "faucet"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello faucet", out.Greeting)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantError   string
	}{
		{
			name:        "message field",
			status:      http.StatusInternalServerError,
			body:        `{"message":"rate limited"}`,
			wantMessage: "rate limited",
			wantError:   "rate limited",
		},
		{
			name:        "error field fallback",
			status:      http.StatusForbidden,
			body:        `{"error":"Funded too recently","code":7}`,
			wantMessage: "Funded too recently",
			wantError:   "Funded too recently",
		},
		{
			name:      "plain text body",
			status:    http.StatusTooManyRequests,
			body:      "rate limit exceeded",
			wantError: "request failed with status 429",
		},
		{
			name:      "non 200 success",
			status:    http.StatusCreated,
			body:      `{}`,
			wantError: "request failed with status 201",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.Client()).Post(context.Background(), srv.URL, echoReq{}, &echoResp{})
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.wantMessage, statusErr.Message)
			assert.EqualError(t, err, tt.wantError)
		})
	}
}

func TestClient_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.Client())

	ok, err := c.PostWithOptionalResponse(context.Background(), srv.URL, nil, &echoResp{})
	require.NoError(t, err)
	assert.False(t, ok)

	err = c.Post(context.Background(), srv.URL, nil, &echoResp{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_Transport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(nil).Post(context.Background(), url, echoReq{}, &echoResp{})
	assert.ErrorIs(t, err, ErrTransport)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"greeting":`))
	}))
	defer srv.Close()

	err := New(srv.Client()).Post(context.Background(), srv.URL, echoReq{}, &echoResp{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransport)
}
