package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getHealth", req["method"])
		assert.Equal(t, "2.0", req["jsonrpc"])

		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: quietLogger()})

	var resp struct {
		Result string `json:"result"`
	}
	err := client.Call(context.Background(), "getHealth", nil, &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Result)
}

func TestCall_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":42}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:      srv.URL,
		MaxRetries:   5,
		RetryBackoff: time.Millisecond,
		Logger:       quietLogger(),
	})

	var resp struct {
		Result int `json:"result"`
	}
	err := client.Call(context.Background(), "getSlot", nil, &resp)
	require.NoError(t, err)
	assert.Equal(t, 42, resp.Result)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCall_MaxRetriesExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:      srv.URL,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		Logger:       quietLogger(),
	})

	var resp struct{}
	err := client.Call(context.Background(), "getSlot", nil, &resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Contains(t, err.Error(), "429")
}

func TestCall_ContextCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:      srv.URL,
		MaxRetries:   10,
		RetryBackoff: time.Hour, // never finishes a backoff
		Logger:       quietLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var resp struct{}
	err := client.Call(ctx, "getSlot", nil, &resp)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
