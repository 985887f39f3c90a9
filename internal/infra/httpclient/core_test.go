package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompletionClient_Complete(t *testing.T) {
	var got CompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/complete", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"# Plan","usage":{"total_tokens":42},"cost":"0.0012"}`))
	}))
	defer srv.Close()

	c := NewCompletionClient(srv.URL+"/", "k", 5*time.Second, zap.NewNop())
	resp, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p", Model: "m", Temperature: 0.5, MaxTokens: 100})
	require.NoError(t, err)

	assert.Equal(t, CompletionRequest{Prompt: "p", Model: "m", Temperature: 0.5, MaxTokens: 100}, got)
	assert.Equal(t, "# Plan", resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
	require.NotNil(t, resp.Cost)
	assert.Equal(t, "0.0012", *resp.Cost)
}

func TestCompletionClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"content":`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewCompletionClient(srv.URL, "", time.Second, zap.NewNop())
			_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})
			require.Error(t, err)

			var se *StatusError
			if tt.wantStatus != 0 {
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStatus, se.StatusCode)
			} else {
				assert.False(t, errors.As(err, &se))
			}
		})
	}
}

func TestCompletionClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewCompletionClient(srv.URL, "", 50*time.Millisecond, zap.NewNop())
	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	assert.Error(t, err)
}

func TestCompletionClient_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":"` + strings.Repeat("x", 256) + `"}`))
	}))
	defer srv.Close()

	c := NewCompletionClient(srv.URL, "", time.Second, zap.NewNop())
	c.MaxResponseBytes = 64
	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseTooLarge)

	c.MaxResponseBytes = 0
	resp, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Len(t, resp.Content, 256)
}
