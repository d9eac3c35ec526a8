package typefully

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       bool
	}{
		{name: "ok", statusCode: http.StatusOK, want: true},
		{name: "no content", statusCode: http.StatusNoContent, want: true},
		{name: "unauthorized", statusCode: http.StatusUnauthorized, want: false},
		{name: "server error", statusCode: http.StatusInternalServerError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/notifications/", r.URL.Path)
				require.Equal(t, "Bearer secret-key", r.Header.Get("X-API-KEY"))
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			valid, err := client.ValidateKey(context.Background(), "secret-key")
			require.NoError(t, err)
			require.Equal(t, tt.want, valid)
		})
	}
}

func TestCreateDraft(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/drafts/", r.URL.Path)
		require.Equal(t, "Bearer secret-key", r.Header.Get("X-API-KEY"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CreateDraft(context.Background(), "secret-key", "my draft text")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"content": "my draft text"}, gotBody)
}

func TestCreateDraftNonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CreateDraft(context.Background(), "bad-key", "my draft text")
	require.Error(t, err)
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	client := NewClient("")
	require.Equal(t, DefaultBaseURL, client.baseURL)

	client = NewClient("https://example.com/v1")
	require.Equal(t, "https://example.com/v1/", client.baseURL)
}
