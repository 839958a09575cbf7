package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
)

func newTokenServer(t *testing.T, status int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","expires_in":3600}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientCredentials_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.AuthConfig
	}{
		{"missing token url", domain.AuthConfig{ClientID: "id"}},
		{"missing client id", domain.AuthConfig{TokenURL: "https://idp.example.com/token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClientCredentials(tt.cfg, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestClientCredentials_GetToken_CachesToken(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenServer(t, http.StatusOK, &calls)

	provider, err := NewClientCredentials(domain.AuthConfig{
		TokenURL: srv.URL,
		ClientID: "client-1",
		Scopes:   []string{"https://cdr.example.com/.default"},
	}, srv.Client())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		token, err := provider.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "abc", token)
	}
	assert.Equal(t, int32(1), calls.Load(), "token should be fetched once and reused")
}

func TestClientCredentials_GetToken_Failure(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenServer(t, http.StatusUnauthorized, &calls)

	provider, err := NewClientCredentials(domain.AuthConfig{TokenURL: srv.URL, ClientID: "client-1"}, srv.Client())
	require.NoError(t, err)

	_, err = provider.GetToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenUnavailable))

	_, err = provider.GetToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load(), "a failed fetch must not be cached")
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken("123").GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123", token)

	_, err = StaticToken("").GetToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrTokenUnavailable)
}
