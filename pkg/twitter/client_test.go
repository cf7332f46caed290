package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uranus/pkg/config"
	"uranus/pkg/errors"
	"uranus/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewTestLogger()
	client, err := NewClient(&config.APIConfig{
		BaseURL:     server.URL,
		BearerToken: "secret",
		Timeout:     5 * time.Second,
		UserAgent:   "uranus-test",
	}, log)
	require.NoError(t, err)
	return client, log
}

func TestNewClientRejectsEmptyToken(t *testing.T) {
	for _, token := range []string{"", "   \t"} {
		_, err := NewClient(&config.APIConfig{BearerToken: token}, logger.NewNopLogger())
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))
		assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(&config.APIConfig{BearerToken: "t"}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestGetSendsBearerToken(t *testing.T) {
	var gotAuth, gotAgent string
	client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("x-rate-limit-remaining", "7")
		w.Write([]byte(`{"data":{"id":"42","username":"alice"}}`))
	})

	resp, err := client.Get(context.Background(), client.BaseURL()+"/users/by/username/alice")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "uranus-test", gotAgent)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7", resp.Header.Get("x-rate-limit-remaining"))
	assert.NotEmpty(t, log.GetMessagesByLevel("TRACE"))
}

func TestGetStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantType errors.ErrorType
		fatal    bool
	}{
		{http.StatusUnauthorized, errors.ErrorTypeAuth, true},
		{http.StatusForbidden, errors.ErrorTypeAuth, true},
		{http.StatusNotFound, errors.ErrorTypeNotFound, false},
		{http.StatusTooManyRequests, errors.ErrorTypeAPI, false},
		{http.StatusBadGateway, errors.ErrorTypeAPI, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("x-rate-limit-remaining", "0")
				w.WriteHeader(tt.status)
			})

			resp, err := client.Get(context.Background(), client.BaseURL()+"/x")
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, "0", resp.Header.Get("x-rate-limit-remaining"))
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
			assert.Equal(t, tt.fatal, errors.IsFatal(err))
		})
	}
}

func TestGetTransportFailure(t *testing.T) {
	client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	client.SetHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, assert.AnError
	})})

	resp, err := client.Get(context.Background(), client.BaseURL()+"/x")
	assert.Nil(t, resp)
	assert.Equal(t, errors.ErrorTypeNetwork, errors.TypeOf(err))
	assert.False(t, errors.IsFatal(err))
	assert.True(t, log.HasError())
}

func TestGetEnvelopeMalformed(t *testing.T) {
	client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>nope</html>`))
	})

	env, resp, err := client.GetEnvelope(context.Background(), client.BaseURL()+"/x")
	assert.Nil(t, env)
	require.NotNil(t, resp)
	assert.Equal(t, errors.ErrorTypeParsing, errors.TypeOf(err))
	assert.True(t, log.HasMessage("Failed to parse API response"))
}

func TestLookupUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/by/username/alice":
			w.Write([]byte(`{"data":{"id":"42","name":"Alice","username":"alice"}}`))
		default:
			w.Write([]byte(`{"errors":[{"title":"Not Found Error","detail":"Could not find user with username: [ghost]."}]}`))
		}
	})

	user, _, err := client.LookupUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)

	_, _, err = client.LookupUser(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "Could not find user")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
