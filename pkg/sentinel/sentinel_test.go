package sentinel

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIncidentsPath = "/subscriptions/sub/resourceGroups/rg/providers/Microsoft.OperationalInsights/workspaces/ws/providers/Microsoft.SecurityInsights/incidents"

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	client, err := New(logger, Credentials{
		TenantID:       "tenant",
		ClientID:       "client",
		ClientSecret:   "secret",
		SubscriptionID: "sub",
		ResourceGroup:  "rg",
		WorkspaceName:  "ws",
	})
	require.NoError(t, err)

	client.SetEndpoints(serverURL, serverURL)

	return client
}

// newAuthedServer serves the token endpoint and hands everything else to
// the given handler, asserting the bearer token rides along.
func newAuthedServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tenant/oauth2/v2.0/token" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token": "token-123", "expires_in": 3599}`))
			return
		}

		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "no-cache", r.Header.Get("cache-control"))

		handler(w, r)
	}))
}

func TestNew_MissingCredentials(t *testing.T) {
	logger := logrus.New()

	_, err := New(logger, Credentials{TenantID: "tenant", ClientID: "client"})
	require.Error(t, err)

	_, err = New(logger, Credentials{})
	require.Error(t, err)
}

func TestSetEndpoints(t *testing.T) {
	client := testClient(t, "")

	client.SetEndpoints("https://login.example.com/", "https://management.example.com/")
	assert.Equal(t, "https://login.example.com", client.loginURL)
	assert.Equal(t, "https://management.example.com", client.managementURL)

	client.SetEndpoints("", "")
	assert.Equal(t, "https://login.example.com", client.loginURL)
	assert.Equal(t, "https://management.example.com", client.managementURL)
}
