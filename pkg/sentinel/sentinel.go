package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultLoginURL      = "https://login.microsoftonline.com"
	defaultManagementURL = "https://management.azure.com"

	defaultTimeout = time.Minute
)

type Credentials struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
	ResourceGroup  string
	WorkspaceName  string
}

// Client talks to the Azure AD token endpoint and the Sentinel REST API on
// behalf of one action invocation. It is not safe for concurrent use.
type Client struct {
	logger *logrus.Logger
	creds  Credentials

	httpClient *http.Client

	loginURL      string
	managementURL string

	cacheToken   bool
	token        string
	tokenBody    string
	tokenExpires time.Time
}

func New(l *logrus.Logger, creds Credentials) (*Client, error) {
	if creds.TenantID == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errors.New("no tenant id, client id or client secret provided")
	}

	client := Client{
		logger:        l,
		creds:         creds,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		loginURL:      defaultLoginURL,
		managementURL: defaultManagementURL,
	}

	return &client, nil
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetEndpoints overrides the Azure AD and management endpoints, for
// sovereign cloud deployments. Empty values keep the defaults.
func (c *Client) SetEndpoints(loginURL, managementURL string) {
	if loginURL != "" {
		c.loginURL = strings.TrimSuffix(loginURL, "/")
	}

	if managementURL != "" {
		c.managementURL = strings.TrimSuffix(managementURL, "/")
	}
}

// EnableTokenCache makes Authenticate reuse a bearer token until it
// expires instead of requesting a new one on every call.
func (c *Client) EnableTokenCache() {
	c.cacheToken = true
}

func (c *Client) incidentsURL() string {
	return fmt.Sprintf("%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.OperationalInsights/workspaces/%s/providers/Microsoft.SecurityInsights/incidents",
		c.managementURL, c.creds.SubscriptionID, c.creds.ResourceGroup, c.creds.WorkspaceName)
}

// do issues one authenticated request and hands back the status code and
// raw body. Status handling is up to the caller since the raw body of a
// failed call is part of the action result.
func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("could not encode body: %v", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("could not create http request: %v", err)
	}

	httpRequest.URL.RawQuery = query.Encode()

	httpRequest.Header.Set("accept", "application/json")
	httpRequest.Header.Set("cache-control", "no-cache")
	httpRequest.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		httpRequest.Header.Set("content-type", "application/json")
	}

	if c.logger.IsLevelEnabled(logrus.TraceLevel) {
		reqBytes, err := httputil.DumpRequestOut(httpRequest, true)
		if err != nil {
			c.logger.WithError(err).Warn("could not dump http request")
		}

		c.logger.Trace(string(reqBytes))
	}

	resp, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return 0, nil, fmt.Errorf("could not request: %v", err)
	}

	respBytes, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return 0, nil, fmt.Errorf("could not read response: %v", err)
	}

	return resp.StatusCode, respBytes, nil
}
