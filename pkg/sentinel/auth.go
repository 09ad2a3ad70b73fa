package sentinel

import (
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

// renew the cached token before it actually expires
const tokenExpiryMargin = time.Minute * 5

// Authenticate performs a client credentials grant against the Azure AD
// v2.0 token endpoint and installs the bearer token on the client for the
// rest of the invocation. It returns the raw token endpoint response body.
// A non-200 response surfaces as *AuthError.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.cacheToken && c.token != "" && time.Now().Before(c.tokenExpires) {
		c.logger.Debug("reusing cached bearer token")
		return c.tokenBody, nil
	}

	authURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginURL, c.creds.TenantID)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)
	form.Set("scope", c.managementURL+"/.default")

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("could not create token request: %v", err)
	}

	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpRequest.Header.Set("cache-control", "no-cache")

	c.logger.WithField("url", authURL).Debug("requesting bearer token")

	if c.logger.IsLevelEnabled(logrus.TraceLevel) {
		// never dump the body, it holds the client secret
		reqBytes, err := httputil.DumpRequestOut(httpRequest, false)
		if err != nil {
			c.logger.WithError(err).Warn("could not dump http request")
		}

		c.logger.Trace(string(reqBytes))
	}

	resp, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return "", fmt.Errorf("could not request token: %v", err)
	}

	respBytes, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("could not read token response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Error("authentication error has occurred")
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(respBytes)}
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(respBytes, &tokenResponse); err != nil {
		return "", fmt.Errorf("could not decode token response: %v", err)
	}

	if tokenResponse.AccessToken == "" {
		return "", errors.New("token response contained no access token")
	}

	c.token = tokenResponse.AccessToken
	c.tokenBody = string(respBytes)

	if c.cacheToken && tokenResponse.ExpiresIn > 0 {
		c.tokenExpires = time.Now().Add(time.Duration(tokenResponse.ExpiresIn)*time.Second - tokenExpiryMargin)
	}

	return c.tokenBody, nil
}
