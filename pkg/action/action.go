// Package action exposes the Sentinel operations behind the flat
// call/response contract of the workflow engine: a named action, a mapping
// of string parameters in, a JSON text result out. Every invocation builds
// its own client and authenticates itself; no state survives between calls.
package action

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hazcod/sentinel-actions/pkg/sentinel"
	"github.com/sirupsen/logrus"
)

// Params is the flat parameter mapping handed over by the workflow engine.
// Anything not explicitly checked here is the caller's responsibility.
type Params map[string]string

// Get returns a space-trimmed parameter value.
func (p Params) Get(key string) string {
	return strings.TrimSpace(p[key])
}

// Bool reports whether a parameter is the string "true", case insensitive.
func (p Params) Bool(key string) bool {
	return strings.EqualFold(p.Get(key), "true")
}

func (p Params) credentials() sentinel.Credentials {
	return sentinel.Credentials{
		TenantID:       p.Get("tenant_id"),
		ClientID:       p.Get("client_id"),
		ClientSecret:   p.Get("client_secret"),
		SubscriptionID: p.Get("subscription_id"),
		ResourceGroup:  p.Get("resource_group_name"),
		WorkspaceName:  p.Get("workspace_name"),
	}
}

// Handler runs one action to completion.
type Handler func(ctx context.Context, l *logrus.Logger, params Params) Result

var registry = map[string]Handler{
	"authenticate":   Authenticate,
	"list_incidents": ListIncidents,
	"get_incident":   GetIncident,
	"close_incident": CloseIncident,
	"add_comment":    AddComment,
}

// Names returns the known action names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Run dispatches a named action and returns its JSON result. An unknown
// action name is a dispatch error, not an action failure.
func Run(ctx context.Context, l *logrus.Logger, name string, params Params) (string, error) {
	handler, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("unknown action '%s'", name)
	}

	l.WithField("action", name).Debug("running action")

	return handler(ctx, l, params).JSON(), nil
}

// newClient builds the per-invocation Sentinel client from the parameters.
func newClient(l *logrus.Logger, params Params) (*sentinel.Client, error) {
	client, err := sentinel.New(l, params.credentials())
	if err != nil {
		return nil, err
	}

	client.SetEndpoints(params.Get("login_uri"), params.Get("management_uri"))

	if seconds, err := strconv.Atoi(params.Get("timeout_seconds")); err == nil && seconds > 0 {
		client.SetTimeout(time.Duration(seconds) * time.Second)
	}

	if params.Bool("cache_token") {
		client.EnableTokenCache()
	}

	return client, nil
}
