package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/hazcod/sentinel-actions/pkg/sentinel"
	"github.com/sirupsen/logrus"
)

// failFrom maps a client error onto the failure taxonomy. Raw upstream
// bodies are passed through verbatim.
func failFrom(err error) Result {
	var authErr *sentinel.AuthError
	if errors.As(err, &authErr) {
		return Fail(KindAuth, authErr.Body)
	}

	var apiErr *sentinel.APIError
	if errors.As(err, &apiErr) {
		return Fail(KindAPI, apiErr.Body)
	}

	return Fail(KindAPI, err.Error())
}

// authPayload is the documented result shape of the authenticate action,
// which reports the raw token endpoint body under a "message" key.
func authPayload(ok bool, message string) string {
	return fmt.Sprintf(`{"success": %t, "message": %s}`, ok, strconv.Quote(message))
}

// okWithSuccess injects the "success": true flag into a result object
// before serializing it.
func okWithSuccess(payload map[string]interface{}) Result {
	payload["success"] = true

	encoded, err := json.Marshal(payload)
	if err != nil {
		return Failf(KindAPI, "could not encode result: %v", err)
	}

	return Ok(string(encoded))
}

// Authenticate verifies the credentials by performing a token grant. A
// rejected grant is still a well-formed action result, not a failure.
func Authenticate(ctx context.Context, l *logrus.Logger, params Params) Result {
	client, err := newClient(l, params)
	if err != nil {
		return Fail(KindInput, err.Error())
	}

	raw, err := client.Authenticate(ctx)
	if err != nil {
		var authErr *sentinel.AuthError
		if errors.As(err, &authErr) {
			return Ok(authPayload(false, authErr.Body))
		}

		return Fail(KindAuth, err.Error())
	}

	return Ok(authPayload(true, raw))
}

// ListIncidents returns the workspace incidents as a JSON array, filtered
// by status and last modification time and optionally enriched.
func ListIncidents(ctx context.Context, l *logrus.Logger, params Params) Result {
	client, err := newClient(l, params)
	if err != nil {
		return Fail(KindInput, err.Error())
	}

	if _, err := client.Authenticate(ctx); err != nil {
		return failFrom(err)
	}

	incidents, err := client.ListIncidents(ctx, sentinel.ListOptions{
		Status:       params.Get("status"),
		LastModified: params.Get("last_modified"),
		EnrichOptions: sentinel.EnrichOptions{
			WithEntities: params.Bool("get_entities"),
			WithComments: params.Bool("get_comments"),
		},
	})
	if err != nil {
		return failFrom(err)
	}

	encoded, err := json.Marshal(incidents)
	if err != nil {
		return Failf(KindAPI, "could not encode incidents: %v", err)
	}

	return Ok(string(encoded))
}

// GetIncident returns a single incident as JSON, optionally enriched.
func GetIncident(ctx context.Context, l *logrus.Logger, params Params) Result {
	incidentID := params.Get("incident_id")
	if incidentID == "" {
		return Fail(KindInput, "No incident ID supplied")
	}

	client, err := newClient(l, params)
	if err != nil {
		return Fail(KindInput, err.Error())
	}

	if _, err := client.Authenticate(ctx); err != nil {
		return failFrom(err)
	}

	incident, err := client.GetIncident(ctx, incidentID, sentinel.EnrichOptions{
		WithEntities: params.Bool("get_entities"),
		WithComments: params.Bool("get_comments"),
	})
	if err != nil {
		return failFrom(err)
	}

	encoded, err := json.Marshal(incident)
	if err != nil {
		return Failf(KindAPI, "could not encode incident: %v", err)
	}

	return Ok(string(encoded))
}

// CloseIncident resolves an incident with a classification parsed from the
// composite close_reason parameter, and returns the updated incident.
func CloseIncident(ctx context.Context, l *logrus.Logger, params Params) Result {
	incidentID := params.Get("incident_id")
	if incidentID == "" {
		return Fail(KindInput, "No incident ID supplied")
	}

	reason, err := sentinel.ParseCloseReason(params.Get("close_reason"))
	if err != nil {
		return Fail(KindInput, err.Error())
	}

	client, err := newClient(l, params)
	if err != nil {
		return Fail(KindInput, err.Error())
	}

	if _, err := client.Authenticate(ctx); err != nil {
		return failFrom(err)
	}

	updated, err := client.CloseIncident(ctx, incidentID, reason, params.Get("close_comment"))
	if err != nil {
		return failFrom(err)
	}

	return okWithSuccess(map[string]interface{}(updated))
}

// AddComment creates a comment on an incident and returns the created
// comment object.
func AddComment(ctx context.Context, l *logrus.Logger, params Params) Result {
	incidentID := params.Get("incident_id")
	if incidentID == "" {
		return Fail(KindInput, "No incident ID supplied")
	}

	client, err := newClient(l, params)
	if err != nil {
		return Fail(KindInput, err.Error())
	}

	if _, err := client.Authenticate(ctx); err != nil {
		return failFrom(err)
	}

	created, err := client.AddComment(ctx, incidentID, params.Get("comment"))
	if err != nil {
		return failFrom(err)
	}

	return okWithSuccess(map[string]interface{}(created))
}
