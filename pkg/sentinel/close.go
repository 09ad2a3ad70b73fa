package sentinel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CloseReason is Sentinel's closure taxonomy: a classification and an
// optional classification reason.
type CloseReason struct {
	Classification string
	Reason         string
}

// ParseCloseReason splits a composite "classification[-reason]" value, e.g.
// "FalsePositive-InaccurateData". Segments are space trimmed. Without a
// hyphen only the classification is set.
func ParseCloseReason(raw string) (CloseReason, error) {
	parts := strings.Split(raw, "-")

	classification := strings.TrimSpace(parts[0])
	if classification == "" {
		return CloseReason{}, errors.New("no close classification provided")
	}

	reason := CloseReason{Classification: classification}
	if len(parts) > 1 {
		reason.Reason = strings.TrimSpace(parts[1])
	}

	return reason, nil
}

// CloseIncident fetches the incident, then updates it to Closed while
// preserving its title and severity. The fetched etag rides along so the
// API can reject concurrent updates.
func (c *Client) CloseIncident(ctx context.Context, incidentID string, reason CloseReason, comment string) (Incident, error) {
	incident, err := c.GetIncident(ctx, incidentID, EnrichOptions{})
	if err != nil {
		return nil, err
	}

	properties, _ := incident["properties"].(map[string]interface{})
	if properties == nil {
		return nil, fmt.Errorf("incident %s has no properties", incidentID)
	}

	closeProperties := map[string]interface{}{
		"title":                 properties["title"],
		"status":                "Closed",
		"severity":              properties["severity"],
		"classification":        reason.Classification,
		"classificationComment": comment,
	}

	if reason.Reason != "" {
		closeProperties["classificationReason"] = reason.Reason
	}

	etag, _ := incident["etag"].(string)

	payload := map[string]interface{}{
		"etag":       strings.Trim(etag, `"`),
		"properties": closeProperties,
	}

	query := url.Values{}
	query.Set("api-version", apiVersionIncidents)

	incidentURL := c.incidentsURL() + "/" + incidentID
	c.logger.WithField("url", incidentURL).WithField("classification", reason.Classification).
		Info("closing incident")

	status, respBytes, err := c.do(ctx, http.MethodPut, incidentURL, query, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: string(respBytes)}
	}

	var updated Incident
	if err := json.Unmarshal(respBytes, &updated); err != nil {
		return nil, fmt.Errorf("could not decode incident response: %v", err)
	}

	return updated, nil
}
