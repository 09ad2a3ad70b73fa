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

const (
	apiVersionIncidents = "2020-01-01"
	apiVersionEntities  = "2019-01-01-preview"
)

// Incident is the Sentinel incident object as returned by the API. It is
// kept opaque on purpose: enrichment injects extra keys and the caller
// receives the JSON unmodified otherwise.
type Incident map[string]interface{}

// ResourceID returns the full Azure resource path of the incident.
func (i Incident) ResourceID() string {
	id, _ := i["id"].(string)
	return id
}

// EnrichOptions selects the secondary lookups attached to each incident.
type EnrichOptions struct {
	WithEntities bool
	WithComments bool
}

type ListOptions struct {
	// Status is a comma separated list of incident statuses, e.g. "New, Active".
	Status string
	// LastModified is a UTC lower bound on lastModifiedTimeUtc, without the
	// trailing Z.
	LastModified string

	EnrichOptions
}

// buildIncidentFilter assembles the OData $filter expression. The
// lastModifiedTimeUtc clause is appended to the status clause when both are
// given, and stands alone otherwise.
func buildIncidentFilter(status, lastModified string) string {
	var filter string

	if status != "" {
		statusFilters := make([]string, 0)
		for _, s := range strings.Split(status, ",") {
			statusFilters = append(statusFilters, fmt.Sprintf("properties/status eq '%s'", strings.TrimSpace(s)))
		}

		filter = fmt.Sprintf("( %s )", strings.Join(statusFilters, " or "))
	}

	if lastModified != "" {
		modifiedFilter := fmt.Sprintf("(properties/lastModifiedTimeUtc ge %sZ)", lastModified)

		if filter != "" {
			filter = filter + " and " + modifiedFilter
		} else {
			filter = modifiedFilter
		}
	}

	return filter
}

// ListIncidents fetches the incidents of the workspace, optionally filtered
// by status and last modification time and optionally enriched with
// entities and comments. Enrichment is sequential per incident.
func (c *Client) ListIncidents(ctx context.Context, opts ListOptions) ([]Incident, error) {
	query := url.Values{}
	query.Set("api-version", apiVersionIncidents)

	if filter := buildIncidentFilter(opts.Status, opts.LastModified); filter != "" {
		c.logger.WithField("filter", filter).Debug("adding incident query filter")
		query.Set("$filter", filter)
	}

	incidentsURL := c.incidentsURL()
	c.logger.WithField("url", incidentsURL).Info("fetching incidents")

	status, respBytes, err := c.do(ctx, http.MethodGet, incidentsURL, query, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: string(respBytes)}
	}

	var response struct {
		Value []Incident `json:"value"`
	}
	if err := json.Unmarshal(respBytes, &response); err != nil {
		return nil, fmt.Errorf("could not decode incidents response: %v", err)
	}

	incidents := response.Value

	if opts.WithEntities {
		for _, incident := range incidents {
			entities, err := c.extractEntities(ctx, incident.ResourceID())
			if err != nil {
				return nil, err
			}

			incident["entities"] = entities
		}
	}

	if opts.WithComments {
		for _, incident := range incidents {
			comments, err := c.extractComments(ctx, incident.ResourceID())
			if err != nil {
				return nil, err
			}

			incident["comments"] = comments
		}
	}

	return incidents, nil
}

// GetIncident fetches a single incident by ID, optionally enriched with
// entities and comments.
func (c *Client) GetIncident(ctx context.Context, incidentID string, opts EnrichOptions) (Incident, error) {
	if incidentID == "" {
		return nil, errors.New("no incident id provided")
	}

	query := url.Values{}
	query.Set("api-version", apiVersionIncidents)

	incidentURL := c.incidentsURL() + "/" + incidentID
	c.logger.WithField("url", incidentURL).Debug("fetching incident")

	status, respBytes, err := c.do(ctx, http.MethodGet, incidentURL, query, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: string(respBytes)}
	}

	var incident Incident
	if err := json.Unmarshal(respBytes, &incident); err != nil {
		return nil, fmt.Errorf("could not decode incident response: %v", err)
	}

	if opts.WithEntities {
		entities, err := c.extractEntities(ctx, incident.ResourceID())
		if err != nil {
			return nil, err
		}

		incident["entities"] = entities
	}

	if opts.WithComments {
		comments, err := c.extractComments(ctx, incident.ResourceID())
		if err != nil {
			return nil, err
		}

		incident["comments"] = comments
	}

	return incident, nil
}

// extractEntities expands the entities of an incident via its resource path.
// The entities expansion only exists under the preview api version.
func (c *Client) extractEntities(ctx context.Context, incidentURI string) ([]interface{}, error) {
	query := url.Values{}
	query.Set("api-version", apiVersionEntities)

	entitiesURL := c.managementURL + incidentURI + "/entities"
	c.logger.WithField("url", entitiesURL).Debug("fetching incident entities")

	status, respBytes, err := c.do(ctx, http.MethodPost, entitiesURL, query, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		c.logger.WithField("status", status).WithField("incident", incidentURI).
			Error("failed to get entities")
		return nil, &APIError{StatusCode: status, Body: string(respBytes)}
	}

	var response struct {
		Entities []interface{} `json:"entities"`
	}
	if err := json.Unmarshal(respBytes, &response); err != nil {
		return nil, fmt.Errorf("could not decode entities response: %v", err)
	}

	return response.Entities, nil
}

func (c *Client) extractComments(ctx context.Context, incidentURI string) ([]interface{}, error) {
	query := url.Values{}
	query.Set("api-version", apiVersionIncidents)

	commentsURL := c.managementURL + incidentURI + "/comments"
	c.logger.WithField("url", commentsURL).Debug("fetching incident comments")

	status, respBytes, err := c.do(ctx, http.MethodGet, commentsURL, query, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		c.logger.WithField("status", status).WithField("incident", incidentURI).
			Error("failed to get comments")
		return nil, &APIError{StatusCode: status, Body: string(respBytes)}
	}

	var response struct {
		Value []interface{} `json:"value"`
	}
	if err := json.Unmarshal(respBytes, &response); err != nil {
		return nil, fmt.Errorf("could not decode comments response: %v", err)
	}

	return response.Value, nil
}
