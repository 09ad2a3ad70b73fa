package sentinel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Comment is the Sentinel incident comment object as returned by the API.
type Comment map[string]interface{}

// AddComment creates a comment on an incident under a freshly generated
// comment ID.
func (c *Client) AddComment(ctx context.Context, incidentID, message string) (Comment, error) {
	if incidentID == "" {
		return nil, errors.New("no incident id provided")
	}

	commentID := uuid.New().String()
	commentURL := fmt.Sprintf("%s/%s/comments/%s", c.incidentsURL(), incidentID, commentID)

	payload := map[string]interface{}{
		"properties": map[string]interface{}{
			"message": message,
		},
	}

	query := url.Values{}
	query.Set("api-version", apiVersionIncidents)

	c.logger.WithField("url", commentURL).WithField("comment_id", commentID).
		Info("adding incident comment")

	status, respBytes, err := c.do(ctx, http.MethodPut, commentURL, query, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: string(respBytes)}
	}

	var created Comment
	if err := json.Unmarshal(respBytes, &created); err != nil {
		return nil, fmt.Errorf("could not decode comment response: %v", err)
	}

	return created, nil
}
