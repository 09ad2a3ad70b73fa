package sentinel

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	var paths []string

	server := newAuthedServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "2020-01-01", r.URL.Query().Get("api-version"))

		var payload struct {
			Properties map[string]interface{} `json:"properties"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "needs triage", payload.Properties["message"])

		paths = append(paths, r.URL.Path)

		_, _ = w.Write([]byte(`{"name": "comment", "properties": {"message": "needs triage"}}`))
	})
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.Authenticate(context.Background())
	require.NoError(t, err)

	created, err := client.AddComment(context.Background(), "inc-1", "needs triage")
	require.NoError(t, err)
	assert.Equal(t, "comment", created["name"])

	_, err = client.AddComment(context.Background(), "inc-1", "needs triage")
	require.NoError(t, err)

	require.Len(t, paths, 2)

	prefix := testIncidentsPath + "/inc-1/comments/"
	ids := make([]string, 0, len(paths))

	for _, path := range paths {
		require.True(t, strings.HasPrefix(path, prefix))

		id := strings.TrimPrefix(path, prefix)
		_, err := uuid.Parse(id)
		require.NoError(t, err)

		ids = append(ids, id)
	}

	assert.NotEqual(t, ids[0], ids[1])
}

func TestAddComment_EmptyIncidentID(t *testing.T) {
	client := testClient(t, "")

	_, err := client.AddComment(context.Background(), "", "hello")
	require.Error(t, err)
}

func TestAddComment_UpstreamError(t *testing.T) {
	server := newAuthedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": "AuthorizationFailed"}}`))
	})
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.Authenticate(context.Background())
	require.NoError(t, err)

	_, err = client.AddComment(context.Background(), "inc-1", "hello")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
