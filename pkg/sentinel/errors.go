package sentinel

import "fmt"

// AuthError is a non-200 from the Azure AD token endpoint. Body holds the
// raw response text, which the action result passes through verbatim.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed with status %d: %s", e.StatusCode, e.Body)
}

// APIError is a non-200 from the Sentinel REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sentinel api returned status %d: %s", e.StatusCode, e.Body)
}
