package photoprism

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned when PhotoPrism answers with an unexpected status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Body)
}

// IsNotFoundError returns true if the error indicates a 404 Not Found response.
func IsNotFoundError(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsAuthError returns true if PhotoPrism refused the credentials or the session.
func IsAuthError(err error) bool {
	return hasStatus(err, http.StatusUnauthorized, http.StatusForbidden)
}

func hasStatus(err error, codes ...int) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.Code == c {
			return true
		}
	}
	return false
}

// doGet performs an authenticated GET request and returns the response body.
// The endpoint should be the path after the base API URL (e.g., "photos/123").
func doGet(ctx context.Context, pp *PhotoPrism, endpoint string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pp.resolveURL(endpoint), nil)
	if err != nil {
		return nil, "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+pp.token)

	resp, err := pp.httpClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	if err != nil {
		return nil, "", fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{Code: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("could not read response body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// doGetJSON performs a GET request and unmarshals the JSON response into the result type.
func doGetJSON[T any](ctx context.Context, pp *PhotoPrism, endpoint string) (*T, error) {
	body, _, err := doGet(ctx, pp, endpoint)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}
