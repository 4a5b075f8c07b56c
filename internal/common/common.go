package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultRetries = 3

// GetWithRetry issues req up to three times until a 2xx response arrives.
// The caller owns the returned body.
func GetWithRetry(client *http.Client, req *http.Request, name string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var resp *http.Response
	var err error

	validResp, retries := false, defaultRetries
	for !validResp {
		resp, err = client.Do(req)
		if err != nil {
			if retries > 1 && req.Context().Err() == nil {
				retries--
				continue
			}
			return nil, fmt.Errorf("error on %v api request: %w", name, err)
		} else if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			if retries > 1 {
				retries--
				continue
			}
			return nil, &StatusError{Name: name, Code: resp.StatusCode}
		} else {
			validResp = true
		}
	}
	return resp, nil
}

// Get issues req once. A non-2xx response is closed and reported as a
// *StatusError; the caller owns the body of a 2xx response.
func Get(client *http.Client, req *http.Request, name string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error on %v api request: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Name: name, Code: resp.StatusCode}
	}
	return resp, nil
}

// PostJSON marshals body and sends it once. Non-2xx responses are returned
// to the caller untouched so it can read an error payload.
func PostJSON(ctx context.Context, client *http.Client, url string, body interface{}, name string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshalling %v request body: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build %v request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error on %v api request: %w", name, err)
	}
	return resp, nil
}

type StatusError struct {
	Name string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error code %v returned from %v", e.Code, e.Name)
}
