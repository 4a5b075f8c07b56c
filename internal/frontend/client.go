package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evanhutnik/scout-service/internal/common"
	t "github.com/evanhutnik/scout-service/internal/types"
)

const generatePath = "/api/generate_coordinates"

type ClientOption func(*Client)

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = strings.TrimRight(baseUrl, "/")
	}
}

func HttpClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// Client talks to the coordinates API. Requests are sent once; nothing is retried.
type Client struct {
	baseUrl string
	hc      *http.Client
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		hc: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseUrl == "" {
		panic("Missing baseUrl in scout api client")
	}
	return c
}

// GenerateCoordinates posts url and decodes the coordinate list. A non-2xx
// response becomes an error carrying the service's detail message.
func (c *Client) GenerateCoordinates(ctx context.Context, url string) (*t.CoordinateResponse, error) {
	resp, err := common.PostJSON(ctx, c.hc, c.baseUrl+generatePath, t.URLRequest{Url: url}, "scout")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading scout response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp t.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Detail != "" {
			return nil, &APIError{Status: resp.StatusCode, Detail: errResp.Detail}
		}
		return nil, &APIError{Status: resp.StatusCode}
	}

	var respObj t.CoordinateResponse
	if err := json.Unmarshal(body, &respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling response from scout: %w", err)
	}
	return &respObj, nil
}

type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("error code %d returned from scout", e.Status)
}
