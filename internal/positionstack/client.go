package positionstack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/evanhutnik/scout-service/internal/common"
	t "github.com/evanhutnik/scout-service/internal/types"
	"golang.org/x/time/rate"
)

type ClientOption func(*Client)

func ApiKeyOption(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

func HttpClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// RateLimitOption caps outgoing requests per second. Zero disables the limit.
func RateLimitOption(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type Client struct {
	apiKey  string
	baseUrl string
	hc      *http.Client
	limiter *rate.Limiter
}

func New(opts ...ClientOption) *Client {
	c := &Client{
		hc: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		panic("Missing apikey in positionStack client")
	}
	if c.baseUrl == "" {
		panic("Missing baseUrl in positionStack client")
	}
	return c
}

// GeoCode returns the best match for location, or nil when positionstack has none.
func (c *Client) GeoCode(ctx context.Context, location string) (*t.GeoResult, error) {
	req, err := url.Parse(fmt.Sprintf("%v/forward", c.baseUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse positionstack baseUrl %s: %w", c.baseUrl, err)
	}

	q := req.Query()
	q.Add("access_key", c.apiKey)
	q.Add("query", location)
	q.Add("limit", "1")
	req.RawQuery = q.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("positionstack rate limiter: %w", err)
		}
	}

	ctxReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build positionstack request: %w", err)
	}
	resp, err := common.GetWithRetry(c.hc, ctxReq, "positionstack")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading positionstack response body: %w", err)
	}

	var respObj t.PSForwardResponse
	if err = json.Unmarshal(body, &respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling response from positionstack: %w", err)
	} else if len(respObj.Data) == 0 {
		return nil, nil
	}

	// no matches come back as "data": [[]]
	var hit t.PSLocation
	if err = json.Unmarshal(respObj.Data[0], &hit); err != nil {
		return nil, nil
	}
	return &t.GeoResult{
		Latitude:  hit.Latitude,
		Longitude: hit.Longitude,
		Label:     hit.Label,
	}, nil
}
