package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evanhutnik/scout-service/internal/common"
	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0"

// maxBodyBytes bounds what gets read from an article before it is handed to the model.
const maxBodyBytes = 4 << 20

type ClientOption func(*Client)

func HttpClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

func TimeoutOption(d time.Duration) ClientOption {
	return func(c *Client) {
		c.hc.Timeout = d
	}
}

type Client struct {
	hc *http.Client
}

func New(opts ...ClientOption) *Client {
	c := &Client{
		hc: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the article at rawUrl and returns its readable text.
func (c *Client) Fetch(ctx context.Context, rawUrl string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawUrl, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawUrl, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := common.Get(c.hc, req, "article")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error reading article body: %w", err)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return string(body), nil
	}
	return Text(string(body))
}

// Text strips markup from an HTML document, dropping script, style and
// other non-content elements, and returns one line per text run.
func Text(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("error parsing article html: %w", err)
	}

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "svg", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				lines = append(lines, s)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return strings.Join(lines, "\n"), nil
}
