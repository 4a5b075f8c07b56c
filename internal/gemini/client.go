package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

const promptTemplate = "The article discusses various topics such as tourist attractions, restaurants, nature spots, " +
	"or other points of interest in terms of 'the best of ...'.\n" +
	"Your task is to identify mentioned objects and provide a clear numbered list. " +
	"I don't want from you to analyze the article and its strengths etc. Just identify and provide the objects.\n" +
	"Additional guidelines:\n" +
	"- Each item should include the full location context (city, country)\n" +
	"- Format: Name, City, Country\n" +
	"- Do not include any additional information or commentary.\n" +
	"Example:\n" +
	"Article: 'Top 10 Restaurants in Warsaw'\n" +
	"Output:\n" +
	"1. Restaurant A, Warsaw, Poland\n" +
	"2. Restaurant B, Warsaw, Poland\n" +
	"...\n\n" +
	"Article to use:\n%s"

var numberedLine = regexp.MustCompile(`\d+\.\s+(.+)`)

type generateFunc func(ctx context.Context, prompt string) (string, error)

type ClientOption func(*Client)

func ApiKeyOption(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func ModelOption(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// Client turns article text into a list of "Name, City, Country" places.
type Client struct {
	apiKey   string
	model    string
	generate generateFunc
}

func New(ctx context.Context, opts ...ClientOption) (*Client, error) {
	c := &Client{model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	if c.generate != nil {
		return c, nil
	}

	if c.apiKey == "" {
		return nil, errors.New("genai_apikey not found")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 500,
	}
	c.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := gc.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return c, nil
}

// Places asks the model for the places mentioned in article.
func (c *Client) Places(ctx context.Context, article string) ([]string, error) {
	text, err := c.generate(ctx, fmt.Sprintf(promptTemplate, article))
	if err != nil {
		return nil, fmt.Errorf("error generating content with %v: %w", c.model, err)
	}
	return ParseLocations(text), nil
}

// ParseLocations returns the item text of every numbered-list line in text.
func ParseLocations(text string) []string {
	matches := numberedLine.FindAllStringSubmatch(text, -1)
	locations := lo.Map(matches, func(m []string, _ int) string {
		return strings.TrimSpace(m[1])
	})
	return lo.Filter(locations, func(loc string, _ int) bool {
		return loc != ""
	})
}
