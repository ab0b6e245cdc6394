// Package gemini provides the Gemini-backed text generation strategies used
// by the question generator. Each connectivity strategy (direct, or via an
// HTTP proxy) gets its own client.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ModelName is the Gemini model to use.
const ModelName = "gemini-2.0-flash"

// callTimeout bounds a single model call, including streamed reassembly.
const callTimeout = 2 * time.Minute

// Strategy describes one way of reaching the Gemini API. An empty ProxyURL
// means a direct connection.
type Strategy struct {
	Name     string
	ProxyURL string
}

// StrategiesFromEnv builds the ordered strategy list: direct first, then one
// strategy per entry in GEMINI_PROXY_URLS (comma-separated).
func StrategiesFromEnv() []Strategy {
	strategies := []Strategy{{Name: "direct"}}
	raw := os.Getenv("GEMINI_PROXY_URLS")
	if raw == "" {
		return strategies
	}
	for i, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, err := url.Parse(entry); err != nil {
			log.Printf("WARN: skipping malformed proxy URL %q: %v", entry, err)
			continue
		}
		strategies = append(strategies, Strategy{
			Name:     fmt.Sprintf("proxy-%d", i+1),
			ProxyURL: entry,
		})
	}
	return strategies
}

// Client is one Gemini connectivity strategy. It satisfies the generator's
// TextGenerator interface.
type Client struct {
	name   string
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a Gemini client for the given strategy. The API key
// comes from GEMINI_API_KEY.
func NewClient(ctx context.Context, strategy Strategy) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if strategy.ProxyURL != "" {
		proxyURL, err := url.Parse(strategy.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL for strategy %s: %w", strategy.Name, err)
		}
		transport := &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		opts = append(opts, option.WithHTTPClient(&http.Client{Transport: transport}))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client (%s): %w", strategy.Name, err)
	}

	model := client.GenerativeModel(ModelName)
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)

	return &Client{
		name:   strategy.Name,
		client: client,
		model:  model,
	}, nil
}

// NewClients creates one client per strategy. Strategies whose client fails
// to construct are skipped with a warning; at least one must survive.
func NewClients(ctx context.Context, strategies []Strategy) ([]*Client, error) {
	var clients []*Client
	for _, s := range strategies {
		c, err := NewClient(ctx, s)
		if err != nil {
			log.Printf("WARN: skipping strategy %s: %v", s.Name, err)
			continue
		}
		clients = append(clients, c)
	}
	if len(clients) == 0 {
		return nil, errors.New("no usable Gemini connectivity strategy")
	}
	return clients, nil
}

// Name returns the strategy name.
func (c *Client) Name() string { return c.name }

// Close closes the underlying client.
func (c *Client) Close() {
	c.client.Close()
}

// GenerateText sends the prompt and reassembles the streamed response into
// one string. Up to 3 attempts per call; transient failures back off 2s.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = fmt.Errorf("attempt %d via %s: %w", attempt, c.name, err)
		log.Printf("WARN: %v", lastErr)
		if ctx.Err() != nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	stream := c.model.GenerateContentStream(ctx, genai.Text(prompt))

	var b strings.Builder
	for {
		resp, err := stream.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stream read failed: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					b.WriteString(string(text))
				}
			}
		}
	}
	if b.Len() == 0 {
		return "", errors.New("stream produced no text")
	}
	return b.String(), nil
}
