// Package youtube finds educational videos for a topic via the YouTube Data
// API v3 search endpoint.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const searchURL = "https://www.googleapis.com/youtube/v3/search"

// maxResults matches what the frontend tutorial page renders.
const maxResults = 15

// Video is one search hit, trimmed to what the frontend needs.
type Video struct {
	Title        string `json:"title"`
	VideoID      string `json:"videoId"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

// Client calls the YouTube Data API. The zero key is detected at call time
// so the rest of the app can start without it.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client keyed by YOUTUBE_API_KEY.
func NewClient() *Client {
	return &Client{
		apiKey:     os.Getenv("YOUTUBE_API_KEY"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// searchResponse mirrors the subset of the API response we read.
type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SearchEducational searches for embeddable videos on the query, biased
// toward educational content by suffixing the query.
func (c *Client) SearchEducational(ctx context.Context, query string) ([]Video, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY environment variable not set")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("q", query+" educational")
	params.Set("type", "video")
	params.Set("videoEmbeddable", "true")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build YouTube search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("YouTube search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read YouTube response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode YouTube response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("YouTube API error: %s", msg)
	}

	videos := make([]Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, Video{
			Title:        item.Snippet.Title,
			VideoID:      item.ID.VideoID,
			Thumbnail:    item.Snippet.Thumbnails.High.URL,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}
