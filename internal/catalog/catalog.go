// Package catalog discovers lecture video IDs from a course page. Course
// sites embed their recordings either as player metadata blobs or as
// YouTube iframes, so extraction combines a metadata scan with a DOM walk.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// videoIDPattern matches the player metadata form youtube_id:"<id>".
var videoIDPattern = regexp.MustCompile(`youtube_id:"([A-Za-z0-9_-]{11})"`)

// embedIDPattern pulls the 11-character ID out of a YouTube URL path.
var embedIDPattern = regexp.MustCompile(`(?:embed/|watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)

// Client fetches and parses course catalog pages.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option customizes a catalog client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with catalog requests.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(agent)
		if trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// NewClient constructs a catalog client with sane timeouts.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "lectern/1.0",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// FetchVideoIDs downloads the course page and returns the lecture video
// IDs in page order with duplicates removed.
func (c *Client) FetchVideoIDs(ctx context.Context, courseURL string) ([]string, error) {
	courseURL = strings.TrimSpace(courseURL)
	if courseURL == "" {
		return nil, errors.New("catalog: empty course url")
	}
	if _, err := url.ParseRequestURI(courseURL); err != nil {
		return nil, fmt.Errorf("catalog: invalid course url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, courseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch course page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: course page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: read course page: %w", err)
	}

	ids := ExtractVideoIDs(string(body))
	if len(ids) == 0 {
		return nil, errors.New("catalog: no lecture videos found on course page")
	}
	return ids, nil
}

// ExtractVideoIDs scans page HTML for lecture video IDs. Player metadata
// entries take precedence; embedded iframes and links fill in the rest.
func ExtractVideoIDs(html string) []string {
	seen := make(map[string]struct{})
	var ordered []string

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	for _, match := range videoIDPattern.FindAllStringSubmatch(html, -1) {
		add(match[1])
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ordered
	}

	doc.Find("iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		add(extractFromURL(src))
	})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		add(extractFromURL(href))
	})

	return ordered
}

func extractFromURL(raw string) string {
	if !strings.Contains(raw, "youtu") {
		return ""
	}
	match := embedIDPattern.FindStringSubmatch(raw)
	if match == nil {
		return ""
	}
	return match[1]
}
