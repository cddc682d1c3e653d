package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"go.uber.org/zap"
)

// SearchTool queries a SearxNG instance's JSON API.
type SearchTool struct {
	address string
	client  *http.Client
	log     *zap.Logger
}

func NewSearchTool(address string, log *zap.Logger) *SearchTool {
	return &SearchTool{
		address: address,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.Named("search"),
	}
}

func (t *SearchTool) Definition() Definition {
	return Definition{
		Name:        "search",
		Description: "Searches the web through a local SearxNG instance.",
	}
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (t *SearchTool) Execute(ctx context.Context, action, payload string) (string, error) {
	query := strings.TrimSpace(payload)
	if query == "" {
		return "", fmt.Errorf("empty search query")
	}

	u := url.URL{
		Scheme:   "http",
		Host:     t.address,
		Path:     "/search",
		RawQuery: url.Values{"q": {query}, "format": {"json"}}.Encode(),
	}
	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Search failed: %v. Is SearxNG running at %s?", err, t.address), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Sprintf("Search API error: %d %s", resp.StatusCode, string(body)), nil
	}

	var result searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode search results: %w", err)
	}
	t.log.Info("search", zap.String("query", query), zap.Int("results", len(result.Results)))

	if len(result.Results) == 0 {
		return fmt.Sprintf("No results for '%s'.", query), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for '%s':\n\n", query)
	for i, r := range result.Results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return sb.String(), nil
}

// FetchTool downloads a page and renders it as markdown.
type FetchTool struct {
	client *http.Client
}

func NewFetchTool() *FetchTool {
	return &FetchTool{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *FetchTool) Definition() Definition {
	return Definition{
		Name:        "fetch",
		Description: "Fetches a URL and returns its content as markdown.",
	}
}

func (t *FetchTool) Execute(ctx context.Context, action, payload string) (string, error) {
	target := strings.TrimSpace(payload)
	if target == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "valet/0.1")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Fetch failed: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Fetch returned HTTP %d for %s", resp.StatusCode, target), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "html") {
		return truncate(string(body)), nil
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(string(body))
	if err != nil {
		return truncate(string(body)), nil
	}
	return truncate(markdown), nil
}
