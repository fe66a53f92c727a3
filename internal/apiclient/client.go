// Package apiclient calls the assistant's JSON API. The TUI and CLI
// use it to talk to a running serve instance.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ThreadSummary is one row of the inbox listing.
type ThreadSummary struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

// Message is a single email message.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	To      string `json:"to"`
	Date    string `json:"date"`
	Body    string `json:"body"`
}

// Thread is a full conversation.
type Thread struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Snippet  string    `json:"snippet"`
	Messages []Message `json:"messages"`
}

// Analysis is the model's read on a thread.
type Analysis struct {
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
	Tone      string   `json:"tone"`
	Urgency   string   `json:"urgency"`
	KeyPoints []string `json:"key_points"`
}

// Slot is an open calendar window.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AnalyzeResult bundles everything the analyze endpoint returns.
type AnalyzeResult struct {
	Analysis    Analysis          `json:"analysis"`
	Drafts      map[string]string `json:"drafts"`
	Suggestions []Slot            `json:"suggestions"`
}

// Client calls the assistant's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given base URL.
func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// ListThreads queries /api/threads, optionally filtered by a Gmail
// search query.
func (c *Client) ListThreads(ctx context.Context, query string) ([]ThreadSummary, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}

	var resp struct {
		Threads []ThreadSummary `json:"threads"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/threads", params, &resp); err != nil {
		return nil, err
	}
	return resp.Threads, nil
}

// GetThread fetches a full conversation.
func (c *Client) GetThread(ctx context.Context, id string) (Thread, error) {
	var thread Thread
	err := c.do(ctx, http.MethodGet, "/api/threads/"+url.PathEscape(id), nil, &thread)
	return thread, err
}

// AnalyzeThread runs the full analysis pipeline on a thread.
func (c *Client) AnalyzeThread(ctx context.Context, id string) (AnalyzeResult, error) {
	var result AnalyzeResult
	err := c.do(ctx, http.MethodPost, "/api/threads/"+url.PathEscape(id)+"/analyze", nil, &result)
	return result, err
}

// FindSlots queries /api/slots. Zero values fall back to the server's
// configured defaults.
func (c *Client) FindSlots(ctx context.Context, durationMinutes, daysAhead int) ([]Slot, error) {
	params := url.Values{}
	if durationMinutes > 0 {
		params.Set("duration", strconv.Itoa(durationMinutes))
	}
	if daysAhead > 0 {
		params.Set("days", strconv.Itoa(daysAhead))
	}

	var resp struct {
		Slots []Slot `json:"slots"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/slots", params, &resp); err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			return fmt.Errorf("server returned %d", resp.StatusCode)
		}
		return fmt.Errorf("%s", errResp.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
