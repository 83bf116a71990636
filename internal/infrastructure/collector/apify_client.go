package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Run statuses the Apify API reports. Anything not listed here is treated
// as still in flight.
const (
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
	RunStatusAborted   = "ABORTED"
	RunStatusTimedOut  = "TIMED-OUT"
)

var ErrRunFailed = errors.New("remote run did not succeed")

// Client drives LinkedIn scraping actors on the Apify platform: start a
// run for a target URL, poll it to a terminal status, then fetch the
// dataset items the actor produced.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *log.Logger
}

type Run struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

func NewClient(baseURL, token string, logger *log.Logger) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (c *Client) StartRun(ctx context.Context, actorID string, targetURL string) (Run, error) {
	if c == nil || c.client == nil {
		return Run{}, errors.New("nil apify client")
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return Run{}, errors.New("empty actor id")
	}

	input := map[string]any{"urls": []string{strings.TrimSpace(targetURL)}}
	b, err := json.Marshal(input)
	if err != nil {
		return Run{}, err
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs", c.baseURL, url.PathEscape(actorID))
	var out struct {
		Data Run `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(b), &out); err != nil {
		return Run{}, err
	}
	out.Data.ID = strings.TrimSpace(out.Data.ID)
	if out.Data.ID == "" {
		return Run{}, errors.New("apify returned run without id")
	}
	return out.Data, nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (Run, error) {
	if c == nil || c.client == nil {
		return Run{}, errors.New("nil apify client")
	}
	endpoint := fmt.Sprintf("%s/v2/actor-runs/%s", c.baseURL, url.PathEscape(strings.TrimSpace(runID)))
	var out struct {
		Data Run `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return Run{}, err
	}
	return out.Data, nil
}

// WaitForRun polls until the run reaches a terminal status or ctx expires.
func (c *Client) WaitForRun(ctx context.Context, runID string, pollEvery time.Duration) (Run, error) {
	if pollEvery <= 0 {
		pollEvery = 3 * time.Second
	}
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	for {
		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return Run{}, err
		}
		switch run.Status {
		case RunStatusSucceeded:
			return run, nil
		case RunStatusFailed, RunStatusAborted, RunStatusTimedOut:
			return run, fmt.Errorf("%w: run=%s status=%s", ErrRunFailed, runID, run.Status)
		}

		select {
		case <-ctx.Done():
			return Run{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("nil apify client")
	}
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items", c.baseURL, url.PathEscape(strings.TrimSpace(datasetID)))
	var items []json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		bodyStr := strings.TrimSpace(string(rb))
		if c.logger != nil {
			c.logger.Printf("[Apify] request failed | method=%s endpoint=%s status=%d body=%q", method, endpoint, resp.StatusCode, bodyStr)
		}
		return fmt.Errorf("apify request failed: status=%d body=%s", resp.StatusCode, bodyStr)
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
