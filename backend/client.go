package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the marketing-mix API. All calls take a context so a
// stale fetch can be aborted when the active filter changes.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		base:  baseURL,
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

// RangeQuery narrows a series request to a date window and an optional
// channel subset. Zero values mean "unbounded".
type RangeQuery struct {
	Start    string
	End      string
	Channels []string
}

func (q RangeQuery) values() url.Values {
	v := url.Values{}
	if q.Start != "" {
		v.Set("start", q.Start)
	}
	if q.End != "" {
		v.Set("end", q.End)
	}
	for _, c := range q.Channels {
		v.Add("channels", c)
	}
	return v
}

// Key returns a stable cache key component for the query.
func (q RangeQuery) Key() string {
	return q.values().Encode()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := raw
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return fmt.Errorf("%s returned status %d: %q", path, resp.StatusCode, snippet)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid JSON from %s: %w", path, err)
	}
	return nil
}

func (c *Client) ListGeos(ctx context.Context) ([]GeoListItem, error) {
	var out []GeoListItem
	err := c.do(ctx, http.MethodGet, "/marketing-mix/geos", nil, nil, &out)
	return out, err
}

func (c *Client) NationalSeries(ctx context.Context, q RangeQuery) (*SeriesResponse, error) {
	var out SeriesResponse
	err := c.do(ctx, http.MethodGet, "/marketing-mix/national", q.values(), nil, &out)
	return &out, err
}

func (c *Client) GeoSeries(ctx context.Context, geo string, q RangeQuery) (*SeriesResponse, error) {
	var out SeriesResponse
	err := c.do(ctx, http.MethodGet, "/marketing-mix/geos/"+url.PathEscape(geo), q.values(), nil, &out)
	return &out, err
}

func (c *Client) Channels(ctx context.Context) ([]ChannelAggregate, error) {
	var out []ChannelAggregate
	err := c.do(ctx, http.MethodGet, "/marketing-mix/channels", nil, nil, &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	err := c.do(ctx, http.MethodGet, "/marketing-mix/summary", nil, nil, &out)
	return &out, err
}

func (c *Client) Contributions(ctx context.Context, q RangeQuery, credibleInterval float64) (*ContributionSeries, error) {
	v := q.values()
	if credibleInterval > 0 {
		v.Set("credible_interval", strconv.FormatFloat(credibleInterval, 'f', -1, 64))
	}
	var out ContributionSeries
	err := c.do(ctx, http.MethodGet, "/mmm/contributions", v, nil, &out)
	return &out, err
}

func (c *Client) ResponseCurves(ctx context.Context, spendSteps int, credibleInterval float64) (*ResponseCurves, error) {
	v := url.Values{}
	if spendSteps > 0 {
		v.Set("spend_steps", strconv.Itoa(spendSteps))
	}
	if credibleInterval > 0 {
		v.Set("credible_interval", strconv.FormatFloat(credibleInterval, 'f', -1, 64))
	}
	var out ResponseCurves
	err := c.do(ctx, http.MethodGet, "/mmm/response-curves", v, nil, &out)
	return &out, err
}

func (c *Client) SimulateShift(ctx context.Context, req ScenarioRequest) (*ScenarioResponse, error) {
	var out ScenarioResponse
	err := c.do(ctx, http.MethodPost, "/marketing-mix/scenarios/shift", nil, req, &out)
	return &out, err
}
