package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client fetches the remote tree collection page by page.
type Client struct {
	baseURL  string
	pageSize int
	retries  int
	client   *http.Client
}

// NewClient builds a Client for the given collection endpoint. A nil
// httpClient falls back to a client with a conservative timeout.
func NewClient(baseURL string, pageSize, retries int, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: baseURL, pageSize: pageSize, retries: retries, client: httpClient}
}

// PageSize reports the fixed page size used for pagination.
func (c *Client) PageSize() int { return c.pageSize }

// Total issues the count-discovery request and returns the collection size.
func (c *Client) Total(ctx context.Context) (int, error) {
	page, err := c.fetchPage(ctx, 0, 0)
	if err != nil {
		return 0, err
	}
	return page.TotalCount, nil
}

// Pages streams the collection in offset order, invoking fn once per page.
// An error from fn or from any request aborts the walk; the caller sees no
// partial page. Returns the total announced by the probe and the number of
// pages retrieved.
func (c *Client) Pages(ctx context.Context, fn func(records []RawRecord) error) (total int, pages int, err error) {
	total, err = c.Total(ctx)
	if err != nil {
		return 0, 0, err
	}
	for start := 0; start < total; start += c.pageSize {
		page, err := c.fetchPage(ctx, c.pageSize, start)
		if err != nil {
			return total, pages, err
		}
		pages++
		if err := fn(page.Results); err != nil {
			return total, pages, err
		}
	}
	return total, pages, nil
}

// FetchAll retrieves the complete ordered collection in memory. Prefer Pages
// when the records are consumed incrementally.
func (c *Client) FetchAll(ctx context.Context) ([]RawRecord, error) {
	var all []RawRecord
	_, _, err := c.Pages(ctx, func(records []RawRecord) error {
		all = append(all, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, rows, start int) (*pageResponse, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	var page *pageResponse
	err := backoff.Retry(func() error {
		var opErr error
		page, opErr = c.doFetchPage(ctx, rows, start)
		return opErr
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.retries)), ctx))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) doFetchPage(ctx context.Context, rows, start int) (*pageResponse, error) {
	q := url.Values{}
	q.Set("rows", strconv.Itoa(rows))
	q.Set("start", strconv.Itoa(start))
	endpoint := c.baseURL + "/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page start=%d: %w", start, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("fetch page start=%d: status %d: %s", start, resp.StatusCode, string(b))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode page start=%d: %w", start, err))
	}
	return &page, nil
}
