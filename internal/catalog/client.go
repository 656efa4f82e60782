// Package catalog pulls complete collections out of the paginated game-data
// catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://metaforge.app/api/arc-raiders"
	DefaultPageSize = 100
	DefaultMaxPages = 100
)

var (
	// ErrUpstream marks any failure talking to the catalog. Callers may retry.
	ErrUpstream = errors.New("catalog upstream unavailable")
	// ErrMalformedPage is returned when a page lacks data or pagination.
	ErrMalformedPage = errors.New("malformed catalog page")
)

// PageError describes the page that aborted a fetch.
type PageError struct {
	Collection string
	Page       int
	Status     int
	Err        error
}

func (e *PageError) Error() string {
	msg := fmt.Sprintf("catalog %s page %d", e.Collection, e.Page)
	if e.Status != 0 {
		msg += " status " + strconv.Itoa(e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// Query names a collection and the server-side filters to apply.
type Query struct {
	Collection string
	Filter     url.Values
}

type Options struct {
	BaseURL    string
	PageSize   int
	MaxPages   int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client fetches whole collections page by page.
type Client struct {
	baseURL  string
	pageSize int
	maxPages int
	http     *http.Client
	log      *zap.Logger
}

func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		http:     httpClient,
		log:      log,
	}
}

type page struct {
	Data       *[]Entry `json:"data"`
	Pagination *struct {
		HasNextPage bool `json:"hasNextPage"`
	} `json:"pagination"`
}

// FetchAll requests pages until the catalog reports no further pages or the
// page ceiling is hit. Any failing page aborts the whole fetch; partial
// results are never returned.
func (c *Client) FetchAll(ctx context.Context, q Query) ([]Entry, error) {
	var all []Entry
	for pageNum := 1; pageNum <= c.maxPages; pageNum++ {
		p, err := c.fetchPage(ctx, q, pageNum)
		if err != nil {
			c.log.Warn("catalog fetch failed",
				zap.String("collection", q.Collection),
				zap.Int("page", pageNum),
				zap.Error(err))
			return nil, err
		}
		all = append(all, *p.Data...)
		if !p.Pagination.HasNextPage {
			c.log.Debug("catalog fetched",
				zap.String("collection", q.Collection),
				zap.Int("pages", pageNum),
				zap.Int("entries", len(all)))
			return all, nil
		}
	}
	c.log.Warn("catalog page ceiling reached",
		zap.String("collection", q.Collection),
		zap.Int("max_pages", c.maxPages),
		zap.Int("entries", len(all)))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, q Query, pageNum int) (*page, error) {
	params := url.Values{}
	for k, vs := range q.Filter {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	params.Set("page", strconv.Itoa(pageNum))
	params.Set("limit", strconv.Itoa(c.pageSize))
	endpoint := c.baseURL + "/" + strings.TrimLeft(q.Collection, "/") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &PageError{Collection: q.Collection, Page: pageNum, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &PageError{Collection: q.Collection, Page: pageNum, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &PageError{Collection: q.Collection, Page: pageNum, Status: res.StatusCode}
	}

	var p page
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return nil, &PageError{Collection: q.Collection, Page: pageNum, Err: err}
	}
	if p.Data == nil || p.Pagination == nil {
		return nil, &PageError{Collection: q.Collection, Page: pageNum, Err: ErrMalformedPage}
	}
	return &p, nil
}
