package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Code)
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) endpoint(path string, offset int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	return c.baseURL + path + "?" + q.Encode()
}

func (c *apiClient) do(ctx context.Context, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&failure)
		return &APIError{Status: res.StatusCode, Code: failure.Error}
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Today fetches the raw daily payload of category.
func (c *apiClient) Today(ctx context.Context, category string, offset int) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, c.endpoint("/api/"+url.PathEscape(category)+"/today", offset), nil, &raw)
	return raw, err
}

type letterResult struct {
	Letter string `json:"letter"`
	Status string `json:"status"`
}

type guessResponse struct {
	Result    []letterResult `json:"result"`
	IsCorrect bool           `json:"isCorrect"`
	Word      string         `json:"word,omitempty"`
}

func (c *apiClient) Guess(ctx context.Context, guess string, offset int) (*guessResponse, error) {
	var res guessResponse
	err := c.do(ctx, http.MethodPost, c.endpoint("/api/secret/guess", offset), map[string]string{"guess": guess}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *apiClient) Reveal(ctx context.Context, offset int) (string, error) {
	var res struct {
		Word string `json:"word"`
	}
	err := c.do(ctx, http.MethodGet, c.endpoint("/api/secret/reveal", offset), nil, &res)
	return res.Word, err
}

type reportResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

func (c *apiClient) Report(ctx context.Context, message string, modes []string) (*reportResponse, error) {
	var res reportResponse
	body := map[string]any{"message": message, "modes": modes}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/bug-report", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
