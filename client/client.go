package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultUserAgent      = "gsheets/dev"

	// DefaultBaseURL is the public Sheets API endpoint.
	DefaultBaseURL = "https://sheets.googleapis.com"
)

// Client is a Sheets values API client bound to one spreadsheet.
// It is safe for concurrent use.
type Client struct {
	BaseURL       string
	SpreadsheetID string
	Token         string // OAuth bearer token
	APIKey        string // API key, for publicly readable sheets
	UserAgent     string
	HTTPClient    *http.Client

	requestTimeout time.Duration
	log            *slog.Logger
}

var _ Backend = (*Client)(nil)

type rawResponse struct {
	StatusCode int
	RetryAfter string
	Body       []byte
}

// New creates a client for the spreadsheet with the given ID.
func New(baseURL, spreadsheetID, token string) *Client {
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		SpreadsheetID:  spreadsheetID,
		Token:          token,
		UserAgent:      defaultUserAgent,
		HTTPClient:     &http.Client{},
		requestTimeout: defaultRequestTimeout,
		log:            slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used to trace requests.
func (c *Client) WithLogger(log *slog.Logger) *Client {
	if log != nil {
		c.log = log
	}
	return c
}

// do sends a single request. There is no retry: a failed call is reported
// to the caller as is.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*rawResponse, error) {
	u, err := url.Parse(c.BaseURL + "/v4/spreadsheets/" + url.PathEscape(c.SpreadsheetID) + path)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}
	if query == nil {
		query = url.Values{}
	}
	if c.APIKey != "" {
		query.Set("key", c.APIKey)
	}
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	timeout := c.requestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setCommonHeaders(req)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	c.log.Debug("sheets request", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))

	return &rawResponse{
		StatusCode: resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
		Body:       data,
	}, nil
}

func readQuery() url.Values {
	return url.Values{
		"valueRenderOption":    {"UNFORMATTED_VALUE"},
		"dateTimeRenderOption": {"SERIAL_NUMBER"},
		"majorDimension":       {"ROWS"},
	}
}

// Get reads the values of one range. Numbers, including dates, come back
// unformatted; dates are serial numbers.
func (c *Client) Get(ctx context.Context, rng string) ([][]any, error) {
	rng, err := canonicalRange(rng)
	if err != nil {
		return nil, err
	}
	c.log.Debug("reading range", "range", rng, "spreadsheet", c.SpreadsheetID)

	raw, err := c.do(ctx, http.MethodGet, "/values/"+url.PathEscape(rng), readQuery(), nil)
	if err != nil {
		return nil, err
	}
	if raw.StatusCode != http.StatusOK {
		return nil, parseBackendError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}

	var result ValueRange
	if err := json.Unmarshal(raw.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing get response: %w", err)
	}
	c.log.Debug("read rows", "range", rng, "rows", len(result.Values))
	return nonNil(result.Values), nil
}

// BatchGet reads several ranges in one request.
func (c *Client) BatchGet(ctx context.Context, rngs []string) ([][][]any, error) {
	rngs, err := canonicalRanges(rngs)
	if err != nil {
		return nil, err
	}
	if len(rngs) == 0 {
		return [][][]any{}, nil
	}

	q := readQuery()
	q["ranges"] = rngs
	raw, err := c.do(ctx, http.MethodGet, "/values:batchGet", q, nil)
	if err != nil {
		return nil, err
	}
	if raw.StatusCode != http.StatusOK {
		return nil, parseBackendError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}

	var result BatchGetResponse
	if err := json.Unmarshal(raw.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing batch get response: %w", err)
	}
	if len(result.ValueRanges) != len(rngs) {
		return nil, fmt.Errorf("batch get returned %d ranges, requested %d", len(result.ValueRanges), len(rngs))
	}
	out := make([][][]any, len(rngs))
	for i, vr := range result.ValueRanges {
		out[i] = nonNil(vr.Values)
	}
	return out, nil
}

// Update writes rows into a range as raw (unparsed) values.
func (c *Client) Update(ctx context.Context, rng string, rows [][]any) error {
	rng, err := canonicalRange(rng)
	if err != nil {
		return err
	}
	c.log.Debug("updating range", "range", rng, "spreadsheet", c.SpreadsheetID, "rows", len(rows))

	body := ValueRange{Range: rng, MajorDimension: "ROWS", Values: nonNil(rows)}
	q := url.Values{"valueInputOption": {"RAW"}}
	raw, err := c.do(ctx, http.MethodPut, "/values/"+url.PathEscape(rng), q, body)
	if err != nil {
		return err
	}
	if raw.StatusCode != http.StatusOK {
		return parseBackendError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}
	return nil
}

// BatchUpdate writes one set of rows per range in a single request.
func (c *Client) BatchUpdate(ctx context.Context, rngs []string, rows [][][]any) error {
	if err := checkBatch(rngs, rows); err != nil {
		return err
	}
	rngs, err := canonicalRanges(rngs)
	if err != nil {
		return err
	}

	body := BatchUpdateRequest{ValueInputOption: "RAW", Data: make([]ValueRange, len(rngs))}
	for i, rng := range rngs {
		body.Data[i] = ValueRange{Range: rng, MajorDimension: "ROWS", Values: nonNil(rows[i])}
	}
	c.log.Debug("batch updating", "ranges", rngs, "spreadsheet", c.SpreadsheetID)

	raw, err := c.do(ctx, http.MethodPost, "/values:batchUpdate", nil, body)
	if err != nil {
		return err
	}
	if raw.StatusCode != http.StatusOK {
		return parseBackendError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}
	return nil
}

// Clear removes the values of a range, keeping formatting.
func (c *Client) Clear(ctx context.Context, rng string) error {
	rng, err := canonicalRange(rng)
	if err != nil {
		return err
	}
	c.log.Debug("clearing range", "range", rng, "spreadsheet", c.SpreadsheetID)

	raw, err := c.do(ctx, http.MethodPost, "/values/"+url.PathEscape(rng)+":clear", nil, struct{}{})
	if err != nil {
		return err
	}
	if raw.StatusCode != http.StatusOK {
		return parseBackendError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}
	return nil
}

// BatchClear clears several ranges in one request.
func (c *Client) BatchClear(ctx context.Context, rngs []string) error {
	rngs, err := canonicalRanges(rngs)
	if err != nil {
		return err
	}
	c.log.Debug("batch clearing", "ranges", rngs, "spreadsheet", c.SpreadsheetID)

	raw, err := c.do(ctx, http.MethodPost, "/values:batchClear", nil, BatchClearRequest{Ranges: rngs})
	if err != nil {
		return err
	}
	if raw.StatusCode != http.StatusOK {
		return parseBackendError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}
	return nil
}

func parseBackendError(statusCode int, body []byte, retryAfter string) error {
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return &BackendError{
			StatusCode: statusCode,
			Code:       apiErr.Error.Status,
			Message:    apiErr.Error.Message,
			RetryAfter: retryAfter,
			Raw:        body,
		}
	}
	return &BackendError{StatusCode: statusCode, Message: string(body), RetryAfter: retryAfter, Raw: body}
}

func (c *Client) setCommonHeaders(req *http.Request) {
	userAgent := strings.TrimSpace(c.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	if c.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
