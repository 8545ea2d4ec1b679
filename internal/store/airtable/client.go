// Package airtable is the store backend for the hosted tabular store's REST API.
package airtable

import (
	"bytes"
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
	"golang.org/x/time/rate"

	"clubdir/internal/store"
)

const (
	// DefaultAPIURL is the public API root.
	DefaultAPIURL = "https://api.airtable.com/v0"
	maxPageSize   = 100
)

// Config holds connection settings for one base.
type Config struct {
	APIURL            string
	APIKey            string
	BaseID            string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client talks to a single base over HTTPS.
type Client struct {
	apiURL  string
	apiKey  string
	baseID  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ store.Client = (*Client)(nil)

// New creates a client. The API allows five requests per second per base.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.BaseID == "" {
		return nil, errors.New("airtable: API key and base id are required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger.Named("airtable"),
	}, nil
}

type listResponse struct {
	Records []store.Record `json:"records"`
	Offset  string         `json:"offset"`
}

type writeRecord struct {
	ID     string       `json:"id,omitempty"`
	Fields store.Fields `json:"fields"`
}

type writeRequest struct {
	Records []writeRecord `json:"records"`
}

type apiError struct {
	Error json.RawMessage `json:"error"`
}

// Create inserts a single row.
func (c *Client) Create(ctx context.Context, table string, fields store.Fields) (store.Record, error) {
	body := writeRequest{Records: []writeRecord{{Fields: withoutNulls(fields)}}}

	var resp listResponse
	if err := c.do(ctx, "create", table, http.MethodPost, c.tableURL(table), nil, body, &resp); err != nil {
		return store.Record{}, err
	}
	if len(resp.Records) == 0 {
		return store.Record{}, &store.RemoteError{Op: "create", Table: table, Err: errors.New("empty response")}
	}
	return resp.Records[0], nil
}

// Update patches a single row. Nil values are sent as JSON null, which clears the column.
func (c *Client) Update(ctx context.Context, table, id string, fields store.Fields) (store.Record, error) {
	body := writeRequest{Records: []writeRecord{{ID: id, Fields: fields}}}

	var resp listResponse
	if err := c.do(ctx, "update", table, http.MethodPatch, c.tableURL(table), nil, body, &resp); err != nil {
		return store.Record{}, err
	}
	if len(resp.Records) == 0 {
		return store.Record{}, &store.RemoteError{Op: "update", Table: table, Err: errors.New("empty response")}
	}
	return resp.Records[0], nil
}

// Find fetches one row by id.
func (c *Client) Find(ctx context.Context, table, id string) (store.Record, error) {
	var rec store.Record
	err := c.do(ctx, "find", table, http.MethodGet, c.tableURL(table)+"/"+url.PathEscape(id), nil, nil, &rec)
	return rec, err
}

// FirstPage fetches a single page of at most min(MaxRecords, 100) rows.
func (c *Client) FirstPage(ctx context.Context, table string, q store.Query) ([]store.Record, error) {
	pageSize := maxPageSize
	if q.MaxRecords > 0 && q.MaxRecords < pageSize {
		pageSize = q.MaxRecords
	}
	page, err := c.list(ctx, "firstPage", table, q, pageSize, "")
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

// All follows the pagination offset until the listing is exhausted.
func (c *Client) All(ctx context.Context, table string, q store.Query) ([]store.Record, error) {
	records := make([]store.Record, 0)
	offset := ""
	for {
		page, err := c.list(ctx, "all", table, q, maxPageSize, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

func (c *Client) list(ctx context.Context, op, table string, q store.Query, pageSize int, offset string) (listResponse, error) {
	params := QueryParams(q)
	params.Set("pageSize", strconv.Itoa(pageSize))
	if offset != "" {
		params.Set("offset", offset)
	}

	var resp listResponse
	err := c.do(ctx, op, table, http.MethodGet, c.tableURL(table), params, nil, &resp)
	return resp, err
}

// QueryParams encodes a query the way the list endpoint expects.
func QueryParams(q store.Query) url.Values {
	params := url.Values{}
	if formula := store.FormulaOf(q.Filter); formula != "" {
		params.Set("filterByFormula", formula)
	}
	if q.MaxRecords > 0 {
		params.Set("maxRecords", strconv.Itoa(q.MaxRecords))
	}
	for i, s := range q.Sort {
		params.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		params.Set(fmt.Sprintf("sort[%d][direction]", i), s.Direction())
	}
	for _, f := range q.Fields {
		params.Add("fields[]", f)
	}
	return params
}

func (c *Client) tableURL(table string) string {
	return c.apiURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)
}

func (c *Client) do(ctx context.Context, op, table, method, endpoint string, params url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &store.RemoteError{Op: op, Table: table, Err: err}
	}

	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &store.RemoteError{Op: op, Table: table, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &store.RemoteError{Op: op, Table: table, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("store call",
		zap.String("op", op),
		zap.String("table", table),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound && (op == "find" || op == "update") {
		return store.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &store.RemoteError{Op: op, Table: table, Status: resp.StatusCode, Err: decodeError(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &store.RemoteError{Op: op, Table: table, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeError extracts the message from {"error": "..."} or {"error": {"type", "message"}}.
func decodeError(r io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))

	var env apiError
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Error) == 0 {
		return errors.New(strings.TrimSpace(string(raw)))
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Error, &detail); err == nil && detail.Type != "" {
		if detail.Message == "" {
			return errors.New(detail.Type)
		}
		return fmt.Errorf("%s: %s", detail.Type, detail.Message)
	}

	var code string
	if err := json.Unmarshal(env.Error, &code); err == nil {
		return errors.New(code)
	}
	return errors.New(string(env.Error))
}

func withoutNulls(fields store.Fields) store.Fields {
	out := make(store.Fields, len(fields))
	for k, v := range fields {
		if v != nil {
			out[k] = v
		}
	}
	return out
}
