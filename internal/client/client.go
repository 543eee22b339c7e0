// Package client talks to a running lymegrove server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/franckalain/lymegrove/internal/feedback"
	"github.com/franckalain/lymegrove/internal/intake"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/franckalain/lymegrove/internal/schedule"
)

// Error is a non-2xx reply from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

type Option func(*Client)

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze uploads an image for diagnosis.
func (c *Client) Analyze(ctx context.Context, filename string, img io.Reader) (*models.ScanEnvelope, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, img); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	var env models.ScanEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/analyze", w.FormDataContentType(), &body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *Client) Contact(ctx context.Context, req intake.ContactRequest) (*intake.Ack, error) {
	var ack intake.Ack
	if err := c.doJSON(ctx, http.MethodPost, "/api/contact", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) GDPR(ctx context.Context, req intake.GDPRRequest) (*intake.Ack, error) {
	var ack intake.Ack
	if err := c.doJSON(ctx, http.MethodPost, "/api/gdpr", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Feedback submits a judgement and returns the stored record.
func (c *Client) Feedback(ctx context.Context, sub feedback.Submission) (*models.FeedbackRecord, error) {
	var resp struct {
		Success bool                     `json:"success"`
		Data    []*models.FeedbackRecord `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/feedback", sub, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("feedback response carries no record")
	}
	return resp.Data[0], nil
}

// ScanPage is one page of scan history.
type ScanPage struct {
	Scans []*models.Scan `json:"scans"`
	Total int            `json:"total"`
}

func (c *Client) ListScans(ctx context.Context, limit int) (*ScanPage, error) {
	path := "/api/scans"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var page ScanPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetScan(ctx context.Context, id string) (*models.Scan, error) {
	var sc models.Scan
	if err := c.doJSON(ctx, http.MethodGet, "/api/scans/"+url.PathEscape(id), nil, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (c *Client) DeleteScan(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/scans/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Schedule(ctx context.Context, req schedule.Request) (*schedule.Schedule, error) {
	var s schedule.Schedule
	if err := c.doJSON(ctx, http.MethodPost, "/api/schedule", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
