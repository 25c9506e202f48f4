// Package client 是 studio API 的 Go 客户端；生成接口在模型过载(503)时自动重试。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultOverloadBackoff = 2 * time.Second
	DefaultMaxRetries      = 3
)

var (
	ErrCanceled         = errors.New("client: request canceled")
	ErrRetriesExhausted = errors.New("client: model still overloaded after retries")
)

// APIError 服务端返回的失败信封
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

type AuthResult struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
}

type Generation struct {
	ID        int64     `json:"id"`
	Prompt    string    `json:"prompt"`
	Style     string    `json:"style"`
	ImageURL  string    `json:"image_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type GenerationRequest struct {
	Prompt      string
	Style       string
	Filename    string
	ContentType string // 为空时由服务端嗅探
	Image       []byte
}

type Client struct {
	BaseURL         string
	HTTP            *http.Client
	Token           string
	OverloadBackoff time.Duration
	MaxRetries      uint64
	// OnRetry 每次因过载重试前回调（UI 显示 "Retrying..."）
	OnRetry func(attempt int, wait time.Duration)
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		HTTP:            &http.Client{Timeout: 60 * time.Second},
		OverloadBackoff: DefaultOverloadBackoff,
		MaxRetries:      DefaultMaxRetries,
	}
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"errorCode"`
}

func (c *Client) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.auth(ctx, "/api/auth/signup", email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.auth(ctx, "/api/auth/login", email, password)
}

// auth 成功后记住 token，后续请求自动带上
func (c *Client) auth(ctx context.Context, path, email, password string) (*AuthResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, path, "application/json", body, &res); err != nil {
		return nil, err
	}
	c.Token = res.Token
	return &res, nil
}

func (c *Client) ListGenerations(ctx context.Context, limit int) ([]Generation, error) {
	path := "/api/generations"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []Generation
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGeneration 503 时按固定间隔重试，最多 MaxRetries 次；ctx 取消立即停止并返回 ErrCanceled
func (c *Client) CreateGeneration(ctx context.Context, req GenerationRequest) (*Generation, error) {
	body, contentType, err := encodeGeneration(req)
	if err != nil {
		return nil, err
	}

	var out Generation
	op := func() error {
		err := c.do(ctx, http.MethodPost, "/api/generations", contentType, body, &out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.OverloadBackoff), c.MaxRetries), ctx)
	attempt := 0
	notify := func(_ error, wait time.Duration) {
		attempt++
		if c.OnRetry != nil {
			c.OnRetry(attempt, wait)
		}
	}

	err = backoff.RetryNotify(op, b, notify)
	switch {
	case err == nil:
		return &out, nil
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}
	return nil, err
}

func encodeGeneration(req GenerationRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("prompt", req.Prompt); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("style", req.Style); err != nil {
		return nil, "", err
	}
	name := req.Filename
	if name == "" {
		name = "image"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	if req.ContentType != "" {
		h.Set("Content-Type", req.ContentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s %s (status %d): %w", method, path, res.StatusCode, err)
	}
	if !env.Success || res.StatusCode >= 400 {
		return &APIError{Status: res.StatusCode, Code: env.ErrorCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
