package api

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

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
)

// TokenSource yields the bearer token of the current session; empty means
// no session.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// Client talks to the Daybook server.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithPageSize sets the page size List requests with.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New returns a Client for the server at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	c := &Client{
		baseURL:  strings.TrimRight(u.String(), "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		tokens:   tokens,
		pageSize: common.DefaultPageSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// List returns every entry of the user. It pages until the server answers
// with an empty page, since the server may cap pages below the requested
// size.
func (c *Client) List(ctx context.Context) ([]models.Record, error) {
	var all []models.Record
	for skip := 0; ; {
		q := url.Values{}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(c.pageSize))

		var page []models.Record
		if err := c.do(ctx, http.MethodGet, "/entries/?"+q.Encode(), nil, "", true, &page); err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		if len(page) == 0 {
			return all, nil
		}
		all = append(all, page...)
		skip += len(page)
	}
}

// Get fetches the entry of key. A missing entry yields an error wrapping
// common.ErrorNotFound.
func (c *Client) Get(ctx context.Context, key datekey.Key) (models.Record, error) {
	var rec models.Record
	if err := c.do(ctx, http.MethodGet, "/entries/"+url.PathEscape(key.String()), nil, "", true, &rec); err != nil {
		return models.Record{}, fmt.Errorf("get entry %s: %w", key, err)
	}
	return rec, nil
}

type upsertRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Upsert creates or replaces the entry of key and returns the stored record.
func (c *Client) Upsert(ctx context.Context, key datekey.Key, content string) (models.Record, error) {
	body, err := json.Marshal(upsertRequest{Date: key.String(), Content: content})
	if err != nil {
		return models.Record{}, err
	}
	var rec models.Record
	if err := c.do(ctx, http.MethodPost, "/entries/", bytes.NewReader(body), "application/json", true, &rec); err != nil {
		return models.Record{}, fmt.Errorf("save entry %s: %w", key, err)
	}
	return rec, nil
}

// Delete removes the entry of key.
func (c *Client) Delete(ctx context.Context, key datekey.Key) error {
	if err := c.do(ctx, http.MethodDelete, "/entries/"+url.PathEscape(key.String()), nil, "", true, nil); err != nil {
		return fmt.Errorf("delete entry %s: %w", key, err)
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tr tokenResponse
	err := c.do(ctx, http.MethodPost, "/token", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", false, &tr)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("login: %w: empty access token", common.ErrTransport)
	}
	return tr.AccessToken, nil
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup registers a new user. A taken email or username yields an error
// wrapping common.ErrorAlreadyExists.
func (c *Client) Signup(ctx context.Context, email, username, password string) error {
	body, err := json.Marshal(signupRequest{Email: email, Username: username, Password: password})
	if err != nil {
		return err
	}
	err = c.do(ctx, http.MethodPost, "/signup", bytes.NewReader(body), "application/json", false, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadRequest {
		return fmt.Errorf("signup: %w: %s", common.ErrorAlreadyExists, se.Detail)
	}
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

type exportResponse struct {
	URL string `json:"url"`
}

// Export asks the server to export the diary and returns a download URL.
func (c *Client) Export(ctx context.Context) (string, error) {
	var er exportResponse
	if err := c.do(ctx, http.MethodPost, "/entries/export", nil, "", true, &er); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return er.URL, nil
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/ping", nil, "", false, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(resp.StatusCode, b)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", common.ErrTransport, err)
	}
	return nil
}
