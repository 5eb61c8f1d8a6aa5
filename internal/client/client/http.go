package client

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

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
)

// TokenSource yields the bearer token to attach to outbound requests.
// An empty string means "send no Authorization header".
type TokenSource func(ctx context.Context) string

type HTTPClient struct {
	baseURL         string
	http            *http.Client
	tokens          TokenSource
	retryMaxElapsed time.Duration
	logger          logging.Logger
}

// Option configures an HTTPClient in NewHTTPClient.
type Option func(*HTTPClient) error

// WithHTTPTimeout bounds a single request including reading the body.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *HTTPClient) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithTransport replaces the base round tripper; the auth wrapper is still
// installed on top of it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) error {
		c.http.Transport = rt
		return nil
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) error {
		c.tokens = ts
		return nil
	}
}

// WithRetryMaxElapsed caps the total time spent retrying idempotent reads.
// Zero disables retries.
func WithRetryMaxElapsed(d time.Duration) Option {
	return func(c *HTTPClient) error {
		if d < 0 {
			return fmt.Errorf("retry max elapsed must be >= 0")
		}
		c.retryMaxElapsed = d
		return nil
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) error {
		c.logger = l
		return nil
	}
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	c := &HTTPClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{Timeout: 30 * time.Second},
		tokens:          func(context.Context) string { return "" },
		retryMaxElapsed: 10 * time.Second,
		logger:          logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &authTransport{base: base, tokens: c.tokens}
	return c, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*LoginResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "login", http.MethodPost, "/user/login", bytes.NewReader(body), int64(len(body)), "application/json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var user models.User
	if err := decodeBody(resp, "login", &user); err != nil {
		return nil, err
	}
	return &LoginResult{Token: resp.Header.Get(common.TokenHeaderName), User: user}, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User

	operation := func() error {
		resp, err := c.do(ctx, "list users", http.MethodGet, "/user/list", nil, 0, "")
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		users = nil
		return backoff.Permanent(decodeBody(resp, "list users", &users))
	}

	if err := c.retry(ctx, "list users", operation); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (c *HTTPClient) AddUser(ctx context.Context, form UserForm) (*models.User, error) {
	return c.submitUser(ctx, "add user", "/user/add", form)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, form UserForm) (*models.User, error) {
	return c.submitUser(ctx, "update user", "/user/update", form)
}

func (c *HTTPClient) submitUser(ctx context.Context, op, path string, form UserForm) (*models.User, error) {
	body, contentType, err := encodeUserForm(form)
	if err != nil {
		return nil, fmt.Errorf("%s: encode form: %w", op, err)
	}

	resp, err := c.do(ctx, op, http.MethodPost, path, bytes.NewReader(body), int64(len(body)), contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var user models.User
	if err := decodeBody(resp, op, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email string) (*models.StatusMessage, error) {
	return c.statusCall(ctx, "reset password", http.MethodGet, "/user/resetpassword/"+url.PathEscape(email))
}

func (c *HTTPClient) DeleteUser(ctx context.Context, username string) (*models.StatusMessage, error) {
	return c.statusCall(ctx, "delete user", http.MethodDelete, "/user/delete/"+url.PathEscape(username))
}

func (c *HTTPClient) statusCall(ctx context.Context, op, method, path string) (*models.StatusMessage, error) {
	resp, err := c.do(ctx, op, method, path, nil, 0, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var msg models.StatusMessage
	if err := decodeBody(resp, op, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateProfileImage streams the multipart body through a counting reader so
// progress reports follow the bytes the transport actually consumed. Any 2xx
// response is returned as an UploadResult; the caller decides what a status
// other than 200 means.
func (c *HTTPClient) UpdateProfileImage(ctx context.Context, username string, image models.Image, progress ProgressFunc) (*UploadResult, error) {
	const op = "update profile image"

	body, contentType, err := encodeProfileImageForm(username, image)
	if err != nil {
		return nil, fmt.Errorf("%s: encode form: %w", op, err)
	}

	total := int64(len(body))
	reader := newProgressReader(bytes.NewReader(body), total, progress)

	resp, err := c.do(ctx, op, http.MethodPost, "/user/updateProfileImage", reader, total, contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	result := &UploadResult{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusOK {
		var user models.User
		if err := decodeBody(resp, op, &user); err != nil {
			return nil, err
		}
		result.User = &user
	}
	return result, nil
}

// do sends one request. Non-2xx responses are drained, closed and turned
// into a *RemoteError; on success the caller owns resp.Body.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body io.Reader, length int64, contentType string) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	if body != nil {
		req.ContentLength = length
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeRequest(op, 0, start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &RemoteError{Op: op, Err: ctxErr}
		}
		c.logger.Warn(ctx, "remote call failed", "op", op, "error", err)
		return nil, transportError(op, err)
	}
	observeRequest(op, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		msg := readServerMessage(resp.Body)
		c.logger.Debug(ctx, "remote call rejected", "op", op, "status", resp.StatusCode, "message", msg)
		return nil, statusError(op, resp.StatusCode, msg)
	}
	return resp, nil
}

func (c *HTTPClient) retry(ctx context.Context, op string, fn backoff.Operation) error {
	if c.retryMaxElapsed == 0 {
		err := fn()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = c.retryMaxElapsed

	notify := func(err error, wait time.Duration) {
		c.logger.Info(ctx, "retrying remote call", "op", op, "wait", wait, "error", err)
	}
	return backoff.RetryNotify(fn, backoff.WithContext(exp, ctx), notify)
}

// retryable reports whether a failed read may be attempted again: no
// response at all, or a 5xx/408/429 answer.
func retryable(err error) bool {
	var re *RemoteError
	if !errors.As(err, &re) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case re.StatusCode == 0:
		return errors.Is(err, ErrUnavailable)
	case re.StatusCode == http.StatusRequestTimeout, re.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return re.StatusCode >= 500
	}
}

func decodeBody(resp *http.Response, op string, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readServerMessage pulls the "message" field out of an error body. Bodies
// that are not the backend's JSON envelope yield "".
func readServerMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var msg models.StatusMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ""
	}
	return msg.Message
}

func formBool(b bool) string {
	return strconv.FormatBool(b)
}
