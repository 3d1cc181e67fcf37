// Package client talks to the booking API. Every failure is reported with the
// error taxonomy from the lifecycle package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"ticketbari/src/lifecycle"
	"time"

	"github.com/tidwall/gjson"
)

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

type Client struct {
	baseURL           string
	http              *http.Client
	tokens            TokenSource
	onUnauthenticated func()
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthenticatedHandler registers the re-login flow run on every 401.
func WithUnauthenticatedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthenticated = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %s", lifecycle.ErrInvalidRequest, err.Error())
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("%w: %s", lifecycle.ErrInvalidRequest, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return c.unauthenticated(fmt.Errorf("%w: %s", lifecycle.ErrUnauthenticated, err.Error()))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Printf("[client] %s %s error: %s\n", method, path, err.Error())
		return fmt.Errorf("%w: %s", lifecycle.ErrNetworkFailure, err.Error())
	}
	defer res.Body.Close()
	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %s", lifecycle.ErrNetworkFailure, err.Error())
	}

	if res.StatusCode >= http.StatusBadRequest {
		code := gjson.GetBytes(payload, "code").String()
		msg := gjson.GetBytes(payload, "error").String()
		err := lifecycle.FromCode(code, res.StatusCode)
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		if errors.Is(err, lifecycle.ErrUnauthenticated) {
			return c.unauthenticated(err)
		}
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	raw := payload
	if data := gjson.GetBytes(payload, "data"); data.Exists() {
		raw = []byte(data.Raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) unauthenticated(err error) error {
	if c.onUnauthenticated != nil {
		c.onUnauthenticated()
	}
	return err
}

// Login exchanges an identity-provider ID token for an API token.
func (c *Client) Login(ctx context.Context, idToken string) (string, error) {
	anon := *c
	anon.tokens = StaticToken(idToken)
	var res struct {
		Token string `json:"token"`
	}
	if err := anon.do(ctx, http.MethodPost, "/auth/login", nil, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}
