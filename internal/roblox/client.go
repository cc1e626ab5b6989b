// Package roblox is a read-only client for the platform's public REST API
// family (users, thumbnails, friends, groups, badges).
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultUsersURL      = "https://users.roblox.com"
	DefaultFriendsURL    = "https://friends.roblox.com"
	DefaultGroupsURL     = "https://groups.roblox.com"
	DefaultBadgesURL     = "https://badges.roblox.com"
	DefaultThumbnailsURL = "https://thumbnails.roblox.com"

	DefaultPageLimit = 100
	maxResponseBytes = 4 * 1024 * 1024
)

// Endpoints holds the base URL of every API host the client talks to.
type Endpoints struct {
	Users      string
	Friends    string
	Groups     string
	Badges     string
	Thumbnails string
}

// DefaultEndpoints returns the public production hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Users:      DefaultUsersURL,
		Friends:    DefaultFriendsURL,
		Groups:     DefaultGroupsURL,
		Badges:     DefaultBadgesURL,
		Thumbnails: DefaultThumbnailsURL,
	}
}

// SingleHost points every endpoint at one base URL. Used for stub servers.
func SingleHost(baseURL string) Endpoints {
	return Endpoints{
		Users:      baseURL,
		Friends:    baseURL,
		Groups:     baseURL,
		Badges:     baseURL,
		Thumbnails: baseURL,
	}
}

type Options struct {
	Endpoints Endpoints
	Timeout   time.Duration
	PageLimit int
	// MaxPages caps a single paginated listing. Zero means no cap.
	MaxPages int
}

type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	pageLimit  int
	maxPages   int
}

// APIError describes a failed upstream call. StatusCode is zero when the
// request never produced a response.
type APIError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func NewClient(opts Options) (*Client, error) {
	endpoints := opts.Endpoints
	defaults := DefaultEndpoints()
	for _, ep := range []struct {
		value    *string
		fallback string
	}{
		{&endpoints.Users, defaults.Users},
		{&endpoints.Friends, defaults.Friends},
		{&endpoints.Groups, defaults.Groups},
		{&endpoints.Badges, defaults.Badges},
		{&endpoints.Thumbnails, defaults.Thumbnails},
	} {
		trimmed := strings.TrimRight(strings.TrimSpace(*ep.value), "/")
		if trimmed == "" {
			trimmed = ep.fallback
		}
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return nil, &APIError{Op: "parse api url", Err: err}
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, &APIError{Op: "validate api url", Err: fmt.Errorf("invalid api url: %s", trimmed)}
		}
		*ep.value = trimmed
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	pageLimit := opts.PageLimit
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	maxPages := opts.MaxPages
	if maxPages < 0 {
		maxPages = 0
	}

	return &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
		pageLimit:  pageLimit,
		maxPages:   maxPages,
	}, nil
}

// getJSON issues a GET and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, op string, fullURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func buildURL(base string, path string, query url.Values) string {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
