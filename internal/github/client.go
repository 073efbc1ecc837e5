// Package github is a minimal GitHub REST client covering the calls the
// repository scaffolding pipeline needs: repo lookup/creation and the
// Contents API.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/bitminded/backoffice/config"
)

// ErrNotFound is returned by GetRepo when the repository does not exist.
var ErrNotFound = errors.New("github: repository not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Repo struct {
	FullName      string `json:"full_name"`
	HTMLURL       string `json:"html_url"`
	CloneURL      string `json:"clone_url"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
}

type apiError struct {
	Message string `json:"message"`
}

type Client struct {
	apiURL  string
	token   string
	owner   string
	timeout time.Duration
}

func New(cfg config.GithubConfig) *Client {
	return &Client{
		apiURL:  cfg.ApiUrl,
		token:   cfg.Token,
		owner:   cfg.Owner,
		timeout: 30 * time.Second,
	}
}

// Owner returns the configured repository owner login.
func (c *Client) Owner() string {
	return c.owner
}

func (c *Client) headers() gout.H {
	return gout.H{
		"Authorization": "Bearer " + c.token,
		"Accept":        "application/vnd.github+json",
		"User-Agent":    "bitminded-backoffice",
	}
}

// GetRepo fetches owner/name, returning ErrNotFound on 404.
func (c *Client) GetRepo(ctx context.Context, name string) (*Repo, error) {
	var (
		body []byte
		code int
	)
	err := gout.GET(fmt.Sprintf("%s/repos/%s/%s", c.apiURL, c.owner, name)).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "github: get repository")
	}
	if code == 404 {
		return nil, ErrNotFound
	}
	if code < 200 || code >= 300 {
		return nil, errors.Errorf("github: get repository: %s", apiMessage(code, body))
	}
	var repo Repo
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, errors.Wrap(err, "github: decode repository")
	}
	return &repo, nil
}

// CreateRepo creates a repository for the authenticated user.
func (c *Client) CreateRepo(ctx context.Context, name, description string, private bool) (*Repo, error) {
	var (
		body []byte
		code int
	)
	err := gout.POST(c.apiURL+"/user/repos").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		SetJSON(gout.H{
			"name":        name,
			"description": description,
			"private":     private,
			"auto_init":   false,
		}).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "github: create repository")
	}
	if code < 200 || code >= 300 {
		return nil, errors.Errorf("github: create repository: %s", apiMessage(code, body))
	}
	var repo Repo
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, errors.Wrap(err, "github: decode repository")
	}
	return &repo, nil
}

// PutFile writes one file via the Contents API (one commit per call). The
// content is base64-encoded UTF-8 as the API requires.
func (c *Client) PutFile(ctx context.Context, repo, path, message string, content []byte) error {
	var (
		body []byte
		code int
	)
	err := gout.PUT(fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.apiURL, c.owner, repo, escapePath(path))).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		SetJSON(gout.H{
			"message": message,
			"content": base64.StdEncoding.EncodeToString(content),
		}).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrapf(err, "github: put %s", path)
	}
	if code < 200 || code >= 300 {
		return errors.Errorf("github: put %s: %s", path, apiMessage(code, body))
	}
	return nil
}

// Download fetches an arbitrary URL (product icon, screenshots) for
// re-upload through the Contents API.
func (c *Client) Download(ctx context.Context, rawurl string) ([]byte, error) {
	var (
		body []byte
		code int
	)
	err := gout.GET(rawurl).
		WithContext(ctx).
		SetTimeout(c.timeout).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", rawurl)
	}
	if code < 200 || code >= 300 {
		return nil, errors.Errorf("download %s: status %d", rawurl, code)
	}
	return body, nil
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func apiMessage(code int, body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return fmt.Sprintf("status %d: %s", code, e.Message)
	}
	return fmt.Sprintf("status %d", code)
}
