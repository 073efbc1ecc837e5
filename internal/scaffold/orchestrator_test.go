package scaffold

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitminded/backoffice/config"
	"github.com/bitminded/backoffice/internal/github"
)

// fakeGithub records Contents-API writes and serves repo lookup/creation.
type fakeGithub struct {
	mu         sync.Mutex
	existing   map[string]bool
	putPaths   []string
	failPaths  map[string]bool
	createHits int
}

func (f *fakeGithub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/repos/"):
			name := strings.TrimPrefix(r.URL.Path, "/repos/acme/")
			if !f.existing[name] {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"full_name":"acme/` + name + `","html_url":"https://github.com/acme/` + name + `","clone_url":"https://github.com/acme/` + name + `.git","default_branch":"main"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			f.createHits++
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"full_name":"acme/invoicer","html_url":"https://github.com/acme/invoicer","clone_url":"https://github.com/acme/invoicer.git","default_branch":"main"}`))
		case r.Method == http.MethodPut:
			// /repos/acme/<repo>/contents/<path>
			idx := strings.Index(r.URL.Path, "/contents/")
			p := r.URL.Path[idx+len("/contents/"):]
			if f.failPaths[p] {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"write rejected"}`))
				return
			}
			f.putPaths = append(f.putPaths, p)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"content":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestOrchestrator(t *testing.T, fake *fakeGithub) (*Orchestrator, func()) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	gh := github.New(config.GithubConfig{ApiUrl: srv.URL, Token: "t", Owner: "acme"})
	return NewOrchestrator(gh, "apps.example.com"), srv.Close
}

func TestProvisionCreatesRepoAndFiles(t *testing.T) {
	fake := &fakeGithub{existing: map[string]bool{}, failPaths: map[string]bool{}}
	o, done := newTestOrchestrator(t, fake)
	defer done()

	result, err := o.Provision(context.Background(), Request{
		ProductName: "Invoicer",
		Slug:        "invoicer",
		Spec:        "A billing dashboard built with Next.js and Node",
	})
	require.NoError(t, err)
	assert.False(t, result.Existed)
	assert.Equal(t, "acme/invoicer", result.FullName)
	assert.Equal(t, "main", result.DefaultBranch)
	assert.Equal(t, "nextjs", result.Framework)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, fake.createHits)

	assert.Equal(t, []string{
		"README.md",
		".gitignore",
		"package.json",
		"index.html",
		"public/auth/index.html",
		"worker.js",
		"wrangler.toml",
		"next.config.js",
		"SETUP.md",
		"scripts/postbuild.js",
	}, fake.putPaths)
}

func TestProvisionExistingRepoShortCircuits(t *testing.T) {
	fake := &fakeGithub{existing: map[string]bool{"invoicer": true}, failPaths: map[string]bool{}}
	o, done := newTestOrchestrator(t, fake)
	defer done()

	result, err := o.Provision(context.Background(), Request{
		ProductName: "Invoicer",
		Slug:        "invoicer",
		Spec:        "nextjs",
	})
	require.NoError(t, err)
	assert.True(t, result.Existed)
	assert.Equal(t, "acme/invoicer", result.FullName)
	assert.Equal(t, 0, fake.createHits)
	assert.Empty(t, fake.putPaths)
}

func TestProvisionCollectsFileWarnings(t *testing.T) {
	fake := &fakeGithub{
		existing:  map[string]bool{},
		failPaths: map[string]bool{"worker.js": true, "wrangler.toml": true},
	}
	o, done := newTestOrchestrator(t, fake)
	defer done()

	result, err := o.Provision(context.Background(), Request{
		ProductName: "Invoicer",
		Slug:        "invoicer",
		Spec:        "nextjs",
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "worker.js")
	assert.Contains(t, result.Warnings[1], "wrangler.toml")
	// the failed files do not stop later writes
	assert.Contains(t, fake.putPaths, "SETUP.md")
}

func TestProvisionUploadsMedia(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("binary"))
	}))
	defer media.Close()

	fake := &fakeGithub{existing: map[string]bool{}, failPaths: map[string]bool{}}
	o, done := newTestOrchestrator(t, fake)
	defer done()

	result, err := o.Provision(context.Background(), Request{
		ProductName:    "Invoicer",
		Slug:           "invoicer",
		Spec:           "plain html",
		IconURL:        media.URL + "/icon.svg",
		ScreenshotURLs: []string{media.URL + "/a.png", media.URL + "/b.jpg"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Contains(t, fake.putPaths, "media/icon.svg")
	assert.Contains(t, fake.putPaths, "media/screenshot-1.png")
	assert.Contains(t, fake.putPaths, "media/screenshot-2.jpg")
}

func TestProvisionMediaFailureIsWarning(t *testing.T) {
	fake := &fakeGithub{existing: map[string]bool{}, failPaths: map[string]bool{}}
	o, done := newTestOrchestrator(t, fake)
	defer done()

	result, err := o.Provision(context.Background(), Request{
		ProductName: "Invoicer",
		Slug:        "invoicer",
		Spec:        "plain html",
		IconURL:     "http://127.0.0.1:1/icon.png",
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "fetch media")
}

func TestProvisionRequiresSlug(t *testing.T) {
	fake := &fakeGithub{existing: map[string]bool{}, failPaths: map[string]bool{}}
	o, done := newTestOrchestrator(t, fake)
	defer done()

	_, err := o.Provision(context.Background(), Request{ProductName: "X"})
	assert.Error(t, err)
}
