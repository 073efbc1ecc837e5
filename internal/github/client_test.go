package github

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitminded/backoffice/config"
)

func testClient(apiURL string) *Client {
	return New(config.GithubConfig{
		ApiUrl: apiURL,
		Token:  "test-token",
		Owner:  "acme",
	})
}

func TestGetRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/invoicer", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"full_name":"acme/invoicer","html_url":"https://github.com/acme/invoicer","clone_url":"https://github.com/acme/invoicer.git","default_branch":"main"}`))
	}))
	defer srv.Close()

	repo, err := testClient(srv.URL).GetRepo(context.Background(), "invoicer")
	require.NoError(t, err)
	assert.Equal(t, "acme/invoicer", repo.FullName)
	assert.Equal(t, "main", repo.DefaultBranch)
}

func TestGetRepoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetRepo(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetRepoServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream broke"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetRepo(context.Background(), "invoicer")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "upstream broke")
}

func TestCreateRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/repos", r.URL.Path)

		var payload map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, jsoniter.Unmarshal(body, &payload))
		assert.Equal(t, "invoicer", payload["name"])
		assert.Equal(t, false, payload["auto_init"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"full_name":"acme/invoicer","default_branch":"main"}`))
	}))
	defer srv.Close()

	repo, err := testClient(srv.URL).CreateRepo(context.Background(), "invoicer", "desc", false)
	require.NoError(t, err)
	assert.Equal(t, "acme/invoicer", repo.FullName)
}

func TestPutFileEncodesBase64(t *testing.T) {
	content := []byte("# Hello\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/repos/acme/invoicer/contents/docs/README.md", r.URL.Path)

		var payload struct {
			Message string `json:"message"`
			Content string `json:"content"`
		}
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, jsoniter.Unmarshal(body, &payload))
		assert.Equal(t, "Add README", payload.Message)
		assert.Equal(t, base64.StdEncoding.EncodeToString(content), payload.Content)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{}}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).PutFile(context.Background(), "invoicer", "docs/README.md", "Add README", content)
	require.NoError(t, err)
}

func TestPutFileFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"sha required"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).PutFile(context.Background(), "invoicer", "README.md", "Add README", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sha required")
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	data, err := testClient("unused").Download(context.Background(), srv.URL+"/icon.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "scripts/postbuild.js", escapePath("scripts/postbuild.js"))
	assert.Equal(t, "media/screen%20shot.png", escapePath("media/screen shot.png"))
}
