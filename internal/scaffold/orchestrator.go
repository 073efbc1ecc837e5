package scaffold

import (
	"context"
	"fmt"
	"path"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bitminded/backoffice/internal/github"
	"github.com/bitminded/backoffice/pkg/metrics"
)

// Request describes one repository scaffolding run.
type Request struct {
	ProductName    string
	Slug           string
	Spec           string
	Private        bool
	IconURL        string
	ScreenshotURLs []string
}

// RepoResult reports the outcome. Warnings collect best-effort failures
// (individual file writes, media uploads) that did not abort the run; a
// partially populated repository is an accepted terminal state.
type RepoResult struct {
	FullName      string   `json:"full_name"`
	HTMLURL       string   `json:"html_url"`
	CloneURL      string   `json:"clone_url"`
	DefaultBranch string   `json:"default_branch"`
	Existed       bool     `json:"existed"`
	Framework     string   `json:"framework"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Orchestrator drives the scaffolding pipeline: framework detection, file
// generation, then sequential Contents-API writes.
type Orchestrator struct {
	gh          *github.Client
	pagesDomain string
}

func NewOrchestrator(gh *github.Client, pagesDomain string) *Orchestrator {
	return &Orchestrator{gh: gh, pagesDomain: pagesDomain}
}

// Provision checks or creates the repository and, when newly created, writes
// every generated file one commit at a time. Repo creation failure aborts;
// everything after is best-effort and lands in Warnings.
func (o *Orchestrator) Provision(ctx context.Context, req Request) (*RepoResult, error) {
	if req.Slug == "" {
		return nil, errors.New("scaffold: slug is required")
	}
	info := DetectFramework(req.Spec)
	result := &RepoResult{Framework: info.Tag}

	repo, err := o.gh.GetRepo(ctx, req.Slug)
	switch {
	case err == nil:
		result.FullName = repo.FullName
		result.HTMLURL = repo.HTMLURL
		result.CloneURL = repo.CloneURL
		result.DefaultBranch = repo.DefaultBranch
		result.Existed = true
		zap.L().Info("scaffold: repository already exists", zap.String("repo", repo.FullName))
		return result, nil
	case errors.Is(err, github.ErrNotFound):
		// fall through to creation
	default:
		return nil, err
	}

	repo, err = o.gh.CreateRepo(ctx, req.Slug, fmt.Sprintf("%s — scaffolded by the BitMinded back-office", req.ProductName), req.Private)
	if err != nil {
		return nil, err
	}
	result.FullName = repo.FullName
	result.HTMLURL = repo.HTMLURL
	result.CloneURL = repo.CloneURL
	result.DefaultBranch = repo.DefaultBranch

	for _, f := range InitialFiles(req.ProductName, req.Slug, req.Spec, o.pagesDomain, o.gh.Owner(), info) {
		if err := o.gh.PutFile(ctx, req.Slug, f.Path, "Add "+f.Path, []byte(f.Content)); err != nil {
			zap.L().Warn("scaffold: file write failed",
				zap.String("repo", req.Slug), zap.String("path", f.Path), zap.Error(err))
			result.Warnings = append(result.Warnings, fmt.Sprintf("write %s: %s", f.Path, err.Error()))
		}
	}

	o.uploadMedia(ctx, req, result)

	metrics.Inc(metrics.MetricScaffoldRuns)
	zap.L().Info("scaffold: repository provisioned",
		zap.String("repo", repo.FullName),
		zap.String("framework", info.Tag),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// uploadMedia fetches the product icon and screenshots by URL and commits
// them under media/. Failures never abort the run.
func (o *Orchestrator) uploadMedia(ctx context.Context, req Request, result *RepoResult) {
	upload := func(rawurl, target string) {
		data, err := o.gh.Download(ctx, rawurl)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("fetch media %s: %s", rawurl, err.Error()))
			return
		}
		if err := o.gh.PutFile(ctx, req.Slug, target, "Add "+target, data); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("upload %s: %s", target, err.Error()))
		}
	}

	if req.IconURL != "" {
		upload(req.IconURL, "media/icon"+mediaExt(req.IconURL))
	}
	for i, u := range req.ScreenshotURLs {
		upload(u, fmt.Sprintf("media/screenshot-%d%s", i+1, mediaExt(u)))
	}
}

func mediaExt(rawurl string) string {
	ext := path.Ext(rawurl)
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
		return ext
	}
	return ".png"
}
