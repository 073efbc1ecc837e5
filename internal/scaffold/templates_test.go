package scaffold

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectGuardScript(t *testing.T) {
	script := RedirectGuardScript("invoicer", "apps.example.com")

	assert.Contains(t, script, "https://invoicer.apps.example.com")
	assert.Contains(t, script, "var repoName = 'invoicer';")
	assert.Contains(t, script, ".github.io")
	// the project-site prefix is stripped exactly once, from the start
	assert.Contains(t, script, "path.indexOf(prefix) === 0")
	assert.Contains(t, script, "path.slice(prefix.length)")
	// path, query and hash all survive the redirect
	assert.Contains(t, script, "protectedUrl + path + window.location.search + window.location.hash")
}

func TestTokenCheckScript(t *testing.T) {
	script := TokenCheckScript()

	assert.Contains(t, script, "indexOf('sb-')")
	assert.Contains(t, script, "-auth-token")
	assert.Contains(t, script, "expiresAt * 1000 - Date.now() < 5 * 60 * 1000")
	assert.Contains(t, script, "'/auth/'")
}

func TestPackageJSONFile(t *testing.T) {
	next := PackageJSONFile("invoicer", DetectFramework("nextjs"))
	assert.Contains(t, next, `"name": "invoicer"`)
	assert.Contains(t, next, "next build")
	assert.Contains(t, next, "postbuild")
	assert.Contains(t, next, "wrangler")

	plain := PackageJSONFile("landing", DetectFramework("plain html"))
	assert.NotContains(t, plain, "postbuild")
}

func TestGitignoreFile(t *testing.T) {
	node := GitignoreFile("A Node.js based tool")
	assert.Contains(t, node, "node_modules")

	other := GitignoreFile("Plain HTML page")
	assert.Contains(t, other, ".env")
}

func TestWorkerScript(t *testing.T) {
	script := WorkerScript("acme", "invoicer")
	assert.Contains(t, script, "https://acme.github.io/invoicer")
	assert.Contains(t, script, "VALIDATE_LICENSE_URL")
	assert.Contains(t, script, "402")
	assert.Contains(t, script, "sb-access-token")
}

func TestFrameworkConfigFile(t *testing.T) {
	cfg, ok := FrameworkConfigFile("invoicer", DetectFramework("nextjs"))
	require.True(t, ok)
	assert.Equal(t, "next.config.js", cfg.Path)
	assert.Contains(t, cfg.Content, "/invoicer")

	nuxt, ok := FrameworkConfigFile("invoicer", DetectFramework("nuxt"))
	require.True(t, ok)
	assert.Equal(t, "nuxt.config.ts", nuxt.Path)

	_, ok = FrameworkConfigFile("invoicer", DetectFramework("expo"))
	assert.False(t, ok)
}

func TestInitialFilesOrderAndContents(t *testing.T) {
	info := DetectFramework("nextjs")
	files := InitialFiles("Invoicer", "invoicer", "Built with Next.js and Node", "apps.example.com", "acme", info)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
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
	}, paths)

	for _, f := range files {
		assert.NotEmpty(t, f.Content, f.Path)
	}
}

func TestInitialFilesPlainHasNoBuildArtifacts(t *testing.T) {
	info := DetectFramework("plain html")
	files := InitialFiles("Landing", "landing", "Plain HTML page", "apps.example.com", "acme", info)

	joined := strings.Builder{}
	for _, f := range files {
		joined.WriteString(f.Path + "\n")
	}
	assert.NotContains(t, joined.String(), "scripts/postbuild.js")
	assert.Contains(t, joined.String(), "auth/index.html")
}

func TestPostBuildScriptEmbedsGuards(t *testing.T) {
	script := PostBuildScriptFile("invoicer", "apps.example.com", DetectFramework("nextjs"))

	assert.Contains(t, script, "invoicer.apps.example.com")
	// the build output directory of the detected framework is baked in
	assert.Contains(t, script, "const buildDir = 'out';")
}

func TestIndexHTMLInlinesBothScripts(t *testing.T) {
	html := IndexHTMLFile("Invoicer", "invoicer", "apps.example.com")
	assert.Contains(t, html, "repoName")
	assert.Contains(t, html, "-auth-token")
}
