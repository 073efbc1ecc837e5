package scaffold

import (
	"strings"
	"text/template"
)

// RepoFile is one generated artifact destined for the Contents API.
type RepoFile struct {
	Path    string
	Content string
}

// templateData is the parameter set shared by every generator.
type templateData struct {
	ProductName string
	Slug        string
	Spec        string
	PagesDomain string
	Info        FrameworkInfo
}

var funcMap = template.FuncMap{
	"lower": strings.ToLower,
}

func render(t *template.Template, data templateData) string {
	var b strings.Builder
	// Templates are compile-time constants; execution cannot fail on them.
	_ = t.Execute(&b, data)
	return b.String()
}

var readmeTmpl = template.Must(template.New("readme").Parse(`# {{.ProductName}}

{{.Spec}}

---

Scaffolded by the BitMinded back-office. The protected site is served at
https://{{.Slug}}.{{.PagesDomain}} through a Cloudflare Worker; the GitHub
Pages origin only hosts the built assets.
`))

// ReadmeFile renders the repository README with the raw technical
// specification as its body.
func ReadmeFile(productName, slug, spec, pagesDomain string) string {
	return render(readmeTmpl, templateData{ProductName: productName, Slug: slug, Spec: spec, PagesDomain: pagesDomain})
}

const gitignoreBase = `.DS_Store
.env
.env.local
*.log
.wrangler/
`

const gitignoreNode = `node_modules/
dist/
build/
out/
.next/
.nuxt/
.output/
`

// GitignoreFile returns the fixed ignore lines, adding the Node entries when
// the stack mentions Node.
func GitignoreFile(spec string) string {
	if strings.Contains(strings.ToLower(spec), "node") {
		return gitignoreBase + gitignoreNode
	}
	return gitignoreBase
}

var buildScripts = map[string]string{
	"expo":             "expo export --platform web",
	"nextjs":           "next build",
	"nuxt":             "nuxt generate",
	"vite":             "vite build",
	"vue":              "vue-cli-service build",
	"angular":          "ng build",
	"svelte":           "vite build",
	"gatsby":           "gatsby build",
	"create-react-app": "react-scripts build",
}

var packageJSONTmpl = template.Must(template.New("package").Parse(`{
  "name": "{{.Slug}}",
  "version": "0.1.0",
  "private": true,
  "scripts": {
{{- if .BuildScript}}
    "build": "{{.BuildScript}}",
{{- end}}
{{- if .PostBuild}}
    "postbuild": "node scripts/postbuild.js",
{{- end}}
    "deploy:worker": "wrangler deploy"
  },
  "devDependencies": {
    "wrangler": "^3.0.0"
  }
}
`))

// PackageJSONFile renders package.json with the framework build script and
// the wrangler devDependency.
func PackageJSONFile(slug string, info FrameworkInfo) string {
	var b strings.Builder
	_ = packageJSONTmpl.Execute(&b, struct {
		Slug        string
		BuildScript string
		PostBuild   bool
	}{slug, buildScripts[info.Tag], info.NeedsPostBuild})
	return b.String()
}

var redirectGuardTmpl = template.Must(template.New("redirect").Parse(`(function () {
  var protectedUrl = 'https://{{.Slug}}.{{.PagesDomain}}';
  var repoName = '{{.Slug}}';
  if (!window.location.hostname.endsWith('.github.io')) { return; }
  var path = window.location.pathname;
  var prefix = '/' + repoName;
  if (path.indexOf(prefix) === 0) {
    path = path.slice(prefix.length);
  }
  window.location.replace(protectedUrl + path + window.location.search + window.location.hash);
})();`))

// RedirectGuardScript returns the inline script that bounces GitHub Pages
// visitors to the protected subdomain, preserving path, query and hash and
// stripping the leading "/<repo>" project-site segment exactly once.
func RedirectGuardScript(slug, pagesDomain string) string {
	return render(redirectGuardTmpl, templateData{Slug: slug, PagesDomain: pagesDomain})
}

// TokenCheckScript returns the inline script that inspects the stored auth
// session and sends the visitor to /auth when the token is expired or within
// five minutes of expiry.
func TokenCheckScript() string {
	return `(function () {
  var tokenKey = null;
  for (var i = 0; i < window.localStorage.length; i++) {
    var k = window.localStorage.key(i);
    if (k.indexOf('sb-') === 0 && k.indexOf('-auth-token') !== -1) { tokenKey = k; break; }
  }
  if (!tokenKey) { window.location.href = '/auth/'; return; }
  try {
    var session = JSON.parse(window.localStorage.getItem(tokenKey));
    var expiresAt = session && session.expires_at;
    if (!expiresAt || expiresAt * 1000 - Date.now() < 5 * 60 * 1000) {
      window.location.href = '/auth/';
    }
  } catch (e) {
    window.location.href = '/auth/';
  }
})();`
}

var indexHTMLTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.ProductName}}</title>
  <script>{{.RedirectGuard}}</script>
  <script>{{.TokenCheck}}</script>
</head>
<body>
  <div id="app">
    <h1>{{.ProductName}}</h1>
    <p>Loading…</p>
  </div>
</body>
</html>
`))

// IndexHTMLFile renders the root index.html with both protection scripts
// inlined.
func IndexHTMLFile(productName, slug, pagesDomain string) string {
	var b strings.Builder
	_ = indexHTMLTmpl.Execute(&b, struct {
		ProductName   string
		RedirectGuard string
		TokenCheck    string
	}{productName, RedirectGuardScript(slug, pagesDomain), TokenCheckScript()})
	return b.String()
}

var authPageTmpl = template.Must(template.New("auth").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.ProductName}} — Sign in</title>
  <style>
    body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; min-height: 100vh; margin: 0; background: #f5f6fa; }
    .card { background: #fff; padding: 2rem; border-radius: 8px; box-shadow: 0 2px 12px rgba(0,0,0,.08); width: 320px; }
    .card input { width: 100%; padding: .6rem; margin: .4rem 0; box-sizing: border-box; }
    .card button { width: 100%; padding: .6rem; margin-top: .6rem; cursor: pointer; }
    .error { color: #c0392b; font-size: .85rem; min-height: 1.2em; }
  </style>
  <script src="https://cdn.jsdelivr.net/npm/@supabase/supabase-js@2"></script>
</head>
<body>
  <div class="card">
    <h2>{{.ProductName}}</h2>
    <form id="login-form">
      <input type="email" id="email" placeholder="Email" required>
      <input type="password" id="password" placeholder="Password" required>
      <div class="error" id="error"></div>
      <button type="submit">Sign in</button>
    </form>
  </div>
  <script>
    var client = window.supabase.createClient(window.SUPABASE_URL || '', window.SUPABASE_ANON_KEY || '');
    document.getElementById('login-form').addEventListener('submit', function (ev) {
      ev.preventDefault();
      client.auth.signInWithPassword({
        email: document.getElementById('email').value,
        password: document.getElementById('password').value
      }).then(function (res) {
        if (res.error) {
          document.getElementById('error').textContent = res.error.message;
          return;
        }
        window.location.href = '/';
      });
    });
  </script>
</body>
</html>
`))

// AuthPageFile renders the login page dropped into the framework's auth
// folder.
func AuthPageFile(productName string) string {
	return render(authPageTmpl, templateData{ProductName: productName})
}

var workerTmpl = template.Must(template.New("worker").Parse(`const ORIGIN = 'https://{{.Owner}}.github.io/{{.Slug}}';

function getToken(request) {
  const header = request.headers.get('Authorization');
  if (header && header.startsWith('Bearer ')) {
    return header.slice(7);
  }
  const cookie = request.headers.get('Cookie') || '';
  const match = cookie.match(/sb-access-token=([^;]+)/);
  return match ? match[1] : null;
}

async function proxyToPages(request, url) {
  const target = new URL(ORIGIN + url.pathname + url.search);
  const resp = await fetch(target, { headers: request.headers });
  return new Response(resp.body, resp);
}

export default {
  async fetch(request, env) {
    const url = new URL(request.url);
    if (url.pathname.startsWith('/auth')) {
      return proxyToPages(request, url);
    }
    const token = getToken(request);
    if (!token) {
      return Response.redirect(url.origin + '/auth/', 302);
    }
    const check = await fetch(env.VALIDATE_LICENSE_URL, {
      method: 'POST',
      headers: {
        'Content-Type': 'application/json',
        'Authorization': 'Bearer ' + token
      },
      body: JSON.stringify({ product: '{{.Slug}}' })
    });
    if (check.status === 401 || check.status === 403) {
      return Response.redirect(url.origin + '/auth/', 302);
    }
    if (check.status === 402) {
      return Response.redirect(env.SUBSCRIBE_URL || url.origin + '/auth/', 302);
    }
    return proxyToPages(request, url);
  }
};
`))

// WorkerScript renders the Cloudflare Worker that gates the GitHub Pages
// origin behind the validate-license endpoint.
func WorkerScript(owner, slug string) string {
	var b strings.Builder
	_ = workerTmpl.Execute(&b, struct{ Owner, Slug string }{owner, slug})
	return b.String()
}

var wranglerTmpl = template.Must(template.New("wrangler").Parse(`name = "{{.Slug}}"
main = "worker.js"
compatibility_date = "2024-01-01"

routes = [
  { pattern = "{{.Slug}}.{{.PagesDomain}}/*", zone_name = "{{.PagesDomain}}" }
]

[vars]
VALIDATE_LICENSE_URL = "https://api.{{.PagesDomain}}/functions/v1/validate-license"
SUBSCRIBE_URL = "https://{{.PagesDomain}}/subscribe/{{.Slug}}"
`))

// WranglerTomlFile renders wrangler.toml for the worker deployment.
func WranglerTomlFile(slug, pagesDomain string) string {
	return render(wranglerTmpl, templateData{Slug: slug, PagesDomain: pagesDomain})
}

// FrameworkConfigFile returns the project-site base-path config file for
// frameworks that need one, or ok=false otherwise.
func FrameworkConfigFile(slug string, info FrameworkInfo) (RepoFile, bool) {
	if !info.NeedsBasePath {
		return RepoFile{}, false
	}
	base := "/" + slug
	switch info.Tag {
	case "nextjs":
		return RepoFile{Path: "next.config.js", Content: `/** GitHub Pages project-site base path. */
module.exports = {
  output: 'export',
  basePath: '` + base + `',
  images: { unoptimized: true }
};
`}, true
	case "nuxt":
		return RepoFile{Path: "nuxt.config.ts", Content: `export default defineNuxtConfig({
  app: {
    baseURL: '` + base + `/'
  }
});
`}, true
	case "gatsby":
		return RepoFile{Path: "gatsby-config.js", Content: `module.exports = {
  pathPrefix: '` + base + `'
};
`}, true
	case "vite", "vue", "svelte", "angular", "create-react-app":
		return RepoFile{Path: "vite.config.js", Content: `import { defineConfig } from 'vite';

export default defineConfig({
  base: '` + base + `/'
});
`}, true
	}
	return RepoFile{}, false
}

var setupGuideTmpl = template.Must(template.New("setup").Funcs(funcMap).Parse(`# {{.ProductName}} — Setup Guide

Framework: **{{.Info.Tag}}**

## Build

{{if .Info.BuildOutput}}The production build is written to ` + "`{{.Info.BuildOutput}}`" + ` and deployed
from the ` + "`{{.Info.Branch}}`" + ` branch.{{else}}This is a static site: commit the files and deploy the ` + "`{{.Info.Branch}}`" + ` branch.{{end}}

## Protection

1. The root ` + "`index.html`" + ` carries two inline scripts: one redirects
   GitHub Pages visitors to https://{{.Slug}}.{{.PagesDomain}}, the other
   sends visitors with an expired session to ` + "`/auth`" + `.
2. ` + "`worker.js`" + ` + ` + "`wrangler.toml`" + ` deploy the Cloudflare Worker that
   validates licenses before proxying to the Pages origin. Deploy with
   ` + "`npm run deploy:worker`" + `.
{{if .Info.NeedsPostBuild}}3. ` + "`scripts/postbuild.js`" + ` re-injects the protection scripts into the
   built ` + "`index.html`" + ` and rewrites absolute asset paths; it runs
   automatically after ` + "`npm run build`" + `.
{{end}}
## Auth pages

The login page lives under ` + "`{{.Info.AuthFolder}}`" + ` and signs in against the
platform auth service.
`))

// SetupGuideFile renders the per-framework setup document.
func SetupGuideFile(productName, slug, pagesDomain string, info FrameworkInfo) string {
	return render(setupGuideTmpl, templateData{ProductName: productName, Slug: slug, PagesDomain: pagesDomain, Info: info})
}

var postBuildTmpl = template.Must(template.New("postbuild").Parse(`// Injects the redirect guard and token check into the built index.html and
// rewrites absolute asset paths so the bundle works under a project-site
// base path.
const fs = require('fs');
const path = require('path');

const buildDir = '{{.Info.BuildOutput}}';
const indexPath = path.join(buildDir, 'index.html');

const guard = {{.GuardLiteral}};
const tokenCheck = {{.TokenLiteral}};

let html = fs.readFileSync(indexPath, 'utf8');

if (html.indexOf('.github.io') === -1) {
  html = html.replace('</head>', '<script>' + guard + '</script><script>' + tokenCheck + '</script></head>');
}

html = html.replace(/(src|href)="\//g, '$1="./');

fs.writeFileSync(indexPath, html);
console.log('postbuild: protected ' + indexPath);
`))

// PostBuildScriptFile renders the Node post-build script for frameworks
// whose build output needs the protection scripts injected.
func PostBuildScriptFile(slug, pagesDomain string, info FrameworkInfo) string {
	var b strings.Builder
	_ = postBuildTmpl.Execute(&b, struct {
		Info         FrameworkInfo
		GuardLiteral string
		TokenLiteral string
	}{info, jsStringLiteral(RedirectGuardScript(slug, pagesDomain)), jsStringLiteral(TokenCheckScript())})
	return b.String()
}

// jsStringLiteral emits s as a single-quoted JS string literal.
func jsStringLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

// InitialFiles produces every generated artifact in the fixed write order.
func InitialFiles(productName, slug, spec, pagesDomain, owner string, info FrameworkInfo) []RepoFile {
	files := []RepoFile{
		{Path: "README.md", Content: ReadmeFile(productName, slug, spec, pagesDomain)},
		{Path: ".gitignore", Content: GitignoreFile(spec)},
		{Path: "package.json", Content: PackageJSONFile(slug, info)},
		{Path: "index.html", Content: IndexHTMLFile(productName, slug, pagesDomain)},
		{Path: info.AuthFolder + "/index.html", Content: AuthPageFile(productName)},
		{Path: "worker.js", Content: WorkerScript(owner, slug)},
		{Path: "wrangler.toml", Content: WranglerTomlFile(slug, pagesDomain)},
	}
	if cfg, ok := FrameworkConfigFile(slug, info); ok {
		files = append(files, cfg)
	}
	files = append(files, RepoFile{Path: "SETUP.md", Content: SetupGuideFile(productName, slug, pagesDomain, info)})
	if info.NeedsPostBuild {
		files = append(files, RepoFile{Path: "scripts/postbuild.js", Content: PostBuildScriptFile(slug, pagesDomain, info)})
	}
	return files
}
