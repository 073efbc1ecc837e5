package scaffold

import "strings"

// FrameworkInfo is the static build/deploy descriptor chosen by keyword
// matching on a product's technical specification. It is derived once per
// scaffolding request and never persisted.
type FrameworkInfo struct {
	Tag            string
	BuildOutput    string
	Branch         string
	NeedsPostBuild bool
	NeedsBasePath  bool
	AuthFolder     string
}

type detectRule struct {
	keywords []string
	info     FrameworkInfo
}

// Rules are checked in order and the first match wins. Nuxt is listed ahead
// of Vue so a spec mentioning both resolves to nuxt.
var detectRules = []detectRule{
	{
		keywords: []string{"expo", "react native", "react-native"},
		info:     FrameworkInfo{Tag: "expo", BuildOutput: "dist", Branch: "main", NeedsPostBuild: true, AuthFolder: "public/auth"},
	},
	{
		keywords: []string{"next.js", "nextjs", "next js"},
		info:     FrameworkInfo{Tag: "nextjs", BuildOutput: "out", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "public/auth"},
	},
	{
		keywords: []string{"nuxt"},
		info:     FrameworkInfo{Tag: "nuxt", BuildOutput: ".output/public", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "public/auth"},
	},
	{
		keywords: []string{"vite"},
		info:     FrameworkInfo{Tag: "vite", BuildOutput: "dist", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "public/auth"},
	},
	{
		keywords: []string{"vue"},
		info:     FrameworkInfo{Tag: "vue", BuildOutput: "dist", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "public/auth"},
	},
	{
		keywords: []string{"angular"},
		info:     FrameworkInfo{Tag: "angular", BuildOutput: "dist", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "src/auth"},
	},
	{
		keywords: []string{"sveltekit", "svelte"},
		info:     FrameworkInfo{Tag: "svelte", BuildOutput: "build", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "static/auth"},
	},
	{
		keywords: []string{"gatsby"},
		info:     FrameworkInfo{Tag: "gatsby", BuildOutput: "public", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "static/auth"},
	},
	{
		keywords: []string{"create-react-app", "create react app"},
		info:     FrameworkInfo{Tag: "create-react-app", BuildOutput: "build", Branch: "main", NeedsPostBuild: true, NeedsBasePath: true, AuthFolder: "public/auth"},
	},
	{
		keywords: []string{"plain html", "vanilla", "static site", "plain"},
		info:     FrameworkInfo{Tag: "plain", BuildOutput: "", Branch: "main", AuthFolder: "auth"},
	},
}

var unknownFramework = FrameworkInfo{
	Tag:         "unknown",
	BuildOutput: "dist",
	Branch:      "main",
	AuthFolder:  "auth",
}

// DetectFramework inspects a free-text technical specification and returns
// the matching framework descriptor. It always returns a value: specs with
// no recognized keyword get the generic "unknown" descriptor.
func DetectFramework(spec string) FrameworkInfo {
	lowered := strings.ToLower(spec)
	for _, rule := range detectRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.info
			}
		}
	}
	return unknownFramework
}
