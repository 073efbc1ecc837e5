package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFramework(t *testing.T) {
	cases := []struct {
		name string
		spec string
		tag  string
	}{
		{"nextjs", "A dashboard built with Next.js and Tailwind", "nextjs"},
		{"nextjs no dot", "build with nextjs app router", "nextjs"},
		{"expo", "Mobile companion app using Expo SDK 50", "expo"},
		{"react native", "Cross platform React Native client", "expo"},
		{"nuxt", "SSG marketing site on Nuxt 3", "nuxt"},
		{"vite", "SPA bundled with Vite", "vite"},
		{"vue", "Classic Vue 2 admin panel", "vue"},
		{"angular", "Enterprise Angular 17 frontend", "angular"},
		{"svelte", "Small SvelteKit widget", "svelte"},
		{"gatsby", "Blog generated with Gatsby", "gatsby"},
		{"cra", "Legacy create-react-app codebase", "create-react-app"},
		{"plain", "Plain HTML landing page, no build step", "plain"},
		{"case insensitive", "NEXT.JS with TypeScript", "nextjs"},
		{"unknown", "A Qt desktop application", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.tag, DetectFramework(tc.spec).Tag)
		})
	}
}

// A spec mentioning both Nuxt and Vue must resolve to nuxt, since every Nuxt
// project mentions Vue somewhere.
func TestDetectFrameworkNuxtBeforeVue(t *testing.T) {
	info := DetectFramework("Nuxt 3 storefront using Vue composition API")
	assert.Equal(t, "nuxt", info.Tag)
	assert.Equal(t, ".output/public", info.BuildOutput)
}

func TestDetectFrameworkUnknownDefaults(t *testing.T) {
	info := DetectFramework("some bespoke toolchain")
	assert.Equal(t, "unknown", info.Tag)
	assert.Equal(t, "dist", info.BuildOutput)
	assert.Equal(t, "main", info.Branch)
	assert.Equal(t, "auth", info.AuthFolder)
	assert.False(t, info.NeedsPostBuild)
}

func TestDetectFrameworkFieldsByTag(t *testing.T) {
	next := DetectFramework("nextjs")
	assert.Equal(t, "out", next.BuildOutput)
	assert.True(t, next.NeedsPostBuild)
	assert.True(t, next.NeedsBasePath)

	expo := DetectFramework("expo")
	assert.True(t, expo.NeedsPostBuild)
	assert.False(t, expo.NeedsBasePath)

	angular := DetectFramework("angular")
	assert.Equal(t, "src/auth", angular.AuthFolder)

	plain := DetectFramework("plain html")
	assert.Empty(t, plain.BuildOutput)
	assert.False(t, plain.NeedsPostBuild)
}
