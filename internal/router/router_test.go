package router

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/code-indexer/internal/model"
)

func TestLanguageKnownExtensions(t *testing.T) {
	require.Equal(t, model.LangGo, Language("internal/router/router.go"))
	require.Equal(t, model.LangTypeScript, Language("src/app.tsx"))
	require.Equal(t, model.LangPython, Language("scripts/build.py"))
	require.Equal(t, model.LangRust, Language("src/main.rs"))
	require.Equal(t, model.LangShell, Language("scripts/deploy.sh"))
}

func TestLanguageUnknownExtension(t *testing.T) {
	require.Equal(t, model.LangUnknown, Language("README.md"))
	require.Equal(t, model.LangUnknown, Language("Makefile"))
}

func TestRouteReturnsAdapterOnce(t *testing.T) {
	r := New()
	a1, lang, ok := r.Route("main.go")
	require.True(t, ok)
	require.Equal(t, model.LangGo, lang)
	require.NotNil(t, a1)

	a2, _, _ := r.Route("other.go")
	require.Same(t, a1, a2, "adapters are constructed lazily and once, then reused")
}

func TestRouteUnknownLanguage(t *testing.T) {
	r := New()
	_, lang, ok := r.Route("notes.txt")
	require.False(t, ok)
	require.Equal(t, model.LangUnknown, lang)
}
