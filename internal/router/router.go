// Package router maps a file's extension to the parser adapter that
// handles its language family, constructing each adapter lazily and once.
package router

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/parser"
)

var extToLanguage = map[string]model.Language{
	".ts":   model.LangTypeScript,
	".tsx":  model.LangTypeScript,
	".js":   model.LangJavaScript,
	".jsx":  model.LangJavaScript,
	".mjs":  model.LangJavaScript,
	".cjs":  model.LangJavaScript,
	".py":   model.LangPython,
	".go":   model.LangGo,
	".rs":   model.LangRust,
	".sh":   model.LangShell,
	".bash": model.LangShell,
}

// Router dispatches a repo-relative path to its language and parser
// adapter. It is process-wide and safe for concurrent use; each adapter is
// constructed at most once.
type Router struct {
	once     sync.Once
	adapters map[model.Language]parser.Adapter
}

// New constructs an empty Router. Adapters are built lazily on first use.
func New() *Router {
	return &Router{}
}

func (r *Router) init() {
	r.once.Do(func() {
		r.adapters = map[model.Language]parser.Adapter{
			model.LangTypeScript: parser.NewTypeScriptAdapter(),
			model.LangJavaScript: parser.NewJavaScriptAdapter(),
			model.LangPython:     parser.NewPythonAdapter(),
			model.LangGo:         parser.NewGoAdapter(),
			model.LangRust:       parser.NewRustAdapter(),
			model.LangShell:      parser.NewShellAdapter(),
		}
	})
}

// Language returns the language tag for a repo-relative path, or
// model.LangUnknown if the extension is not recognized.
func Language(path string) model.Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extToLanguage[ext]; ok {
		return lang
	}
	return model.LangUnknown
}

// Route returns the adapter for path's language, and false if the
// language is unknown (the caller should emit an empty ParseResult).
func (r *Router) Route(path string) (parser.Adapter, model.Language, bool) {
	r.init()
	lang := Language(path)
	if lang == model.LangUnknown {
		return nil, lang, false
	}
	return r.adapters[lang], lang, true
}
