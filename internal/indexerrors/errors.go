// Package indexerrors defines the taxonomy of user-visible error kinds
// shared by the query layer, the resident server, and the CLI adapter.
package indexerrors

import (
	"errors"
	"fmt"
)

// Kind is one of the seven user-visible error kinds.
type Kind string

const (
	KindIndexMissing   Kind = "IndexMissing"
	KindPathNotInGraph Kind = "PathNotInGraph"
	KindSymbolNotFound Kind = "SymbolNotFound"
	KindParseFailure   Kind = "ParseFailure"
	KindIOError        Kind = "IOError"
	KindConfigError    Kind = "ConfigError"
	KindEmbeddingError Kind = "EmbeddingError"
)

// Error wraps an underlying cause with one of the taxonomy Kinds.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, indexerrors.IndexMissing) style checks against
// the sentinel kind markers below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func new_(kind Kind, message string) *Error { return &Error{Kind: kind, Message: message} }

// Sentinels usable with errors.Is(err, indexerrors.IndexMissing).
var (
	IndexMissing   = new_(KindIndexMissing, "no index found")
	PathNotInGraph = new_(KindPathNotInGraph, "path not in dependency graph")
	SymbolNotFound = new_(KindSymbolNotFound, "symbol not found")
	ParseFailure   = new_(KindParseFailure, "parse failure")
	IOError        = new_(KindIOError, "i/o error")
	ConfigError    = new_(KindConfigError, "config error")
	EmbeddingError = new_(KindEmbeddingError, "embedding error")
)

// Wrap produces a concrete *Error of kind with message and cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the Kind from err if it (transitively) wraps an *Error,
// otherwise returns "" and false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
