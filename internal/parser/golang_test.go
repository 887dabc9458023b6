package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const goFixture = `package sample

import (
	"fmt"
	_ "embed"
	. "strings"
)

// Greeter greets people.
type Greeter struct {
	Name string
}

// Greet returns a greeting.
func (g *Greeter) Greet() string {
	return fmt.Sprintf("hello %s", g.Name)
}

type Speaker interface {
	Greet() string
}

const MaxRetries = 3

func helper() {
	fmt.Println("unexported")
}

func Run() {
	g := &Greeter{Name: "a"}
	g.Greet()
	helper()
}
`

func TestGoAdapterImports(t *testing.T) {
	a := NewGoAdapter()
	res, err := a.Parse([]byte(goFixture), "sample.go")
	require.NoError(t, err)
	require.Len(t, res.Imports, 3)

	var blank, dot bool
	for _, im := range res.Imports {
		if im.Module == "embed" {
			blank = len(im.Names) == 1 && im.Names[0] == "dynamic"
		}
		if im.Module == "strings" {
			dot = im.DefaultImport
		}
	}
	require.True(t, blank, "blank import should be recorded as dynamic")
	require.True(t, dot, "dot import should set DefaultImport")
}

func TestGoAdapterExportsVisibility(t *testing.T) {
	a := NewGoAdapter()
	res, err := a.Parse([]byte(goFixture), "sample.go")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range res.Exports {
		names[e.Name] = true
	}
	require.True(t, names["Greeter"])
	require.True(t, names["Speaker"])
	require.True(t, names["MaxRetries"])
	require.True(t, names["Run"])
	require.False(t, names["helper"], "unexported function must not be exported")
}

func TestGoAdapterMethodQualifiedName(t *testing.T) {
	a := NewGoAdapter()
	res, err := a.Parse([]byte(goFixture), "sample.go")
	require.NoError(t, err)

	var found bool
	for _, sym := range res.Symbols {
		if sym.Name == "Greeter.Greet" {
			found = true
			require.Equal(t, "Greeter", sym.Parent)
		}
	}
	require.True(t, found, "method should be qualified as Receiver.Method")
}

func TestGoAdapterCalls(t *testing.T) {
	a := NewGoAdapter()
	res, err := a.Parse([]byte(goFixture), "sample.go")
	require.NoError(t, err)

	for _, sym := range res.Symbols {
		if sym.Name == "Run" {
			require.Contains(t, sym.Calls, "g.Greet")
			require.Contains(t, sym.Calls, "helper")
		}
	}
}
