package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const pyFixture = `import os
from collections import OrderedDict as OD
from . import utils

MAX_SIZE = 10

class Widget:
    """A widget."""

    def render(self):
        self.paint()
        return os.getcwd()

    def paint(self):
        pass


def _private():
    pass


def build(ctx):
    w = Widget()
    w.render()
    ctx.logger.info("built")
    return w
`

func TestPythonAdapterImports(t *testing.T) {
	a := NewPythonAdapter()
	res, err := a.Parse([]byte(pyFixture), "sample.py")
	require.NoError(t, err)
	require.Len(t, res.Imports, 3)
}

func TestPythonAdapterExportsSkipPrivate(t *testing.T) {
	a := NewPythonAdapter()
	res, err := a.Parse([]byte(pyFixture), "sample.py")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range res.Exports {
		names[e.Name] = true
	}
	require.True(t, names["Widget"])
	require.True(t, names["build"])
	require.True(t, names["MAX_SIZE"])
	require.False(t, names["_private"])
}

func TestPythonAdapterMethodsNested(t *testing.T) {
	a := NewPythonAdapter()
	res, err := a.Parse([]byte(pyFixture), "sample.py")
	require.NoError(t, err)

	var methodNames []string
	for _, sym := range res.Symbols {
		if sym.Name == "Widget" {
			for _, c := range sym.Children {
				methodNames = append(methodNames, c.Name)
			}
		}
	}
	require.Contains(t, methodNames, "render")
	require.Contains(t, methodNames, "paint")
}

func TestPythonAdapterSelfCallsRecordMethodNameOnly(t *testing.T) {
	a := NewPythonAdapter()
	res, err := a.Parse([]byte(pyFixture), "sample.py")
	require.NoError(t, err)

	for _, sym := range res.Symbols {
		if sym.Name != "Widget" {
			continue
		}
		for _, m := range sym.Children {
			if m.Name == "render" {
				require.Contains(t, m.Calls, "paint")
				require.Contains(t, m.Calls, "getcwd")
			}
		}
	}
}

func TestPythonAdapterNonSelfAttributeCallRecordsBoth(t *testing.T) {
	a := NewPythonAdapter()
	res, err := a.Parse([]byte(pyFixture), "sample.py")
	require.NoError(t, err)

	for _, sym := range res.Symbols {
		if sym.Name == "build" {
			require.Contains(t, sym.Calls, "render")
			require.Contains(t, sym.Calls, "w.render")
			// nested attribute chain ctx.logger.info records method name only
			require.Contains(t, sym.Calls, "info")
			require.NotContains(t, sym.Calls, "ctx.logger.info")
		}
	}
}
