package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const jsFixture = `import React from 'react';
import { useState, useEffect } from 'react';
import * as utils from './utils';

export function useCounter() {
  const [count, setCount] = useState(0);
  useEffect(() => {}, []);
  return count;
}

export class Widget extends React.Component {
  render() {
    return <div>hi</div>;
  }
}

export default function App() {
  return <Widget />;
}
`

const tsServerFixture = `import express from 'express';

const router = express.Router();

router.get('/users', auth, (req, res) => {
  res.send('ok');
});

export default router;
`

func TestJSAdapterImports(t *testing.T) {
	a := NewJavaScriptAdapter()
	res, err := a.Parse([]byte(jsFixture), "sample.jsx")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(res.Imports), 3)
}

func TestJSAdapterDetectsReactComponents(t *testing.T) {
	a := NewJavaScriptAdapter()
	res, err := a.Parse([]byte(jsFixture), "sample.jsx")
	require.NoError(t, err)
	require.NotEmpty(t, res.UIComponents)

	var sawClass, sawFunctional bool
	for _, c := range res.UIComponents {
		if c.Name == "Widget" && c.Kind == "class" {
			sawClass = true
		}
		if c.Name == "App" {
			sawFunctional = true
		}
	}
	require.True(t, sawClass)
	require.True(t, sawFunctional)
}

func TestJSAdapterHookNames(t *testing.T) {
	a := NewJavaScriptAdapter()
	res, err := a.Parse([]byte(jsFixture), "sample.jsx")
	require.NoError(t, err)

	var found bool
	for _, sym := range res.Symbols {
		if sym.Name == "useCounter" {
			found = true
		}
	}
	require.True(t, found)
}

func TestJSAdapterDetectsExpressEndpoints(t *testing.T) {
	a := NewJavaScriptAdapter()
	res, err := a.Parse([]byte(tsServerFixture), "routes.js")
	require.NoError(t, err)
	require.Len(t, res.APIEndpoints, 1)
	require.Equal(t, "GET", res.APIEndpoints[0].Method)
	require.Equal(t, "/users", res.APIEndpoints[0].Path)
	require.Equal(t, "express", res.APIEndpoints[0].Framework)
}

func TestTypeScriptAdapterParsesInterfaces(t *testing.T) {
	const tsFixture = `export interface Point {
  x: number;
  y: number;
}

export type ID = string;

export function dist(a: Point, b: Point): number {
  return Math.sqrt(a.x - b.x);
}
`
	a := NewTypeScriptAdapter()
	res, err := a.Parse([]byte(tsFixture), "sample.ts")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range res.Exports {
		names[e.Name] = true
	}
	require.True(t, names["Point"])
	require.True(t, names["ID"])
	require.True(t, names["dist"])
}
