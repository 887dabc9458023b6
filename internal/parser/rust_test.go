package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const rustFixture = `use std::collections::HashMap;
use std::{fmt, io::Read};
extern crate serde;

pub struct Point {
    pub x: i32,
    y: i32,
}

pub enum Shape {
    Circle,
    Square,
}

pub trait Area {
    fn area(&self) -> f64;
}

impl Area for Point {
    fn area(&self) -> f64 {
        self.dist()
    }
}

pub fn build() -> Point {
    println!("building");
    let p = Point { x: 1, y: 2 };
    p.area();
    p
}

fn private_helper() {}
`

func TestRustAdapterImports(t *testing.T) {
	a := NewRustAdapter()
	res, err := a.Parse([]byte(rustFixture), "sample.rs")
	require.NoError(t, err)
	require.NotEmpty(t, res.Imports)

	var sawExternCrate bool
	for _, im := range res.Imports {
		if im.Module == "serde" {
			sawExternCrate = true
		}
	}
	require.True(t, sawExternCrate)
}

func TestRustAdapterExportsPublicOnly(t *testing.T) {
	a := NewRustAdapter()
	res, err := a.Parse([]byte(rustFixture), "sample.rs")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range res.Exports {
		names[e.Name] = true
	}
	require.True(t, names["Point"])
	require.True(t, names["Shape"])
	require.True(t, names["Area"])
	require.True(t, names["build"])
	require.False(t, names["private_helper"])
}

func TestRustAdapterStructFieldsAndImpl(t *testing.T) {
	a := NewRustAdapter()
	res, err := a.Parse([]byte(rustFixture), "sample.rs")
	require.NoError(t, err)

	var sawImpl bool
	for _, sym := range res.Symbols {
		if sym.Name == "Point" {
			require.NotEmpty(t, sym.Children)
		}
		if sym.Name == "impl Point" {
			sawImpl = true
			require.NotEmpty(t, sym.Children)
		}
	}
	require.True(t, sawImpl)
}

func TestRustAdapterMacroCall(t *testing.T) {
	a := NewRustAdapter()
	res, err := a.Parse([]byte(rustFixture), "sample.rs")
	require.NoError(t, err)

	for _, sym := range res.Symbols {
		if sym.Name == "build" {
			require.Contains(t, sym.Calls, "println!")
		}
	}
}
