package scanner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreOffsets = cmpopts.IgnoreFields(ExportDeclaration{}, "Start", "End")

func TestScanLocalExports(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  []ExportDeclaration
		names []string
	}{
		{
			name: "const",
			src:  "export const a = 'foo';",
			want: []ExportDeclaration{{
				Kind:     ExportLocal,
				DeclKind: DeclConst,
				Bindings: []Pattern{&Identifier{Name: "a"}},
			}},
			names: []string{"a"},
		},
		{
			name: "destructuring with defaults and rest",
			src:  "export const { a, b: [c, , d = 1], ...e } = obj, f = 2;",
			want: []ExportDeclaration{{
				Kind:     ExportLocal,
				DeclKind: DeclConst,
				Bindings: []Pattern{
					&ObjectPattern{Properties: []Pattern{
						&Property{Key: "a", Value: &Identifier{Name: "a"}},
						&Property{Key: "b", Value: &ArrayPattern{Elements: []Pattern{
							&Identifier{Name: "c"},
							nil,
							&AssignmentPattern{Left: &Identifier{Name: "d"}, Default: "1"},
						}}},
						&RestElement{Argument: &Identifier{Name: "e"}},
					}},
					&Identifier{Name: "f"},
				},
			}},
			names: []string{"a", "c", "d", "e", "f"},
		},
		{
			name: "numeric string and computed keys",
			src:  `export let {1: g, "h": i, [k]: j} = o;`,
			want: []ExportDeclaration{{
				Kind:     ExportLocal,
				DeclKind: DeclLet,
				Bindings: []Pattern{
					&ObjectPattern{Properties: []Pattern{
						&Property{Key: "1", KeyKind: KeyNumber, Value: &Identifier{Name: "g"}},
						&Property{Key: "h", KeyKind: KeyString, Value: &Identifier{Name: "i"}},
						&Property{Key: "k", KeyKind: KeyComputed, Computed: true, Value: &Identifier{Name: "j"}},
					}},
				},
			}},
			names: []string{"g", "i", "j"},
		},
		{
			name: "function and class",
			src:  "export async function run() {}\nexport function* gen() {}\nexport class Widget {}",
			want: []ExportDeclaration{
				{Kind: ExportLocal, DeclKind: DeclFunction, Bindings: []Pattern{&Identifier{Name: "run"}}},
				{Kind: ExportLocal, DeclKind: DeclFunction, Bindings: []Pattern{&Identifier{Name: "gen"}}},
				{Kind: ExportLocal, DeclKind: DeclClass, Bindings: []Pattern{&Identifier{Name: "Widget"}}},
			},
			names: []string{"Widget", "gen", "run"},
		},
		{
			name: "initializers with nested brackets",
			src:  "export var x = f({ a: [1, 2], b: `${g(1, 2)}` }, 3), y = (1, 2);",
			want: []ExportDeclaration{{
				Kind:     ExportLocal,
				DeclKind: DeclVar,
				Bindings: []Pattern{&Identifier{Name: "x"}, &Identifier{Name: "y"}},
			}},
			names: []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScanSource(tt.src)

			if diff := cmp.Diff(tt.want, res.Exports, ignoreOffsets); diff != "" {
				t.Errorf("exports mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, tt.names, res.ExportNames())
			assert.False(t, res.HasDefault())
		})
	}
}

func TestScanDefaultExports(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   DefaultKind
		params []string
	}{
		{name: "function with destructured params", src: "export default function Comp({ title, items = [] }, ctx) {}", kind: DefaultFunction, params: []string{"title", "items", "ctx"}},
		{name: "anonymous async function", src: "export default async function () {}", kind: DefaultFunction, params: []string{}},
		{name: "arrow function", src: "export default (a, [b, ...c]) => a + b;", kind: DefaultExpression, params: []string{"a", "b", "c"}},
		{name: "single param arrow", src: "export default x => x * 2;", kind: DefaultExpression, params: []string{"x"}},
		{name: "async arrow", src: "export default async ({ id }) => id;", kind: DefaultExpression, params: []string{"id"}},
		{name: "parenthesised expression", src: "export default (a, b);", kind: DefaultExpression},
		{name: "literal", src: "export default 42;", kind: DefaultExpression},
		{name: "class", src: "export default class extends Base {}", kind: DefaultClass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScanSource(tt.src)
			require.Len(t, res.Exports, 1)

			decl := res.Exports[0]
			assert.Equal(t, ExportDefault, decl.Kind)
			assert.Equal(t, tt.kind, decl.Default)
			assert.True(t, res.HasDefault())
			assert.Empty(t, res.ExportNames())
			assert.Equal(t, tt.params, res.DefaultParams())
		})
	}
}

func TestScanExportClauses(t *testing.T) {
	res := ScanSource(`
export { a, b as c, d as default };
export { e as "kebab-name" } from "./x";
export * from "./all";
export * as ns from "./ns";
`)

	want := []ExportDeclaration{
		{Kind: ExportNamed, Specifiers: []ExportSpecifier{{Local: "a", Exported: "a"}, {Local: "b", Exported: "c"}, {Local: "d", Exported: "default"}}},
		{Kind: ExportNamed, Specifiers: []ExportSpecifier{{Local: "e", Exported: "kebab-name"}}, From: "./x"},
		{Kind: ExportAll, From: "./all"},
		{Kind: ExportAll, From: "./ns", As: "ns"},
	}

	if diff := cmp.Diff(want, res.Exports, ignoreOffsets); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"a", "c", "kebab-name", "ns"}, res.ExportNames())
	assert.True(t, res.HasDefault())
	assert.Nil(t, res.DefaultParams())
}

func TestScanImports(t *testing.T) {
	src := `import "side";
import d from "a";
import * as ns from 'b';
import d2, { x, y as z } from "c";
import from from "d";
const lazy = import("dyn");
const url = import.meta.url;
`
	res := ScanSource(src)

	require.Len(t, res.Imports, 5)

	var clauses, specs []string
	for _, imp := range res.Imports {
		clauses = append(clauses, imp.Clause)
		specs = append(specs, imp.Specifier)
	}

	assert.Equal(t, []string{"", "d", "* as ns", "d2, { x, y as z }", "from"}, clauses)
	assert.Equal(t, []string{"side", "a", "b", "c", "d"}, specs)
	assert.Equal(t, `import "side"`, src[res.Imports[0].Start:res.Imports[0].End])
	assert.Equal(t, `import d from "a"`, src[res.Imports[1].Start:res.Imports[1].End])
}

func TestScanIgnoresNestedDeclarations(t *testing.T) {
	res := ScanSource("const s = `${ (() => { return 1 })() } export const fake = 1`;\n" +
		"function f() {\n  const inner = 1;\n}\n" +
		"if (ok) { import(\"x\"); }\n" +
		"// export const commented = 1;\n" +
		"export const yes = /export const re = 1/.test(s);\n")

	assert.Equal(t, []string{"yes"}, res.ExportNames())
	assert.Empty(t, res.Imports)
}

func TestScanDeclaredNames(t *testing.T) {
	res := ScanSource("import React, { useState as use } from \"react\";\n" +
		"const local = 1, { x, y: [z] } = obj;\n" +
		"function helper() { let hidden = 2; }\n" +
		"async function load() {}\n" +
		"class Box {}\n" +
		"export const shown = 3;\n" +
		"export default function View({ title }) {}\n")

	assert.Equal(t, []string{"Box", "React", "helper", "load", "local", "shown", "use", "x", "z"}, res.DeclaredNames())
	assert.Equal(t, []string{"shown"}, res.ExportNames())
	assert.Len(t, res.Locals, 4)
}

func TestScanDeclarationsWithoutSemicolons(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		exports  []string
		declared []string
	}{
		{
			name:     "let after export let",
			src:      "export let a = 1\nlet b, c = 2",
			exports:  []string{"a"},
			declared: []string{"a", "b", "c"},
		},
		{
			name:     "function and class after const",
			src:      "export const a = make()\nfunction helper() {}\nclass Box {}\nexport const b = a",
			exports:  []string{"a", "b"},
			declared: []string{"Box", "a", "b", "helper"},
		},
		{
			name:     "async function after var",
			src:      "var n = 1\nasync function load() {}",
			exports:  []string{},
			declared: []string{"load", "n"},
		},
		{
			name:     "function expression on the next line",
			src:      "export const f =\nfunction () {}\nexport const g = 1",
			exports:  []string{"f", "g"},
			declared: []string{"f", "g"},
		},
		{
			name:     "operator continues the initializer",
			src:      "export const x = a ||\nclass {}\nconst y = 2",
			exports:  []string{"x"},
			declared: []string{"x", "y"},
		},
		{
			name:     "literal keyword ends the initializer",
			src:      "export const on = true\nconst off = false",
			exports:  []string{"on"},
			declared: []string{"off", "on"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScanSource(tt.src)
			assert.Equal(t, tt.exports, res.ExportNames())
			assert.Equal(t, tt.declared, res.DeclaredNames())
		})
	}
}

func TestScanSkipsMalformed(t *testing.T) {
	res := ScanSource("export const = 5;\nexport { a b };\nexport * from;\nexport const ok = 1;")
	assert.Equal(t, []string{"ok"}, res.ExportNames())
}

func TestScanSourceAfterLexError(t *testing.T) {
	res := ScanSource("export const a = 1;\nconst s = \"unterminated")
	assert.Equal(t, []string{"a"}, res.ExportNames())
}

func TestScanEmpty(t *testing.T) {
	res := Scan("", nil)
	assert.Empty(t, res.Exports)
	assert.Empty(t, res.Imports)
}

func TestBoundNames(t *testing.T) {
	p := &ArrayPattern{Elements: []Pattern{
		nil,
		&ObjectPattern{Properties: []Pattern{
			&Property{Key: "k", Value: &AssignmentPattern{Left: &Identifier{Name: "v"}, Default: "0"}},
			&RestElement{Argument: &Identifier{Name: "others"}},
		}},
		&RestElement{Argument: &ArrayPattern{Elements: []Pattern{&Identifier{Name: "tail"}}}},
	}}

	assert.Equal(t, []string{"v", "others", "tail"}, BoundNames(p))
	assert.Nil(t, BoundNames(nil))
}
