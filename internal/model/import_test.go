package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportDefinitionString(t *testing.T) {
	tests := []struct {
		name string
		def  ImportDefinition
		want string
	}{
		{
			name: "side effect",
			def:  ImportDefinition{Specifier: "x", All: true},
			want: `import "x";`,
		},
		{
			name: "named sorted by local name",
			def:  ImportDefinition{Specifier: "x", ImportBinding: map[string]string{"c": "b", "a": "a"}},
			want: `import { a, b as c } from "x";`,
		},
		{
			name: "default and namespace",
			def:  ImportDefinition{Specifier: "x", ImportBinding: map[string]string{"d": "default"}, NamespaceImport: "ns"},
			want: `import d, * as ns from "x";`,
		},
		{
			name: "namespace and named are split",
			def:  ImportDefinition{Specifier: "x", ImportBinding: map[string]string{"a": "a"}, NamespaceImport: "ns"},
			want: "import * as ns from \"x\";\nimport { a } from \"x\";",
		},
		{
			name: "string import names are quoted",
			def:  ImportDefinition{Specifier: "x", ImportBinding: map[string]string{"odd": "odd-name"}},
			want: `import { "odd-name" as odd } from "x";`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.def.String())
		})
	}
}

func TestImportDefinitionBinds(t *testing.T) {
	def := ImportDefinition{ImportBinding: map[string]string{"a": "a"}, NamespaceImport: "ns"}

	assert.True(t, def.Binds("a"))
	assert.True(t, def.Binds("ns"))
	assert.False(t, def.Binds("b"))
	assert.Equal(t, []string{"a", "ns"}, def.LocalNames())
}

func TestSnippetState(t *testing.T) {
	assert.Equal(t, "absent", SnippetAbsent.String())
	assert.Equal(t, "registered", SnippetRegistered.String())
	assert.Equal(t, "errored", SnippetErrored.String())
	assert.Equal(t, "unknown", SnippetState(9).String())
}

func TestDocumentReportErrored(t *testing.T) {
	rep := DocumentReport{Reports: []Report{
		{ID: "a", State: SnippetRegistered},
		{ID: "b", State: SnippetErrored},
	}}

	assert.Equal(t, 1, rep.Errored())
}
