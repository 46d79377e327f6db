package model

import (
	"sort"
	"strconv"
	"strings"
)

// ImportDefinition describes the bindings one import statement introduces.
type ImportDefinition struct {
	Specifier string
	// All marks a bare `import "x"`, or an unaliased `export * from "x"`.
	All       bool
	Default   bool
	Namespace bool
	// Named lists imported names in source order.
	Named []string
	// ImportBinding maps a local name to the imported name. A default binding
	// maps to "default".
	ImportBinding   map[string]string
	NamespaceImport string
}

// LocalNames returns every name the import binds in the importing scope,
// sorted.
func (d ImportDefinition) LocalNames() []string {
	names := make([]string, 0, len(d.ImportBinding)+1)
	for local := range d.ImportBinding {
		names = append(names, local)
	}

	if d.NamespaceImport != "" {
		names = append(names, d.NamespaceImport)
	}

	sort.Strings(names)

	return names
}

// Binds reports whether the import binds local in the importing scope.
func (d ImportDefinition) Binds(local string) bool {
	if d.NamespaceImport != "" && d.NamespaceImport == local {
		return true
	}

	_, ok := d.ImportBinding[local]

	return ok
}

// String renders the definition as an import statement.
func (d ImportDefinition) String() string {
	from := strconv.Quote(d.Specifier)

	var (
		def   string
		named []string
	)

	locals := make([]string, 0, len(d.ImportBinding))
	for local := range d.ImportBinding {
		locals = append(locals, local)
	}

	sort.Strings(locals)

	for _, local := range locals {
		imported := d.ImportBinding[local]

		switch {
		case imported == "default" && def == "":
			def = local
		case imported == local:
			named = append(named, local)
		default:
			named = append(named, quoteName(imported)+" as "+local)
		}
	}

	var clause []string
	if def != "" {
		clause = append(clause, def)
	}

	if d.NamespaceImport != "" {
		clause = append(clause, "* as "+d.NamespaceImport)
	}

	if len(named) > 0 {
		clause = append(clause, "{ "+strings.Join(named, ", ")+" }")
	}

	if len(clause) == 0 {
		return "import " + from + ";"
	}

	if def == "" && d.NamespaceImport != "" && len(named) > 0 {
		// A namespace import cannot share a statement with named imports.
		return "import * as " + d.NamespaceImport + " from " + from + ";\n" +
			"import { " + strings.Join(named, ", ") + " } from " + from + ";"
	}

	if def != "" && d.NamespaceImport != "" && len(named) > 0 {
		return "import " + def + ", * as " + d.NamespaceImport + " from " + from + ";\n" +
			"import { " + strings.Join(named, ", ") + " } from " + from + ";"
	}

	return "import " + strings.Join(clause, ", ") + " from " + from + ";"
}

func quoteName(name string) string {
	for i, r := range name {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}

		return strconv.Quote(name)
	}

	return name
}
