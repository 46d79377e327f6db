package scanner

import (
	"regexp"
	"strconv"
	"strings"

	"snipgraph.dev/pkg/snipgraph/internal/model"
)

const identPattern = `[\p{L}\p{Nl}$_\\][\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}$_\\]*`

var (
	defaultClauseRe   = regexp.MustCompile(`^(` + identPattern + `)\s*(,\s*([\s\S]*))?$`)
	namespaceClauseRe = regexp.MustCompile(`^\*\s*as\s+(` + identPattern + `)$`)
	namedClauseRe     = regexp.MustCompile(`^\{([\s\S]*)\}$`)
	namedEntryRe      = regexp.MustCompile(`^(` + identPattern + `|"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')(?:\s+as\s+(` + identPattern + `))?$`)
)

// ParseImport parses the clause of an import declaration.
func ParseImport(decl ImportDeclaration) (model.ImportDefinition, bool) {
	return ParseClause(decl.Clause, decl.Specifier)
}

// ParseClause turns the raw text between `import` and `from` into an import
// definition. An empty clause is a side-effect import. It reports false when
// the clause has none of the known shapes.
func ParseClause(clause, specifier string) (model.ImportDefinition, bool) {
	def := model.ImportDefinition{
		Specifier:     specifier,
		ImportBinding: map[string]string{},
	}

	clause = strings.TrimSpace(clause)
	if clause == "" {
		def.All = true
		return def, true
	}

	rest := clause

	if m := defaultClauseRe.FindStringSubmatch(clause); m != nil {
		def.Default = true
		def.ImportBinding[m[1]] = "default"

		if m[2] == "" {
			return def, true
		}

		rest = strings.TrimSpace(m[3])
		if rest == "" {
			return model.ImportDefinition{}, false
		}
	}

	if m := namespaceClauseRe.FindStringSubmatch(rest); m != nil {
		def.Namespace = true
		def.NamespaceImport = m[1]

		return def, true
	}

	m := namedClauseRe.FindStringSubmatch(rest)
	if m == nil {
		return model.ImportDefinition{}, false
	}

	for _, entry := range strings.Split(m[1], ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		// Inline type-only imports of untranspiled TypeScript bind no value.
		if typed, ok := strings.CutPrefix(entry, "type "); ok && namedEntryRe.MatchString(strings.TrimSpace(typed)) {
			continue
		}

		em := namedEntryRe.FindStringSubmatch(entry)
		if em == nil {
			return model.ImportDefinition{}, false
		}

		imported := unquoteName(em[1])
		local := em[2]

		if local == "" {
			if imported != em[1] {
				// A string name must be renamed to a binding.
				return model.ImportDefinition{}, false
			}

			local = imported
		}

		def.Named = append(def.Named, imported)
		def.ImportBinding[local] = imported
	}

	return def, true
}

func unquoteName(s string) string {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') {
		return s
	}

	if s[0] == '\'' {
		s = `"` + strings.ReplaceAll(s[1:len(s)-1], `"`, `\"`) + `"`
	}

	if u, err := strconv.Unquote(s); err == nil {
		return u
	}

	return s[1 : len(s)-1]
}

// ImportDefinitions returns the definitions of every static import followed
// by the re-exports, which import without binding local names. Clauses that
// cannot be parsed are skipped.
func (r Result) ImportDefinitions() []model.ImportDefinition {
	var defs []model.ImportDefinition

	for _, decl := range r.Imports {
		if def, ok := ParseImport(decl); ok {
			defs = append(defs, def)
		}
	}

	for _, decl := range r.Exports {
		if decl.From == "" {
			continue
		}

		def := model.ImportDefinition{Specifier: decl.From, ImportBinding: map[string]string{}}

		switch decl.Kind {
		case ExportAll:
			if decl.As != "" {
				def.Namespace = true
			} else {
				def.All = true
			}
		case ExportNamed:
			for _, spec := range decl.Specifiers {
				def.Named = append(def.Named, spec.Local)
			}
		}

		defs = append(defs, def)
	}

	return defs
}
