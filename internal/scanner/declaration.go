// Package scanner extracts the top-level export and import declarations of a
// JavaScript module from its token stream.
//
// The scanner is not a parser. It recognises the handful of declaration
// shapes that matter for dependency tracking and skips everything else with a
// balanced walk over brackets and template interpolations. Constructs it
// cannot make sense of are dropped silently.
package scanner

// ExportKind is the shape of an export declaration.
type ExportKind int

const (
	// ExportDefault is `export default <function|class|expression>`.
	ExportDefault ExportKind = iota
	// ExportNamed is `export { a, b as c } [from "x"]`.
	ExportNamed
	// ExportAll is `export * [as ns] from "x"`.
	ExportAll
	// ExportLocal is `export <function|class|const|let|var> ...`.
	ExportLocal
)

func (k ExportKind) String() string {
	switch k {
	case ExportDefault:
		return "default"
	case ExportNamed:
		return "named"
	case ExportAll:
		return "all"
	case ExportLocal:
		return "local"
	default:
		return "unknown"
	}
}

// DefaultKind is the shape of the value behind `export default`.
type DefaultKind int

const (
	DefaultExpression DefaultKind = iota
	DefaultFunction
	DefaultClass
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultFunction:
		return "function"
	case DefaultClass:
		return "class"
	default:
		return "expression"
	}
}

// DeclKind is the keyword of a local export declaration.
type DeclKind string

const (
	DeclFunction DeclKind = "function"
	DeclClass    DeclKind = "class"
	DeclConst    DeclKind = "const"
	DeclLet      DeclKind = "let"
	DeclVar      DeclKind = "var"
)

// ExportSpecifier is one entry of an export clause.
type ExportSpecifier struct {
	Local    string
	Exported string
}

// ExportDeclaration is a top-level export statement. Start and End are byte
// offsets of the recognised head of the statement.
type ExportDeclaration struct {
	Kind  ExportKind
	Start int
	End   int

	// Default is set for ExportDefault.
	Default DefaultKind
	// Params holds the parameter patterns of a default-exported function,
	// arrow function included. Nil when the default export is not a function.
	Params []Pattern

	// DeclKind and Bindings are set for ExportLocal. Function and class
	// declarations bind a single Identifier.
	DeclKind DeclKind
	Bindings []Pattern

	// Specifiers is set for ExportNamed.
	Specifiers []ExportSpecifier

	// From is the module specifier of a re-export.
	From string
	// As is the namespace name of `export * as ns from "x"`.
	As string
}

// Names returns the exported names the declaration introduces.
func (d ExportDeclaration) Names() []string {
	switch d.Kind {
	case ExportDefault:
		return []string{"default"}
	case ExportNamed:
		names := make([]string, 0, len(d.Specifiers))
		for _, s := range d.Specifiers {
			names = append(names, s.Exported)
		}

		return names
	case ExportAll:
		if d.As != "" {
			return []string{d.As}
		}

		return nil
	case ExportLocal:
		var names []string
		for _, b := range d.Bindings {
			names = append(names, BoundNames(b)...)
		}

		return names
	}

	return nil
}

// ImportDeclaration is a top-level static import. Clause holds the raw text
// between `import` and `from`, empty for a side-effect import.
type ImportDeclaration struct {
	Start     int
	End       int
	Clause    string
	Specifier string
}
