package scanner

import (
	"log/slog"
	"sort"
	"strings"

	"snipgraph.dev/pkg/snipgraph/internal/lexer"
)

// Result holds the top-level declarations of one module, in source order.
// Locals are the declarations that are not exported.
type Result struct {
	Exports []ExportDeclaration
	Imports []ImportDeclaration
	Locals  []ExportDeclaration
}

// ScanSource tokenizes and scans src. A lexical error is not fatal: the
// tokens recognised before it are still scanned.
func ScanSource(src string) Result {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		slog.Debug("Lexing stopped early, scanning partial token stream", "error", err)
	}

	return Scan(src, toks)
}

// Scan walks toks once and collects top-level export and import declarations.
// src must be the text toks were produced from.
func Scan(src string, toks []lexer.Token) Result {
	if len(toks) == 0 || toks[len(toks)-1].Kind != lexer.EOF {
		toks = append(toks[:len(toks):len(toks)], lexer.Token{Kind: lexer.EOF, Start: len(src), End: len(src)})
	}

	s := &scanner{src: src, toks: toks}

	var res Result

	depth := 0

	for i := 0; toks[i].Kind != lexer.EOF; {
		tok := toks[i]

		if depth == 0 {
			switch tok.Kind {
			case lexer.Export:
				if decl, next, ok := s.parseExport(i); ok {
					res.Exports = append(res.Exports, decl)
					i = next

					continue
				}
			case lexer.Import:
				if decl, next, ok := s.parseImport(i); ok {
					res.Imports = append(res.Imports, decl)
					i = next

					continue
				}
			case lexer.Function, lexer.Class, lexer.Const, lexer.Let, lexer.Var:
				if decl, next, ok := s.parseExportLocal(i, i); ok {
					res.Locals = append(res.Locals, decl)
					i = next

					continue
				}
			case lexer.Identifier:
				if tok.IsContextual(lexer.Async) && toks[i+1].Kind == lexer.Function && !toks[i+1].NewlineBefore {
					if decl, next, ok := s.parseExportLocal(i, i+1); ok {
						res.Locals = append(res.Locals, decl)
						i = next

						continue
					}
				}
			}
		}

		switch {
		case tok.Opens():
			depth++
		case tok.Closes() && depth > 0:
			depth--
		}

		i++
	}

	return res
}

type scanner struct {
	src  string
	toks []lexer.Token
}

// at returns the token at i, or the trailing EOF when i is out of range.
func (s *scanner) at(i int) lexer.Token {
	if i < 0 || i >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}

	return s.toks[i]
}

// text returns the source between the start of token from and the end of
// token to, inclusive.
func (s *scanner) text(from, to int) string {
	if to < from {
		return ""
	}

	return strings.TrimSpace(s.src[s.at(from).Start:s.at(to).End])
}

func (s *scanner) parseExport(i int) (ExportDeclaration, int, bool) {
	j := i + 1
	tok := s.at(j)

	switch {
	case tok.Kind == lexer.Default:
		return s.parseExportDefault(i, j+1)
	case tok.Kind == lexer.OpenBrace:
		return s.parseExportNamed(i, j)
	case tok.Kind == lexer.Star:
		return s.parseExportAll(i, j+1)
	case tok.IsContextual(lexer.Async) && s.at(j+1).Kind == lexer.Function && !s.at(j+1).NewlineBefore:
		return s.parseExportLocal(i, j+1)
	case tok.Is(lexer.Function, lexer.Class, lexer.Const, lexer.Let, lexer.Var):
		return s.parseExportLocal(i, j)
	}

	return ExportDeclaration{}, 0, false
}

func (s *scanner) parseExportDefault(i, k int) (ExportDeclaration, int, bool) {
	decl := ExportDeclaration{Kind: ExportDefault, Start: s.at(i).Start, End: s.at(k - 1).End}
	tok := s.at(k)

	if tok.IsContextual(lexer.Async) && !s.at(k+1).NewlineBefore {
		switch next := s.at(k + 1); {
		case next.Kind == lexer.Function:
			k++
			tok = next
		case next.Kind == lexer.OpenParen, next.Kind == lexer.Identifier && s.at(k+2).Kind == lexer.Arrow:
			if params, ok := s.arrowParams(k + 1); ok {
				decl.Params = params
			}

			return decl, k + 1, true
		}
	}

	switch tok.Kind {
	case lexer.Function:
		decl.Default = DefaultFunction
		decl.Params = []Pattern{}

		k++
		if s.at(k).Kind == lexer.Star {
			k++
		}

		if s.at(k).Kind == lexer.Identifier {
			k++
		}

		if s.at(k).Kind == lexer.OpenParen {
			if params, next, ok := s.parseParams(k); ok {
				decl.Params = params
				decl.End = s.at(next - 1).End

				return decl, next, true
			}
		}

		decl.End = s.at(k - 1).End

		return decl, k, true
	case lexer.Class:
		decl.Default = DefaultClass
		decl.End = tok.End

		return decl, k + 1, true
	}

	decl.Default = DefaultExpression
	if params, ok := s.arrowParams(k); ok {
		decl.Params = params
	}

	return decl, k, true
}

// arrowParams returns the parameters of the arrow function starting at k, or
// false when no arrow function starts there.
func (s *scanner) arrowParams(k int) ([]Pattern, bool) {
	tok := s.at(k)

	if tok.Kind == lexer.Identifier && s.at(k+1).Kind == lexer.Arrow && !s.at(k+1).NewlineBefore {
		return []Pattern{&Identifier{Name: tok.Value}}, true
	}

	if tok.Kind != lexer.OpenParen {
		return nil, false
	}

	closing := skipToken(s.toks, k+1, stopAt(lexer.CloseParen))
	if s.at(closing).Kind != lexer.CloseParen || s.at(closing+1).Kind != lexer.Arrow {
		return nil, false
	}

	params, _, ok := s.parseParams(k)
	if !ok {
		return []Pattern{}, true
	}

	return params, true
}

// parseParams parses a parenthesised parameter list starting at the open
// paren and returns the index after the closing paren.
func (s *scanner) parseParams(open int) ([]Pattern, int, bool) {
	params := []Pattern{}
	p := open + 1

	for {
		if s.at(p).Kind == lexer.CloseParen {
			return params, p + 1, true
		}

		param, next, ok := s.parseBindingElement(p)
		if !ok {
			return nil, 0, false
		}

		params = append(params, param)
		p = next

		// Type annotations of untranspiled TypeScript.
		if s.at(p).Kind == lexer.Colon {
			p = skipToken(s.toks, p+1, stopAt(lexer.Comma))
		}

		switch s.at(p).Kind {
		case lexer.Comma:
			p++
		case lexer.CloseParen:
		default:
			return nil, 0, false
		}
	}
}

func (s *scanner) parseExportNamed(i, open int) (ExportDeclaration, int, bool) {
	decl := ExportDeclaration{Kind: ExportNamed, Start: s.at(i).Start}
	k := open + 1

	for s.at(k).Kind != lexer.CloseBrace {
		local, ok := moduleExportName(s.at(k))
		if !ok {
			return ExportDeclaration{}, 0, false
		}

		k++
		exported := local

		if s.at(k).IsContextual(lexer.As) {
			if exported, ok = moduleExportName(s.at(k + 1)); !ok {
				return ExportDeclaration{}, 0, false
			}

			k += 2
		}

		decl.Specifiers = append(decl.Specifiers, ExportSpecifier{Local: local, Exported: exported})

		switch s.at(k).Kind {
		case lexer.Comma:
			k++
		case lexer.CloseBrace:
		default:
			return ExportDeclaration{}, 0, false
		}
	}

	k++

	if s.at(k).IsContextual(lexer.From) && s.at(k+1).Kind == lexer.String {
		decl.From = s.at(k + 1).Value
		k += 2
	}

	decl.End = s.at(k - 1).End

	return decl, k, true
}

func (s *scanner) parseExportAll(i, k int) (ExportDeclaration, int, bool) {
	decl := ExportDeclaration{Kind: ExportAll, Start: s.at(i).Start}

	if s.at(k).IsContextual(lexer.As) {
		name, ok := moduleExportName(s.at(k + 1))
		if !ok {
			return ExportDeclaration{}, 0, false
		}

		decl.As = name
		k += 2
	}

	if !s.at(k).IsContextual(lexer.From) || s.at(k+1).Kind != lexer.String {
		return ExportDeclaration{}, 0, false
	}

	decl.From = s.at(k + 1).Value
	decl.End = s.at(k + 1).End

	return decl, k + 2, true
}

func (s *scanner) parseExportLocal(i, k int) (ExportDeclaration, int, bool) {
	decl := ExportDeclaration{Kind: ExportLocal, Start: s.at(i).Start}
	tok := s.at(k)

	switch tok.Kind {
	case lexer.Function, lexer.Class:
		decl.DeclKind = DeclFunction
		if tok.Kind == lexer.Class {
			decl.DeclKind = DeclClass
		}

		k++
		if tok.Kind == lexer.Function && s.at(k).Kind == lexer.Star {
			k++
		}

		if s.at(k).Kind != lexer.Identifier {
			return ExportDeclaration{}, 0, false
		}

		decl.Bindings = []Pattern{&Identifier{Name: s.at(k).Value}}
		decl.End = s.at(k).End

		return decl, k + 1, true
	}

	decl.DeclKind = DeclKind(tok.Text)
	k++

	for {
		target, next, ok := s.parseBinding(k)
		if !ok {
			break
		}

		decl.Bindings = append(decl.Bindings, target)
		k = next

		if s.at(k).Kind == lexer.Equals {
			k = skipInitializer(s.toks, k+1)
		}

		if s.at(k).Kind != lexer.Comma {
			break
		}

		k++
	}

	if len(decl.Bindings) == 0 {
		return ExportDeclaration{}, 0, false
	}

	decl.End = s.at(k - 1).End

	return decl, k, true
}

func (s *scanner) parseImport(i int) (ImportDeclaration, int, bool) {
	j := i + 1
	tok := s.at(j)

	switch tok.Kind {
	case lexer.OpenParen, lexer.Dot:
		// import(...) and import.meta
		return ImportDeclaration{}, 0, false
	case lexer.String:
		return ImportDeclaration{Start: s.at(i).Start, End: tok.End, Specifier: tok.Value}, j + 1, true
	}

	isFrom := func(t lexer.Token) bool {
		return t.IsContextual(lexer.From) || t.Is(lexer.Semicolon, lexer.String)
	}

	for k := j; ; k++ {
		k = skipToken(s.toks, k, isFrom)

		from := s.at(k)
		if !from.IsContextual(lexer.From) {
			return ImportDeclaration{}, 0, false
		}

		// `import from from "x"` binds a default named from.
		if spec := s.at(k + 1); spec.Kind == lexer.String && k > j {
			return ImportDeclaration{
				Start:     s.at(i).Start,
				End:       spec.End,
				Clause:    s.text(j, k-1),
				Specifier: spec.Value,
			}, k + 2, true
		}
	}
}

// moduleExportName accepts an IdentifierName or a string literal.
func moduleExportName(t lexer.Token) (string, bool) {
	if t.IsName() || t.Kind == lexer.String {
		return t.Value, true
	}

	return "", false
}

// ExportNames returns the sorted, de-duplicated names the module exports,
// without "default".
func (r Result) ExportNames() []string {
	seen := make(map[string]struct{})

	for _, decl := range r.Exports {
		for _, name := range decl.Names() {
			if name != "default" {
				seen[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// DeclaredNames returns the sorted names bound at the top level by the
// module's own declarations and imports, exported or not.
func (r Result) DeclaredNames() []string {
	seen := make(map[string]struct{})

	for _, decl := range r.Exports {
		if decl.Kind == ExportLocal {
			for _, name := range decl.Names() {
				seen[name] = struct{}{}
			}
		}
	}

	for _, decl := range r.Locals {
		for _, name := range decl.Names() {
			seen[name] = struct{}{}
		}
	}

	for _, def := range r.ImportDefinitions() {
		for _, name := range def.LocalNames() {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// HasDefault reports whether the module has a default export.
func (r Result) HasDefault() bool {
	for _, decl := range r.Exports {
		for _, name := range decl.Names() {
			if name == "default" {
				return true
			}
		}
	}

	return false
}

// DefaultParams returns the names bound by the parameters of the
// default-exported function, or nil when the default export is not a function.
func (r Result) DefaultParams() []string {
	for _, decl := range r.Exports {
		if decl.Kind != ExportDefault || decl.Params == nil {
			continue
		}

		names := []string{}
		for _, p := range decl.Params {
			names = append(names, BoundNames(p)...)
		}

		return names
	}

	return nil
}
