package scanner

import "snipgraph.dev/pkg/snipgraph/internal/lexer"

// skipToken advances from i to the first token at the starting depth for
// which stop returns true. Bracketed regions and template interpolations are
// skipped wholesale. The walk also ends, without consuming it, at a closer
// that would leave the starting depth, or at EOF.
func skipToken(toks []lexer.Token, i int, stop func(lexer.Token) bool) int {
	depth := 0

	for ; i < len(toks); i++ {
		tok := toks[i]

		if tok.Kind == lexer.EOF {
			return i
		}

		if depth == 0 && stop(tok) {
			return i
		}

		switch {
		case tok.Opens():
			depth++
		case tok.Closes():
			if depth == 0 {
				return i
			}

			depth--
		}
	}

	return len(toks) - 1
}

func stopAt(kinds ...lexer.Kind) func(lexer.Token) bool {
	return func(t lexer.Token) bool { return t.Is(kinds...) }
}

// skipInitializer advances from the first token of a declarator initializer
// to its end: a comma or semicolon at the starting depth, or a declaration
// on a later line that automatic semicolon insertion separates from the
// initializer.
func skipInitializer(toks []lexer.Token, start int) int {
	depth := 0

	for i := start; i < len(toks); i++ {
		tok := toks[i]

		if tok.Kind == lexer.EOF {
			return i
		}

		if depth == 0 {
			if tok.Is(lexer.Comma, lexer.Semicolon) {
				return i
			}

			if i > start && tok.NewlineBefore && startsDeclaration(toks, i) && !expectsOperand(toks[i-1]) {
				return i
			}
		}

		switch {
		case tok.Opens():
			depth++
		case tok.Closes():
			if depth == 0 {
				return i
			}

			depth--
		}
	}

	return len(toks) - 1
}

// startsDeclaration reports whether toks[i] begins a top-level declaration or
// an import/export statement.
func startsDeclaration(toks []lexer.Token, i int) bool {
	tok := toks[i]
	next := lexer.Token{Kind: lexer.EOF}

	if i+1 < len(toks) {
		next = toks[i+1]
	}

	switch {
	case tok.Is(lexer.Export, lexer.Let, lexer.Const, lexer.Var, lexer.Function, lexer.Class):
		return true
	case tok.Kind == lexer.Import:
		return !next.Is(lexer.OpenParen, lexer.Dot)
	case tok.IsContextual(lexer.Async):
		return next.Kind == lexer.Function && !next.NewlineBefore
	}

	return false
}

// expectsOperand reports whether an expression cannot end at tok, so the
// line after it continues the expression.
func expectsOperand(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.Operator:
		// Postfix increments end an expression.
		return tok.Value != "++" && tok.Value != "--"
	case lexer.Equals, lexer.Star, lexer.Arrow, lexer.Dot, lexer.Colon, lexer.Ellipsis:
		return true
	case lexer.Keyword:
		switch tok.Value {
		case "true", "false", "null", "this", "super":
			return false
		}

		return true
	}

	return false
}
