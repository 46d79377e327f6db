// Package lexer turns JavaScript and TypeScript source into a flat token
// stream for the declaration scanner.
//
// The lexer does not build any syntax tree. It only knows enough of the
// grammar to split the input correctly: string, template and regular
// expression literals are recognised as single tokens (template literals with
// substitutions are split into head/middle/tail pieces so the scanner can
// treat interpolations as nested regions), comments are dropped, and every
// token records whether a line terminator preceded it.
//
// Contextual keywords such as `as` and `from` are reported as identifiers
// carrying a Contextual tag, so consumers never compare raw token text to
// recognise them.
package lexer

import "fmt"

// Kind is the category of a token.
type Kind uint8

const (
	// EOF terminates every token stream.
	EOF Kind = iota
	Identifier
	PrivateName
	Keyword
	String
	Number
	Regex
	Template       // `...` without substitutions
	TemplateHead   // `...${
	TemplateMiddle // }...${
	TemplateTail   // }...`

	OpenBrace
	CloseBrace
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	Comma
	Semicolon
	Colon
	Dot
	Ellipsis
	Arrow
	Equals
	Star
	Operator

	// Reserved words the scanner dispatches on. Every other reserved word is
	// reported as Keyword.
	Export
	Import
	Default
	Function
	Class
	Const
	Let
	Var
)

var kindNames = [...]string{
	EOF:            "EOF",
	Identifier:     "Identifier",
	PrivateName:    "PrivateName",
	Keyword:        "Keyword",
	String:         "String",
	Number:         "Number",
	Regex:          "Regex",
	Template:       "Template",
	TemplateHead:   "TemplateHead",
	TemplateMiddle: "TemplateMiddle",
	TemplateTail:   "TemplateTail",
	OpenBrace:      "{",
	CloseBrace:     "}",
	OpenParen:      "(",
	CloseParen:     ")",
	OpenBracket:    "[",
	CloseBracket:   "]",
	Comma:          ",",
	Semicolon:      ";",
	Colon:          ":",
	Dot:            ".",
	Ellipsis:       "...",
	Arrow:          "=>",
	Equals:         "=",
	Star:           "*",
	Operator:       "Operator",
	Export:         "export",
	Import:         "import",
	Default:        "default",
	Function:       "function",
	Class:          "class",
	Const:          "const",
	Let:            "let",
	Var:            "var",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Contextual tags identifiers that act as keywords only in some positions.
type Contextual uint8

const (
	NotContextual Contextual = iota
	As
	From
	Async
	Of
	Get
	Set
	Static
)

var contextualWords = map[string]Contextual{
	"as":     As,
	"from":   From,
	"async":  Async,
	"of":     Of,
	"get":    Get,
	"set":    Set,
	"static": Static,
}

var reservedWords = map[string]Kind{
	"export":   Export,
	"import":   Import,
	"default":  Default,
	"function": Function,
	"class":    Class,
	"const":    Const,
	"let":      Let,
	"var":      Var,

	"await":      Keyword,
	"break":      Keyword,
	"case":       Keyword,
	"catch":      Keyword,
	"continue":   Keyword,
	"debugger":   Keyword,
	"delete":     Keyword,
	"do":         Keyword,
	"else":       Keyword,
	"enum":       Keyword,
	"extends":    Keyword,
	"false":      Keyword,
	"finally":    Keyword,
	"for":        Keyword,
	"if":         Keyword,
	"in":         Keyword,
	"instanceof": Keyword,
	"new":        Keyword,
	"null":       Keyword,
	"return":     Keyword,
	"super":      Keyword,
	"switch":     Keyword,
	"this":       Keyword,
	"throw":      Keyword,
	"true":       Keyword,
	"try":        Keyword,
	"typeof":     Keyword,
	"void":       Keyword,
	"while":      Keyword,
	"with":       Keyword,
	"yield":      Keyword,
}

// Token is a single lexical element.
type Token struct {
	Kind       Kind
	Contextual Contextual

	// Text is the verbatim source slice of the token.
	Text string
	// Value is the decoded string for String tokens and the escape-free name
	// for identifiers. For every other kind it equals Text.
	Value string

	Start  int // byte offset, inclusive
	End    int // byte offset, exclusive
	Line   int // 1-based
	Column int // 0-based, in bytes

	// NewlineBefore reports whether a line terminator appeared between the
	// previous token and this one.
	NewlineBefore bool
}

// Is reports whether the token has one of the given kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}

	return false
}

// IsContextual reports whether the token is an identifier used as the given
// contextual keyword.
func (t Token) IsContextual(c Contextual) bool {
	return t.Kind == Identifier && t.Contextual == c
}

// IsName reports whether the token can stand where an IdentifierName is
// allowed (export specifiers, property keys): any identifier or reserved word.
func (t Token) IsName() bool {
	return t.Kind == Identifier || t.Kind == Keyword || t.Kind >= Export
}

// Opens reports whether the token starts a nested region.
func (t Token) Opens() bool {
	return t.Is(OpenBrace, OpenParen, OpenBracket, TemplateHead)
}

// Closes reports whether the token ends a nested region.
func (t Token) Closes() bool {
	return t.Is(CloseBrace, CloseParen, CloseBracket, TemplateTail)
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "EOF"
	}

	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// Error is a lexical error anchored at the start of the offending token.
type Error struct {
	Msg    string
	Offset int
	Line   int
	Column int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}
