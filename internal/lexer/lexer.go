package lexer

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// punctuators are matched longest first. '/', '{' and '}' are handled
// separately because their meaning depends on context.
var punctuators = []string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "%=", "&=", "|=", "^=", "**", "<<", ">>",
	"(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "%",
	"&", "|", "^", "!", "~", "?", ":", "=", ".", "@",
}

var punctuatorKinds = map[string]Kind{
	"(":   OpenParen,
	")":   CloseParen,
	"[":   OpenBracket,
	"]":   CloseBracket,
	";":   Semicolon,
	",":   Comma,
	":":   Colon,
	".":   Dot,
	"?.":  Dot,
	"...": Ellipsis,
	"=>":  Arrow,
	"=":   Equals,
	"*":   Star,
}

// Lexer scans a single source text. A Lexer is not safe for concurrent use
// and is meant to be used once.
type Lexer struct {
	src        string
	pos        int
	lineStarts []int

	tokens  []Token
	braces  []bool // one entry per open '{' or '${'; true marks a template interpolation
	newline bool
}

// New returns a lexer for src.
func New(src string) *Lexer {
	starts := []int{0}

	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &Lexer{src: src, lineStarts: starts}
}

// Tokenize scans src and returns its tokens, always terminated by EOF.
func Tokenize(src string) ([]Token, error) {
	return New(src).Tokenize()
}

// Tokenize scans the whole input. On a lexical error it returns the tokens
// recognised before the error, terminated by EOF, together with an *Error.
func (l *Lexer) Tokenize() ([]Token, error) {
	if strings.HasPrefix(l.src, "#!") {
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
	}

	for {
		if err := l.skipTrivia(); err != nil {
			l.emit(EOF, len(l.src), len(l.src))
			return l.tokens, err
		}

		if l.pos >= len(l.src) {
			l.emit(EOF, l.pos, l.pos)
			return l.tokens, nil
		}

		if err := l.scanToken(); err != nil {
			l.emit(EOF, len(l.src), len(l.src))
			return l.tokens, err
		}
	}
}

func (l *Lexer) position(offset int) (int, int) {
	line := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > offset })
	return line, offset - l.lineStarts[line-1]
}

func (l *Lexer) errorAt(offset int, msg string) *Error {
	line, col := l.position(offset)
	return &Error{Msg: msg, Offset: offset, Line: line, Column: col}
}

func (l *Lexer) emit(kind Kind, start, end int) *Token {
	line, col := l.position(start)
	text := l.src[start:end]
	l.tokens = append(l.tokens, Token{
		Kind:          kind,
		Text:          text,
		Value:         text,
		Start:         start,
		End:           end,
		Line:          line,
		Column:        col,
		NewlineBefore: l.newline,
	})
	l.newline = false

	return &l.tokens[len(l.tokens)-1]
}

func (l *Lexer) previous() (Token, bool) {
	if len(l.tokens) == 0 {
		return Token{}, false
	}

	return l.tokens[len(l.tokens)-1], true
}

func (l *Lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == '\n' || c == '\r':
			l.newline = true
			l.pos++
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			l.pos++
		case c == '/' && l.peek(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
				l.pos++
			}
		case c == '/' && l.peek(1) == '*':
			start := l.pos
			end := strings.Index(l.src[l.pos+2:], "*/")

			if end < 0 {
				l.pos = len(l.src)
				return l.errorAt(start, "unterminated block comment")
			}

			if strings.ContainsAny(l.src[l.pos:l.pos+2+end], "\n\r\u2028\u2029") {
				l.newline = true
			}

			l.pos += end + 4
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if r == '\u2028' || r == '\u2029' {
				l.newline = true
			} else if !unicode.IsSpace(r) && r != '\ufeff' {
				return nil
			}

			l.pos += size
		default:
			return nil
		}
	}

	return nil
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}

	return 0
}

func (l *Lexer) scanToken() error {
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isIdentStart(c) || c == '\\' || c >= utf8.RuneSelf:
		return l.scanIdentifier()
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.scanNumber()
		return nil
	case c == '"' || c == '\'':
		return l.scanString(c)
	case c == '`':
		l.pos++
		return l.scanTemplate(start, true)
	case c == '#':
		l.pos++
		if l.pos >= len(l.src) || !isIdentStart(l.src[l.pos]) {
			return l.errorAt(start, "unexpected character '#'")
		}

		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}

		l.emit(PrivateName, start, l.pos)

		return nil
	case c == '{':
		l.braces = append(l.braces, false)
		l.pos++
		l.emit(OpenBrace, start, l.pos)

		return nil
	case c == '}':
		l.pos++

		if n := len(l.braces); n > 0 {
			interpolation := l.braces[n-1]
			l.braces = l.braces[:n-1]

			if interpolation {
				return l.scanTemplate(start, false)
			}
		}

		l.emit(CloseBrace, start, l.pos)

		return nil
	case c == '/':
		if l.regexAllowed() {
			return l.scanRegex()
		}

		l.pos++
		if l.peek(0) == '=' {
			l.pos++
		}

		l.emit(Operator, start, l.pos)

		return nil
	}

	for _, p := range punctuators {
		if !strings.HasPrefix(l.src[l.pos:], p) {
			continue
		}

		// `a?.5:b` is a conditional, not optional chaining.
		if p == "?." && isDigit(l.peek(2)) {
			continue
		}

		l.pos += len(p)

		kind, ok := punctuatorKinds[p]
		if !ok {
			kind = Operator
		}

		l.emit(kind, start, l.pos)

		return nil
	}

	return l.errorAt(start, "unexpected character "+strconv.QuoteRune(rune(c)))
}

func (l *Lexer) scanIdentifier() error {
	start := l.pos

	var (
		decoded strings.Builder
		escaped bool
	)

scan:
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case isIdentPart(c):
			decoded.WriteByte(c)
			l.pos++
		case c == '\\':
			r, ok := l.scanUnicodeEscape()
			if !ok {
				return l.errorAt(l.pos, "invalid escape in identifier")
			}

			escaped = true

			decoded.WriteRune(r)
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentRune(r, l.pos == start) {
				if l.pos == start {
					return l.errorAt(start, "unexpected character "+strconv.QuoteRune(r))
				}

				break scan
			}

			decoded.WriteRune(r)
			l.pos += size
		default:
			break scan
		}
	}

	name := decoded.String()
	kind := Identifier

	// Names after a member access are plain property names.
	prev, hasPrev := l.previous()
	member := hasPrev && prev.Kind == Dot

	if k, ok := reservedWords[name]; ok && !escaped && !member {
		kind = k
	}

	tok := l.emit(kind, start, l.pos)
	tok.Value = name

	if kind == Identifier && !member {
		tok.Contextual = contextualWords[name]
	}

	return nil
}

// scanUnicodeEscape consumes `\uXXXX` or `\u{X...}` at the current position.
func (l *Lexer) scanUnicodeEscape() (rune, bool) {
	if l.peek(1) != 'u' {
		return 0, false
	}

	l.pos += 2

	var digits string

	if l.peek(0) == '{' {
		end := strings.IndexByte(l.src[l.pos:], '}')
		if end < 0 {
			return 0, false
		}

		digits = l.src[l.pos+1 : l.pos+end]
		l.pos += end + 1
	} else {
		if l.pos+4 > len(l.src) {
			return 0, false
		}

		digits = l.src[l.pos : l.pos+4]
		l.pos += 4
	}

	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, false
	}

	return rune(n), true
}

func (l *Lexer) scanNumber() {
	start := l.pos

	if l.src[l.pos] == '0' && strings.ContainsRune("xXoObB", rune(l.peek(1))) {
		l.pos += 2
		for l.pos < len(l.src) && (isHex(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	} else {
		l.digits()

		if l.peek(0) == '.' {
			l.pos++
			l.digits()
		}

		if c := l.peek(0); c == 'e' || c == 'E' {
			next := l.peek(1)
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
				l.pos += 2
				l.digits()
			}
		}
	}

	if l.peek(0) == 'n' {
		l.pos++
	}

	l.emit(Number, start, l.pos)
}

func (l *Lexer) digits() {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
}

func (l *Lexer) scanString(quote byte) error {
	start := l.pos
	l.pos++

	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case quote:
			l.pos++
			tok := l.emit(String, start, l.pos)
			tok.Value = unescape(l.src[start+1 : l.pos-1])

			return nil
		case '\\':
			l.pos += 2
		case '\n', '\r':
			return l.errorAt(start, "unterminated string literal")
		default:
			l.pos++
		}
	}

	return l.errorAt(start, "unterminated string literal")
}

// scanTemplate scans template characters after "`" (head) or after the "}"
// closing an interpolation.
func (l *Lexer) scanTemplate(start int, head bool) error {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == '\\':
			l.pos += 2
		case c == '`':
			l.pos++

			kind := TemplateTail
			if head {
				kind = Template
			}

			l.emit(kind, start, l.pos)

			return nil
		case c == '$' && l.peek(1) == '{':
			l.pos += 2
			l.braces = append(l.braces, true)

			kind := TemplateMiddle
			if head {
				kind = TemplateHead
			}

			l.emit(kind, start, l.pos)

			return nil
		default:
			l.pos++
		}
	}

	return l.errorAt(start, "unterminated template literal")
}

func (l *Lexer) regexAllowed() bool {
	prev, ok := l.previous()
	if !ok {
		return true
	}

	switch prev.Kind {
	case Identifier, PrivateName, Number, String, Regex, Template, TemplateTail, CloseParen, CloseBracket:
		return false
	case Keyword:
		switch prev.Value {
		case "this", "super", "null", "true", "false":
			return false
		}

		return true
	case Operator:
		return prev.Text != "++" && prev.Text != "--"
	}

	return true
}

func (l *Lexer) scanRegex() error {
	start := l.pos
	l.pos++

	inClass := false

	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; c {
		case '\\':
			l.pos += 2
			continue
		case '\n', '\r':
			return l.errorAt(start, "unterminated regular expression")
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				l.pos++
				for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
					l.pos++
				}

				l.emit(Regex, start, l.pos)

				return nil
			}
		}

		l.pos++
	}

	return l.errorAt(start, "unterminated regular expression")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isIdentRune(r rune, first bool) bool {
	if unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) {
		return true
	}

	if first {
		return false
	}

	return unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc) || r == '\u200c' || r == '\u200d'
}

// unescape decodes the escape sequences of a string literal body. Sequences
// it does not understand are kept verbatim.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}

		i++

		switch c := s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(n))
					i += 2

					continue
				}
			}

			b.WriteString(`\x`)
		case 'u':
			r, width := decodeUnicode(s[i+1:])
			if width == 0 {
				b.WriteString(`\u`)
				continue
			}

			b.WriteRune(r)
			i += width
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func decodeUnicode(s string) (rune, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0
		}

		n, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil {
			return 0, 0
		}

		return rune(n), end + 1
	}

	if len(s) < 4 {
		return 0, 0
	}

	n, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0
	}

	return rune(n), 4
}
