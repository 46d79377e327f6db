package scanner

import "snipgraph.dev/pkg/snipgraph/internal/lexer"

// parseBinding parses a binding identifier or a destructuring pattern at p.
func (s *scanner) parseBinding(p int) (Pattern, int, bool) {
	switch tok := s.at(p); tok.Kind {
	case lexer.Identifier:
		return &Identifier{Name: tok.Value}, p + 1, true
	case lexer.OpenBracket:
		return s.parseArrayPattern(p)
	case lexer.OpenBrace:
		return s.parseObjectPattern(p)
	}

	return nil, 0, false
}

// parseBindingElement parses a binding with an optional default value, or a
// rest element.
func (s *scanner) parseBindingElement(p int) (Pattern, int, bool) {
	if s.at(p).Kind == lexer.Ellipsis {
		arg, next, ok := s.parseBinding(p + 1)
		if !ok {
			return nil, 0, false
		}

		return &RestElement{Argument: arg}, next, true
	}

	target, next, ok := s.parseBinding(p)
	if !ok {
		return nil, 0, false
	}

	return s.withDefault(target, next)
}

// withDefault wraps target in an AssignmentPattern when an initializer
// follows at p.
func (s *scanner) withDefault(target Pattern, p int) (Pattern, int, bool) {
	if s.at(p).Kind != lexer.Equals {
		return target, p, true
	}

	end := skipToken(s.toks, p+1, stopAt(lexer.Comma))
	if end == p+1 {
		return nil, 0, false
	}

	return &AssignmentPattern{Left: target, Default: s.text(p+1, end-1)}, end, true
}

func (s *scanner) parseArrayPattern(open int) (Pattern, int, bool) {
	arr := &ArrayPattern{}
	p := open + 1

	for {
		switch s.at(p).Kind {
		case lexer.CloseBracket:
			return arr, p + 1, true
		case lexer.Comma:
			arr.Elements = append(arr.Elements, nil)
			p++

			continue
		}

		el, next, ok := s.parseBindingElement(p)
		if !ok {
			return nil, 0, false
		}

		arr.Elements = append(arr.Elements, el)
		p = next

		switch s.at(p).Kind {
		case lexer.Comma:
			p++
		case lexer.CloseBracket:
		default:
			return nil, 0, false
		}
	}
}

func (s *scanner) parseObjectPattern(open int) (Pattern, int, bool) {
	obj := &ObjectPattern{}
	p := open + 1

	for s.at(p).Kind != lexer.CloseBrace {
		var (
			prop Pattern
			next int
			ok   bool
		)

		if s.at(p).Kind == lexer.Ellipsis {
			prop, next, ok = s.parseBindingElement(p)
		} else {
			prop, next, ok = s.parseProperty(p)
		}

		if !ok {
			return nil, 0, false
		}

		obj.Properties = append(obj.Properties, prop)
		p = next

		switch s.at(p).Kind {
		case lexer.Comma:
			p++
		case lexer.CloseBrace:
		default:
			return nil, 0, false
		}
	}

	return obj, p + 1, true
}

func (s *scanner) parseProperty(p int) (Pattern, int, bool) {
	tok := s.at(p)
	prop := &Property{Key: tok.Value}

	switch {
	case tok.Kind == lexer.String:
		prop.KeyKind = KeyString
	case tok.Kind == lexer.Number:
		prop.KeyKind = KeyNumber
	case tok.Kind == lexer.OpenBracket:
		closing := skipToken(s.toks, p+1, stopAt(lexer.CloseBracket))
		if s.at(closing).Kind != lexer.CloseBracket {
			return nil, 0, false
		}

		prop.KeyKind = KeyComputed
		prop.Computed = true
		prop.Key = s.text(p+1, closing-1)
		p = closing
	case tok.IsName():
		prop.KeyKind = KeyIdentifier
	default:
		return nil, 0, false
	}

	p++

	if s.at(p).Kind == lexer.Colon {
		value, next, ok := s.parseBindingElement(p + 1)
		if !ok {
			return nil, 0, false
		}

		prop.Value = value

		return prop, next, true
	}

	// Shorthand `{a}` or `{a = 1}` needs a plain identifier key.
	if tok.Kind != lexer.Identifier {
		return nil, 0, false
	}

	value, next, ok := s.withDefault(&Identifier{Name: tok.Value}, p)
	if !ok {
		return nil, 0, false
	}

	prop.Value = value

	return prop, next, true
}
