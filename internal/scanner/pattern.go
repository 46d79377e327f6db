package scanner

// Pattern is a binding target: an identifier or a destructuring pattern.
type Pattern interface {
	pattern()
}

// Identifier binds a single name.
type Identifier struct {
	Name string
}

// ArrayPattern is `[a, , b]`. Holes are nil.
type ArrayPattern struct {
	Elements []Pattern
}

// KeyKind classifies the key of an object pattern property.
type KeyKind int

const (
	KeyIdentifier KeyKind = iota
	KeyString
	KeyNumber
	KeyComputed
)

// Property is one `key: value` entry of an object pattern. Shorthand
// properties have Value set to the Identifier of the key.
type Property struct {
	Key      string
	KeyKind  KeyKind
	Computed bool
	Value    Pattern
}

// ObjectPattern is `{a, b: c, ...rest}`. Properties holds *Property and
// *RestElement entries.
type ObjectPattern struct {
	Properties []Pattern
}

// AssignmentPattern is `left = default`. Default is the raw initializer text.
type AssignmentPattern struct {
	Left    Pattern
	Default string
}

// RestElement is `...arg`.
type RestElement struct {
	Argument Pattern
}

func (*Identifier) pattern()        {}
func (*ArrayPattern) pattern()      {}
func (*Property) pattern()          {}
func (*ObjectPattern) pattern()     {}
func (*AssignmentPattern) pattern() {}
func (*RestElement) pattern()       {}

// BoundNames flattens a pattern to the identifier names it binds, in source
// order. Property keys never bind; only their values do, whatever the key
// kind.
func BoundNames(p Pattern) []string {
	var names []string

	collectNames(p, &names)

	return names
}

func collectNames(p Pattern, names *[]string) {
	switch p := p.(type) {
	case *Identifier:
		if p != nil && p.Name != "" {
			*names = append(*names, p.Name)
		}
	case *ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				collectNames(el, names)
			}
		}
	case *ObjectPattern:
		for _, prop := range p.Properties {
			collectNames(prop, names)
		}
	case *Property:
		if p.Value != nil {
			collectNames(p.Value, names)
		}
	case *AssignmentPattern:
		collectNames(p.Left, names)
	case *RestElement:
		collectNames(p.Argument, names)
	}
}
