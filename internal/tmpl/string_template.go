// Package tmpl splits template strings into literal text and `${expr}`
// interpolation fragments.
package tmpl

import "fmt"

// Fragment is one piece of a template: either literal text or the source
// text of an interpolated expression.
type Fragment struct {
	value      string
	isVariable bool
}

// Value returns the fragment text. For variables this is the expression
// source without the surrounding "${" and "}".
func (f *Fragment) Value() string {
	return f.value
}

// IsVariable returns true if the fragment is an interpolated expression.
func (f *Fragment) IsVariable() bool {
	return f.isVariable
}

// Template is a parsed template string.
type Template struct {
	value     string
	fragments []*Fragment
}

// Value returns the original template text.
func (t *Template) Value() string {
	return t.value
}

// Fragments returns the template fragments in source order.
func (t *Template) Fragments() []*Fragment {
	return t.fragments
}

// Parse splits s into fragments. Braces nested inside an interpolation are
// balanced and quoted strings are skipped, so "${ {a: 1}[a] }" and
// `${"}"}` are single variable fragments.
func Parse(s string) (*Template, error) {
	t := &Template{value: s}
	var text []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 >= len(s) || s[i+1] != '{' {
			text = append(text, s[i])
			continue
		}
		end := closingBrace(s, i+2)
		if end < 0 {
			return nil, fmt.Errorf("missing '}' in template: %s", s)
		}
		if len(text) > 0 {
			t.fragments = append(t.fragments, &Fragment{value: string(text)})
			text = nil
		}
		t.fragments = append(t.fragments, &Fragment{value: s[i+2 : end], isVariable: true})
		i = end
	}
	if len(text) > 0 {
		t.fragments = append(t.fragments, &Fragment{value: string(text)})
	}
	return t, nil
}

// closingBrace returns the index of the "}" that closes the hole starting at
// start. Braces inside quoted strings in the hole are ignored.
func closingBrace(s string, start int) int {
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
