package pipes

import (
	"slices"
	"sort"
	"strings"

	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/internal/lexer"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

// span is a half-open byte range of the source.
type span struct {
	start, end int
}

type edit struct {
	span
	text string
}

// template is a template string whose holes contain pipe chains. Positions
// inside holes are relative to the hole, so the whole string is replaced.
type template struct {
	str   *ast.String
	span  span
	pipes []*ast.Infix
}

// splicer maps rewritten chains back onto the original source. Only the
// chains that were reduced and the decorators that were removed change;
// everything else, comments and blank lines included, is copied through.
type splicer struct {
	source    string
	tokens    []token.Token
	pipes     map[*ast.Infix]span
	templates []template
	results   map[*ast.Infix]ast.Expr
	edits     []edit
}

func newSplicer(source string, program *ast.Program) *splicer {
	s := &splicer{
		source:  source,
		pipes:   map[*ast.Infix]span{},
		results: map[*ast.Infix]ast.Expr{},
	}
	l := lexer.New(source)
	for {
		tok, err := l.Next()
		if err != nil || tok.Type == token.EOF {
			break
		}
		s.tokens = append(s.tokens, tok)
	}
	ast.Inspect(program, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Infix:
			if _, ok := DirectionOf(n.Op); ok {
				s.pipes[n] = s.widen(span{n.Pos().Char, n.End().Char})
			}
		case *ast.String:
			if n.Template == nil {
				return true
			}
			if inner := pipesIn(n); len(inner) > 0 {
				s.templates = append(s.templates, template{
					str:   n,
					span:  span{n.Pos().Char, n.End().Char},
					pipes: inner,
				})
			}
			return false
		}
		return true
	})
	return s
}

func pipesIn(str *ast.String) []*ast.Infix {
	var found []*ast.Infix
	for _, expr := range str.Exprs {
		ast.Inspect(expr, func(node ast.Node) bool {
			if n, ok := node.(*ast.Infix); ok {
				if _, ok := DirectionOf(n.Op); ok {
					found = append(found, n)
				}
			}
			return true
		})
	}
	return found
}

// widen grows sp until the parentheses inside it balance. Grouping
// parentheses are not part of the tree, so "(a) >> f" starts at "a" and
// "v >> (f)" ends at "f".
func (s *splicer) widen(sp span) span {
	i := sort.Search(len(s.tokens), func(n int) bool { return s.tokens[n].StartPosition.Char >= sp.start })
	j := sort.Search(len(s.tokens), func(n int) bool { return s.tokens[n].StartPosition.Char >= sp.end })
	var open, unopened int
	for _, tok := range s.tokens[i:j] {
		switch tok.Type {
		case token.LPAREN:
			open++
		case token.RPAREN:
			if open > 0 {
				open--
			} else {
				unopened++
			}
		}
	}
	for k, nested := i-1, 0; unopened > 0 && k >= 0; k-- {
		switch s.tokens[k].Type {
		case token.RPAREN:
			nested++
		case token.LPAREN:
			if nested > 0 {
				nested--
				continue
			}
			unopened--
			sp.start = s.tokens[k].StartPosition.Char
		}
	}
	for k, nested := j, 0; open > 0 && k < len(s.tokens); k++ {
		switch s.tokens[k].Type {
		case token.LPAREN:
			nested++
		case token.RPAREN:
			if nested > 0 {
				nested--
				continue
			}
			open--
			sp.end = s.tokens[k].EndPosition.Char
		}
	}
	return sp
}

func (s *splicer) reduced(pipe *ast.Infix, result ast.Expr) {
	s.results[pipe] = result
}

// removeDecorator drops d and the blanks after it. A decorator alone on its
// line leaves an empty line behind.
func (s *splicer) removeDecorator(d *ast.Decorator) {
	start, end := d.At.Char, d.End().Char
	if start < 0 || start > end || end > len(s.source) {
		return
	}
	if ls := d.At.LineStart; ls >= 0 && ls <= start && strings.TrimLeft(s.source[ls:start], " \t") == "" {
		start = ls
	}
	for end < len(s.source) && (s.source[end] == ' ' || s.source[end] == '\t') {
		end++
	}
	s.edits = append(s.edits, edit{span: span{start, end}})
}

// output applies the recorded changes to the source. A replacement with
// fewer lines than the text it replaces is parenthesized and padded with
// newlines, which are insignificant inside parentheses, so that the lines
// after it keep their numbers.
func (s *splicer) output() string {
	edits := slices.Clone(s.edits)
	for pipe, sp := range s.pipes {
		if result, ok := s.results[pipe]; ok {
			edits = append(edits, edit{span: sp, text: result.String()})
		}
	}
	for _, t := range s.templates {
		for _, pipe := range t.pipes {
			if _, ok := s.results[pipe]; ok {
				edits = append(edits, edit{span: t.span, text: t.str.String()})
				break
			}
		}
	}
	slices.SortFunc(edits, func(a, b edit) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return b.end - a.end
	})
	var out strings.Builder
	pos := 0
	for _, e := range edits {
		// Nested chains are part of the enclosing replacement.
		if e.start < pos {
			continue
		}
		out.WriteString(s.source[pos:e.start])
		out.WriteString(s.pad(e))
		pos = e.end
	}
	out.WriteString(s.source[pos:])
	return out.String()
}

func (s *splicer) pad(e edit) string {
	lost := strings.Count(s.source[e.start:e.end], "\n") - strings.Count(e.text, "\n")
	switch {
	case lost <= 0:
		return e.text
	case e.text == "":
		return strings.Repeat("\n", lost)
	}
	return "(" + e.text + strings.Repeat("\n", lost) + ")"
}
