package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/deepnoodle-ai/superpipe"
	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newASTCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Display the syntax tree of the input",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runAST,
	}
	flags := cmd.Flags()
	addInputFlags(flags, "code to parse")
	flags.Bool("rewritten", false, "show the tree after pipe chains are rewritten")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")
	addRewriteFlags(flags)
	return cmd
}

func (a *app) runAST(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(a.v.GetString("output"))
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	opts := append(a.options(), superpipe.WithFilename(in.name))
	program, err := superpipe.Parse(cmd.Context(), in.code, opts...)
	if err != nil {
		return report(cmd, err)
	}
	if a.v.GetBool("rewritten") {
		if program, err = superpipe.RewriteProgram(cmd.Context(), program, opts...); err != nil {
			return report(cmd, err)
		}
	}

	tree := nodeToTree(program)
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, tree)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return err
		}
		return enc.Close()
	}
	printTree(out, tree, 0, useColor(out))
	return nil
}

// treeNode is the serialized form of a syntax tree node.
type treeNode struct {
	Type     string      `json:"type" yaml:"type"`
	Value    any         `json:"value,omitempty" yaml:"value,omitempty"`
	Pos      string      `json:"pos,omitempty" yaml:"pos,omitempty"`
	Children []*treeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func (t *treeNode) add(nodes ...ast.Node) {
	for _, node := range nodes {
		if node != nil {
			t.Children = append(t.Children, nodeToTree(node))
		}
	}
}

// group adds a labelled child holding nodes, used where the role of a child
// is not implied by its position.
func (t *treeNode) group(label string, nodes ...ast.Node) {
	g := &treeNode{Type: label}
	g.add(nodes...)
	if len(g.Children) > 0 {
		t.Children = append(t.Children, g)
	}
}

func exprs[T ast.Node](items []T) []ast.Node {
	nodes := make([]ast.Node, len(items))
	for i, item := range items {
		nodes[i] = item
	}
	return nodes
}

func nodeToTree(node ast.Node) *treeNode {
	result := &treeNode{Type: reflect.TypeOf(node).Elem().Name()}
	if _, ok := node.(*ast.Program); !ok {
		pos := node.Pos()
		result.Pos = fmt.Sprintf("%d:%d", pos.LineNumber(), pos.ColumnNumber())
	}

	switch n := node.(type) {
	case *ast.Program:
		result.add(n.Stmts...)
	case *ast.Block:
		result.add(n.Stmts...)
	case *ast.Var:
		result.Value = n.Name.Name
		result.add(n.Value)
	case *ast.Assign:
		result.add(n.Target, n.Value)
	case *ast.Return:
		if n.Value != nil {
			result.add(n.Value)
		}
	case *ast.Decorator:
		result.add(n.X)
	case *ast.Class:
		result.Value = n.Name.Name
		result.group("Decorators", exprs(n.Decorators)...)
		result.add(exprs(n.Methods)...)
	case *ast.Func:
		if n.Name != nil {
			result.Value = n.Name.Name
		}
		result.group("Decorators", exprs(n.Decorators)...)
		result.group("Params", exprs(n.Params)...)
		if n.Body != nil {
			result.add(n.Body)
		}

	case *ast.Ident:
		result.Value = n.Name
	case *ast.Int:
		result.Value = n.Value
	case *ast.Float:
		result.Value = n.Value
	case *ast.Bool:
		result.Value = n.Value
	case *ast.String:
		result.Value = n.Value
		result.add(exprs(n.Exprs)...)

	case *ast.Prefix:
		result.Value = n.Op
		result.add(n.X)
	case *ast.Spread:
		result.Value = "*"
		if n.Double {
			result.Value = "**"
		}
		result.add(n.X)
	case *ast.Infix:
		result.Value = n.Op
		result.add(n.X, n.Y)
	case *ast.Keyword:
		if n.Name != nil {
			result.Value = n.Name.Name
		}
		result.add(n.Value)
	case *ast.Call:
		result.add(n.Fun)
		result.group("Args", exprs(n.Args)...)
		result.group("Kwargs", exprs(n.Kwargs)...)
	case *ast.GetAttr:
		result.Value = n.Attr.Name
		result.add(n.X)
	case *ast.Index:
		result.add(n.X, n.Index)
	case *ast.Slice:
		result.add(n.X)
		if n.Low != nil {
			result.group("Low", n.Low)
		}
		if n.High != nil {
			result.group("High", n.High)
		}

	case *ast.List:
		result.add(exprs(n.Items)...)
	case *ast.Tuple:
		result.add(exprs(n.Items)...)
	case *ast.Set:
		result.add(exprs(n.Items)...)
	case *ast.Map:
		for _, item := range n.Items {
			pair := &treeNode{Type: "MapItem"}
			if item.Key != nil {
				pair.add(item.Key)
			}
			pair.add(item.Value)
			result.Children = append(result.Children, pair)
		}
	case *ast.Comprehension:
		result.Value = n.Kind.String()
		if n.Kind == ast.MapComp {
			result.add(n.Key, n.Value)
		} else {
			result.add(n.Elt)
		}
		result.add(exprs(n.Generators)...)
	case *ast.ComprehensionFor:
		result.group("Targets", exprs(n.Targets)...)
		result.add(n.Iter)
		result.group("Ifs", exprs(n.Ifs)...)
	}
	return result
}

var treeType = color.New(color.FgCyan)

func printTree(w io.Writer, node *treeNode, depth int, colored bool) {
	line := strings.Repeat("  ", depth)
	if colored {
		line += treeType.Sprint(node.Type)
	} else {
		line += node.Type
	}
	if node.Value != nil {
		line += " " + fmt.Sprintf("%v", node.Value)
	}
	if node.Pos != "" {
		line += " (" + node.Pos + ")"
	}
	fmt.Fprintln(w, line)
	for _, child := range node.Children {
		printTree(w, child, depth+1, colored)
	}
}
