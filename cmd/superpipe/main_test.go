package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const decorated = `@pipes
function f(v) {
	return v >> g(1) >> [_, *_]
}
let y = v >> g
`

func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "superpipe-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)
	homedir.DisableCache = true
	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	a := newApp()
	var stdout, stderr bytes.Buffer
	a.root.SetIn(strings.NewReader(stdin))
	a.root.SetOut(&stdout)
	a.root.SetErr(&stderr)
	err := a.run(context.Background(), append(args, "--no-color"))
	return stdout.String(), stderr.String(), err
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireExit(t *testing.T, err error, code int) {
	t.Helper()
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, code, exit.code)
}

func TestRewriteCode(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"rewrite", "--all", "-c", "x >> f >> g(1)"}, "g(f(x), 1)\n"},
		{[]string{"rewrite", "-c", "x >> f"}, "x >> f\n"},
		{[]string{"rewrite", "--all", "-c", "# note\n(x) >> f # call"}, "# note\nf(x) # call\n"},
		{[]string{"rw", "--all", "-c", "v >> _ + 1"}, "(v + 1)\n"},
		{[]string{"rewrite", "--all", "--placeholder", "it", "-c", "v >> g(it)"}, "g(v)\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)
			require.Nil(t, err)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestRewriteStdin(t *testing.T) {
	stdout, _, err := execute(t, decorated, "rewrite", "--stdin")
	require.Nil(t, err)
	assert.Equal(t, "\nfunction f(v) {\n\treturn [g(v, 1), *g(v, 1)]\n}\nlet y = v >> g\n", stdout)
}

func TestRewriteInputErrors(t *testing.T) {
	tests := []struct {
		args []string
		msg  string
	}{
		{[]string{"rewrite"}, "no input (pass a file, --code or --stdin)"},
		{[]string{"rewrite", "-c", "x", "--stdin"}, "multiple input sources specified"},
		{[]string{"rewrite", "-w", "-c", "x"}, "--write and --list require file arguments"},
		{[]string{"rewrite", "--stdin", "-l"}, "--write and --list require file arguments"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.NotNil(t, err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestRewriteReportsErrors(t *testing.T) {
	stdout, stderr, err := execute(t, "", "rewrite", "-c", "let = 1")
	requireExit(t, err, 1)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "E1001")
	assert.Contains(t, stderr, "<code>:1:5")
	assert.Contains(t, stderr, "let = 1")
}

func TestRewriteActivationError(t *testing.T) {
	_, stderr, err := execute(t, "", "rewrite", "-c", "@pipes\n@memoize\nfunction f(v) {\n\treturn v >> g\n}")
	requireExit(t, err, 1)
	assert.Contains(t, stderr, "E2002")
	assert.Contains(t, stderr, "hint: move @pipes so that it is the last decorator")
}

func TestRewriteFilesWrite(t *testing.T) {
	dir := t.TempDir()
	good := writeTestFile(t, dir, "good.pipe", decorated)
	plain := writeTestFile(t, dir, "plain.pipe", "# no pipes\nlet x = 1\n")

	stdout, _, err := execute(t, "", "rewrite", "-w", "-l", good, plain)
	require.Nil(t, err)
	assert.Equal(t, good+"\n", stdout)

	data, err := os.ReadFile(good)
	require.Nil(t, err)
	assert.Equal(t, "\nfunction f(v) {\n\treturn [g(v, 1), *g(v, 1)]\n}\nlet y = v >> g\n", string(data))
	data, err = os.ReadFile(plain)
	require.Nil(t, err)
	assert.Equal(t, "# no pipes\nlet x = 1\n", string(data))

	// A second run finds nothing left to change.
	stdout, _, err = execute(t, "", "rewrite", "-l", good, plain)
	require.Nil(t, err)
	assert.Empty(t, stdout)
}

func TestRewriteFilesPrint(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.pipe", "x >> f\n")
	b := writeTestFile(t, dir, "b.pipe", "y >> g(_, 2)\n")

	stdout, _, err := execute(t, "", "rewrite", "--all", "-j", "1", a, b)
	require.Nil(t, err)
	assert.Equal(t, "# "+a+"\nf(x)\n# "+b+"\ng(y, 2)\n", stdout)

	stdout, _, err = execute(t, "", "rewrite", "--all", a)
	require.Nil(t, err)
	assert.Equal(t, "f(x)\n", stdout)
}

func TestRewriteFilesErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeTestFile(t, dir, "good.pipe", "x >> f\n")
	bad := writeTestFile(t, dir, "bad.pipe", "let = 1\n")

	stdout, stderr, err := execute(t, "", "rewrite", "--all", "-w", good, bad)
	requireExit(t, err, 1)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, bad+":1:5")

	data, err := os.ReadFile(good)
	require.Nil(t, err)
	assert.Equal(t, "f(x)\n", string(data))
	data, err = os.ReadFile(bad)
	require.Nil(t, err)
	assert.Equal(t, "let = 1\n", string(data))
}

func TestCheck(t *testing.T) {
	input := "@pipes\nfunction f(v) {\n\treturn v >> _.m(_)\n}"

	stdout, stderr, err := execute(t, "", "check", "-c", input)
	requireExit(t, err, 1)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "E4001")
	assert.Contains(t, stderr, "placeholder _ is not inside a pipe")

	stdout, _, err = execute(t, "", "check", "-o", "json", "-c", input)
	requireExit(t, err, 1)
	var errs []map[string]any
	require.Nil(t, json.Unmarshal([]byte(stdout), &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "E4001", errs[0]["code"])
	assert.Equal(t, float64(3), errs[0]["line"])
	assert.Equal(t, float64(18), errs[0]["column"])
}

func TestCheckOK(t *testing.T) {
	stdout, stderr, err := execute(t, "", "check", "-c", "let x = 1")
	require.Nil(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)

	stdout, _, err = execute(t, "", "check", "-o", "json", "-c", "let x = 1")
	require.Nil(t, err)
	assert.Equal(t, "[]\n", stdout)

	_, _, err = execute(t, "", "check", "-o", "xml", "-c", "let x = 1")
	require.NotNil(t, err)
	assert.Equal(t, "unknown output format: xml", err.Error())
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeTestFile(t, dir, "good.pipe", decorated)
	bad := writeTestFile(t, dir, "bad.pipe", "let = 1\nlet x = _\n")

	_, stderr, err := execute(t, "", "check", good, bad)
	requireExit(t, err, 1)
	assert.Contains(t, stderr, bad+":1:5")
	assert.NotContains(t, stderr, good)
}

func TestAST(t *testing.T) {
	stdout, _, err := execute(t, "", "ast", "-c", "v >> f")
	require.Nil(t, err)
	assert.Equal(t, "Program\n  Infix >> (1:1)\n    Ident v (1:1)\n    Ident f (1:6)\n", stdout)

	stdout, _, err = execute(t, "", "ast", "--rewritten", "--all", "-c", "v >> f")
	require.Nil(t, err)
	assert.Equal(t, "Program\n  Call (1:6)\n    Ident f (1:6)\n    Args\n      Ident v (1:1)\n", stdout)
}

func TestASTNodes(t *testing.T) {
	tests := []struct {
		code     string
		contains []string
	}{
		{"let x = 1", []string{"Var x", "Int 1"}},
		{"f(a, *b, k=c)", []string{"Call", "Args", "Spread *", "Kwargs", "Keyword k"}},
		{"x[1:]", []string{"Slice", "Low", "Int 1"}},
		{"{k: v for k, v in _}", []string{"Comprehension map", "ComprehensionFor", "Targets"}},
		{`{"a": 1, **m}`, []string{"Map", "MapItem", "String a", "Spread **"}},
		{"@pipes\nfunction f(a) { return a }", []string{"Func f", "Decorators", "Decorator", "Params", "Block", "Return"}},
		{"class C { function m(self) { return 1 } }", []string{"Class C", "Func m"}},
		{"`${_.x}`", []string{"String", "GetAttr x"}},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			stdout, _, err := execute(t, "", "ast", "-c", tt.code)
			require.Nil(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, stdout, s)
			}
		})
	}
}

func TestASTStructured(t *testing.T) {
	stdout, _, err := execute(t, "", "ast", "-o", "json", "-c", "v >> f")
	require.Nil(t, err)
	var tree treeNode
	require.Nil(t, json.Unmarshal([]byte(stdout), &tree))
	assert.Equal(t, "Program", tree.Type)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Infix", tree.Children[0].Type)
	assert.Equal(t, ">>", tree.Children[0].Value)
	assert.Equal(t, "1:1", tree.Children[0].Pos)

	stdout, _, err = execute(t, "", "ast", "-o", "yaml", "-c", "v >> f")
	require.Nil(t, err)
	tree = treeNode{}
	require.Nil(t, yaml.Unmarshal([]byte(stdout), &tree))
	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 2)
	assert.Equal(t, "f", tree.Children[0].Children[1].Value)
}

func TestASTParseError(t *testing.T) {
	_, stderr, err := execute(t, "", "ast", "-c", "f(k=1, 2)")
	requireExit(t, err, 1)
	assert.Contains(t, stderr, "positional argument follows keyword argument")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := writeTestFile(t, dir, "superpipe.yaml", "decorator: chain\nlog-level: debug\n")
	input := "@chain\nfunction f(v) {\n\treturn v >> g\n}"

	stdout, stderr, err := execute(t, "", "rewrite", "--config", config, "-c", input)
	require.Nil(t, err)
	assert.Equal(t, "\nfunction f(v) {\n\treturn g(v)\n}\n", stdout)
	assert.Contains(t, stderr, "loaded config")
	assert.Contains(t, stderr, "reduced pipe")

	// Flags take precedence over the config file.
	stdout, _, err = execute(t, "", "rewrite", "--config", config, "--decorator", "pipes", "-c", input)
	require.Nil(t, err)
	assert.Equal(t, input+"\n", stdout)

	_, _, err = execute(t, "", "rewrite", "--config", filepath.Join(dir, "missing.yaml"), "-c", "x")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "config")
}

func TestConfigInHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeTestFile(t, home, ".superpipe.yaml", "all: true\n")

	stdout, _, err := execute(t, "", "rewrite", "-c", "x >> f")
	require.Nil(t, err)
	assert.Equal(t, "f(x)\n", stdout)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("SUPERPIPE_ALL", "true")
	stdout, _, err := execute(t, "", "rewrite", "-c", "x >> f")
	require.Nil(t, err)
	assert.Equal(t, "f(x)\n", stdout)
}

func TestGlobalFlagErrors(t *testing.T) {
	_, _, err := execute(t, "", "rewrite", "--log-level", "loud", "-c", "x")
	require.NotNil(t, err)
	assert.Equal(t, `invalid log level "loud"`, err.Error())

	_, _, err = execute(t, "", "rewrite", "--profile", "gpu", "-c", "x")
	require.NotNil(t, err)
	assert.Equal(t, `unknown profile mode "gpu"`, err.Error())
}

func TestProfile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "", "rewrite", "--profile", "cpu", "--profile-path", dir, "-c", "x")
	require.Nil(t, err)
	_, err = os.Stat(filepath.Join(dir, "cpu.pprof"))
	assert.Nil(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.Nil(t, err)
	assert.Contains(t, stdout, "superpipe dev")

	stdout, _, err = execute(t, "", "version", "-o", "json")
	require.Nil(t, err)
	var info map[string]string
	require.Nil(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "dev", info["version"])
}
