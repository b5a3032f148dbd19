package resolver

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/svaccel/internal/workspace"
)

func writeSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// chain lays out top -> mid -> leaf plus an unrelated module.
func chain(t *testing.T) *Resolver {
	t.Helper()
	dir := t.TempDir()
	writeSV(t, dir, "top.sv", "module top (input clk);\n\tmid m0 (.*);\nendmodule\n")
	writeSV(t, dir, "mid.sv", "module mid (input clk);\n\tleaf l0 (.*);\nendmodule\n")
	writeSV(t, dir, "leaf.sv", "module leaf (input clk);\nendmodule\n")
	writeSV(t, dir, "other.sv", "module other (input clk);\n\t// not a leafy thing\nendmodule\n")
	writeSV(t, dir, "readme.txt", "top mid leaf")
	return New(workspace.New(dir), ".sv", nil)
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "top", ModuleName("top.sv"))
	assert.Equal(t, "alu", ModuleName("alu.v2.sv"))
	assert.Equal(t, "sub", ModuleName(filepath.Join("rtl", "sub.sv")))
	assert.Equal(t, "noext", ModuleName("noext"))
}

func TestAllModuleNames(t *testing.T) {
	r := chain(t)
	names, err := r.AllModuleNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf", "mid", "other", "top"}, names)
}

func TestDirectSubmodulesWholeToken(t *testing.T) {
	known := map[string]bool{"sub": true, "top": true}
	src := "module top ();\n\tsub u0 (.*);\n\tsubtract s0 (.*);\n\tlogic top_sig;\nendmodule\n"

	got, err := DirectSubmodules(strings.NewReader(src), known)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub", "top"}, got)
}

func TestDirectSubmodulesMatchesComments(t *testing.T) {
	known := map[string]bool{"leaf": true}
	got, err := DirectSubmodules(strings.NewReader("// leaf is unused here\n"), known)
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf"}, got)
}

func TestBuildGraph(t *testing.T) {
	r := chain(t)
	g, err := r.BuildGraph()
	require.NoError(t, err)

	want := Graph{
		"top":   {"mid", "top"},
		"mid":   {"leaf", "mid"},
		"leaf":  {"leaf"},
		"other": {"other"},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Fatalf("graph mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGraphNodesAreFileModuleNames(t *testing.T) {
	dir := t.TempDir()
	// core.rtl.sv declares "core_impl" but is known by its file name
	writeSV(t, dir, "core.rtl.sv", "module core_impl (input clk);\nendmodule\n")
	writeSV(t, dir, "wrap.sv", "module wrap (input clk);\n\tcore c0 (.*);\n\tcore_impl c1 (.*);\nendmodule\n")
	r := New(workspace.New(dir), ".sv", nil)

	names, err := r.AllModuleNames()
	require.NoError(t, err)
	g, err := r.BuildGraph()
	require.NoError(t, err)

	assert.Equal(t, names, g.Modules())
	assert.Equal(t, []string{"core", "wrap"}, g["wrap"])
	assert.Empty(t, g["core"])
}

func TestTransitiveIsOneHop(t *testing.T) {
	g := Graph{
		"a": {"b"},
		"b": {"c"},
		"c": {"d"},
		"d": {},
	}

	got, err := g.TransitiveSubmodules("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got, "d is two hops away")

	got, err = g.TransitiveSubmodules("d")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransitiveUnionOfDirectSets(t *testing.T) {
	g := Graph{
		"top":  {"x", "y"},
		"x":    {"p", "q"},
		"y":    {"q", "r"},
		"p":    {"deep"},
		"q":    {},
		"r":    {},
		"deep": {},
	}

	got, err := g.TransitiveSubmodules("top")
	require.NoError(t, err)

	want := map[string]bool{}
	direct, _ := g.Direct("top")
	for _, m := range direct {
		subs, _ := g.Direct(m)
		for _, s := range subs {
			want[s] = true
		}
	}
	assert.Len(t, got, len(want))
	for _, s := range got {
		assert.True(t, want[s], "unexpected %s", s)
	}
	assert.Equal(t, []string{"p", "q", "r"}, got)
}

func TestTransitiveCycleTerminates(t *testing.T) {
	g := Graph{"a": {"b"}, "b": {"a"}}
	got, err := g.TransitiveSubmodules("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestTransitiveOnDisk(t *testing.T) {
	r := chain(t)
	got, err := r.TransitiveSubmodules("top")
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf", "mid", "top"}, got)
}

func TestUnknownModule(t *testing.T) {
	r := chain(t)
	_, err := r.TransitiveSubmodules("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownModule))

	g := Graph{"a": {"missing"}}
	_, err = g.TransitiveSubmodules("a")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestFormatReport(t *testing.T) {
	g := Graph{"top": {"sub", "top"}, "sub": {"sub"}}

	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, g, "top"))
	assert.Equal(t, "  top\n    direct (2): sub, top\n    one-hop (2): sub, top\n", buf.String())

	buf.Reset()
	require.NoError(t, FormatReport(&buf, g, ""))
	assert.True(t, strings.HasPrefix(buf.String(), "  sub\n"))

	assert.ErrorIs(t, FormatReport(&buf, g, "nope"), ErrUnknownModule)
}

func TestWriteMermaid(t *testing.T) {
	g := Graph{"top": {"sub", "top"}, "sub": {"sub"}}

	var buf bytes.Buffer
	require.NoError(t, WriteMermaid(&buf, g))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, "m_top --> m_sub\n")
	assert.NotContains(t, out, "m_top --> m_top")
}
