package workflow

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/svaccel/internal/config"
	"github.com/robert-at-pretension-io/svaccel/internal/workspace"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func listDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	files := make(map[string]string)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		files[e.Name()] = string(data)
	}
	return files
}

func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "top.sv", "module top (input clk, input rst, output out);\n\tsub s (.*);\nendmodule\n")
	writeFile(t, dir, "sub.sv", "module sub (input clk, output y);\nendmodule\n")
	return dir
}

func newDriver(dir string, out *bytes.Buffer, in string) *Driver {
	return New(config.DefaultConfig(), workspace.New(dir), out, strings.NewReader(in), zap.NewNop())
}

func statusLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "Target file:") || strings.HasPrefix(line, "Create workflow") {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestRunScenario(t *testing.T) {
	dir := scenarioDir(t)
	var out bytes.Buffer
	d := newDriver(dir, &out, "\n")

	require.NoError(t, d.Run(nil))

	want := []string{
		"Create workflow scripts:",
		"\tSuccess: ProgramTheDE1_SoC.cdf was created",
		"\tSuccess: Launch_ModelSim.bat was created (ensure correct installation path)",
		"Target file: sub.sv",
		"\tSuccess: sub_testbench was created",
		"\tSuccess: sub_wave.do was created",
		"\tSuccess: runlab_sub.do was created",
		"Target file: top.sv",
		"\tSuccess: top_testbench was created",
		"\tSuccess: top_wave.do was created",
		"\tSuccess: runlab_top.do was created",
	}
	if diff := cmp.Diff(want, statusLines(out.String())); diff != "" {
		t.Fatalf("status lines mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, strings.HasSuffix(out.String(), "\nPress ENTER to exit..."))

	files := listDir(t, dir)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"DE1_SoC.qsf", "Launch_ModelSim.bat", "ProgramTheDE1_SoC.cdf",
		"runlab_sub.do", "runlab_top.do", "sub.sv", "sub_wave.do", "top.sv", "top_wave.do",
	}, names)

	assert.Equal(t, "", files["top_wave.do"])
	assert.Contains(t, files["runlab_top.do"], "vlog \"./sub.sv\"\n")
	assert.Contains(t, files["runlab_top.do"], "vsim -voptargs=\"+acc\" -t 1ps -lib work top_testbench\n")
	assert.Contains(t, files["top.sv"], "module top_testbench();\n\tclk;\n\trst;\n\tout;\n")
	assert.Contains(t, files["top.sv"], "forever #(PERIOD/2) clk = ~clk;")
	assert.Contains(t, files["top.sv"], "parameter PERIOD = 100;")
}

func TestSecondRunChangesNothing(t *testing.T) {
	dir := scenarioDir(t)
	var first bytes.Buffer
	d := newDriver(dir, &first, "")
	d.NoWait = true
	require.NoError(t, d.Run(nil))
	before := listDir(t, dir)

	var second bytes.Buffer
	d = newDriver(dir, &second, "")
	d.NoWait = true
	require.NoError(t, d.Run(nil))

	for _, line := range statusLines(second.String()) {
		if strings.HasPrefix(line, "\t") {
			assert.True(t, strings.HasPrefix(line, "\tAborted: "), line)
			assert.True(t, strings.HasSuffix(line, " already exists"), line)
		}
	}
	assert.NotContains(t, second.String(), "Press ENTER")
	if diff := cmp.Diff(before, listDir(t, dir)); diff != "" {
		t.Fatalf("second run modified the workspace (-before +after):\n%s", diff)
	}
}

func TestExplicitTargets(t *testing.T) {
	dir := scenarioDir(t)
	var out bytes.Buffer
	d := newDriver(dir, &out, "")
	d.NoWait = true

	require.NoError(t, d.Run([]string{"top.sv"}))
	assert.Contains(t, out.String(), "Target file: top.sv\n")
	assert.NotContains(t, out.String(), "Target file: sub.sv")
	_, err := os.Stat(filepath.Join(dir, "runlab_sub.do"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTargetsHonorIgnore(t *testing.T) {
	dir := scenarioDir(t)
	writeFile(t, dir, "old_top.sv", "module old_top;\nendmodule\n")
	cfg := config.DefaultConfig()
	cfg.Ignore = []string{"old_*.sv"}

	d := New(cfg, workspace.New(dir), &bytes.Buffer{}, nil, nil)
	targets, err := d.Targets(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub.sv", "top.sv"}, targets)

	targets, err = d.Targets([]string{"*.sv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"old_top.sv", "sub.sv", "top.sv"}, targets)
}

func TestMissingTargetStopsRun(t *testing.T) {
	dir := scenarioDir(t)
	var out bytes.Buffer
	d := newDriver(dir, &out, "")
	d.NoWait = true

	err := d.Run([]string{"ghost.sv"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "ghost.sv")
}
