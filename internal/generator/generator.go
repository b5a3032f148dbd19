// Package generator renders the scaffolding artifacts for a module and
// writes them through a workspace. Every generator is gated on the presence
// of its output: an artifact that already exists is reported, never
// rewritten.
package generator

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/svaccel/internal/config"
	"github.com/robert-at-pretension-io/svaccel/internal/resolver"
	"github.com/robert-at-pretension-io/svaccel/internal/scanner"
	"github.com/robert-at-pretension-io/svaccel/internal/workspace"
)

// Result describes the decision taken for one artifact.
type Result struct {
	// Artifact is the name reported to the user (a file or testbench name)
	Artifact string
	// Created is false when the artifact was already present
	Created bool
	// Note is an optional hint printed after a successful creation
	Note string
}

// Dependencies resolves the compile set of a module.
type Dependencies interface {
	TransitiveSubmodules(module string) ([]string, error)
}

// Generator produces all artifacts for one workspace.
type Generator struct {
	cfg     *config.Config
	ws      *workspace.Workspace
	scanner *scanner.Scanner
	deps    Dependencies
	logger  *zap.Logger
}

// New wires a generator. deps is usually a *resolver.Resolver over ws.
func New(cfg *config.Config, ws *workspace.Workspace, deps Dependencies, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:     cfg,
		ws:      ws,
		scanner: scanner.New(cfg.ScannerRules()),
		deps:    deps,
		logger:  logger,
	}
}

// TestbenchData feeds the testbench template.
type TestbenchData struct {
	Module    string
	Testbench string
	Ports     []string
	Clock     string
	Period    int
	Repeat    int
}

// RenderTestbench returns the commented testbench block for d.
func RenderTestbench(d TestbenchData) (string, error) {
	var b strings.Builder
	if err := testbenchTpl.Execute(&b, d); err != nil {
		return "", fmt.Errorf("rendering testbench for %s: %w", d.Module, err)
	}
	return b.String(), nil
}

// Testbench appends a testbench stub for the module declared in file. The
// file is left alone when it already mentions "<module>_testbench()".
func (g *Generator) Testbench(file string) (Result, error) {
	module := resolver.ModuleName(file)
	name := g.cfg.TestbenchName(module)
	res := Result{Artifact: name}

	present, err := g.ws.Contains(file, name+"()")
	if err != nil {
		return res, err
	}
	if present {
		return res, nil
	}

	path := g.ws.Path(file)
	declared, err := g.scanner.ModuleNamesFile(path)
	if err != nil {
		return res, err
	}
	if !contains(declared, module) {
		g.logger.Warn("file does not declare its module; testbench will have no ports",
			zap.String("module", module),
			zap.String("file", file),
			zap.Strings("declared", declared))
	}
	ports, err := g.scanner.PortsFile(path, module)
	if err != nil {
		return res, err
	}
	clock, err := g.scanner.ClockNameFile(path, module)
	if err != nil {
		return res, err
	}
	if clock == g.cfg.Clock.NotFound {
		g.logger.Warn("no clock detected", zap.String("module", module), zap.String("file", file))
	}
	g.logger.Debug("scanned module",
		zap.String("module", module),
		zap.Strings("ports", ports),
		zap.String("clock", clock))

	block, err := RenderTestbench(TestbenchData{
		Module:    module,
		Testbench: name,
		Ports:     ports,
		Clock:     clock,
		Period:    g.cfg.Clock.Period,
		Repeat:    g.cfg.Testbench.Repeat,
	})
	if err != nil {
		return res, err
	}
	if err := g.ws.Append(file, block); err != nil {
		return res, err
	}
	res.Created = true
	return res, nil
}

// WaveFile creates the empty waveform configuration for module.
func (g *Generator) WaveFile(module string) (Result, error) {
	return g.create(g.cfg.WaveFile(module), "", "")
}

// RunScriptData feeds the run-script template.
type RunScriptData struct {
	Library   string
	Sources   []string
	Testbench string
	WaveFile  string
}

// RenderRunScript returns the simulator run script for d.
func RenderRunScript(d RunScriptData) (string, error) {
	var b strings.Builder
	if err := runScriptTpl.Execute(&b, d); err != nil {
		return "", fmt.Errorf("rendering run script for %s: %w", d.Testbench, err)
	}
	return b.String(), nil
}

// RunScript creates the run script for module. The compile list is the
// one-hop submodule set of module, each compiled from <name><ext>.
func (g *Generator) RunScript(module string) (Result, error) {
	name := g.cfg.RunScript(module)
	if g.ws.Exists(name) {
		return Result{Artifact: name}, nil
	}

	modules, err := g.deps.TransitiveSubmodules(module)
	if err != nil {
		return Result{Artifact: name}, fmt.Errorf("resolving compile order for %s: %w", module, err)
	}
	sources := make([]string, 0, len(modules))
	for _, m := range modules {
		sources = append(sources, m+g.cfg.Extension)
	}
	g.logger.Debug("compile order", zap.String("module", module), zap.Strings("sources", sources))

	content, err := RenderRunScript(RunScriptData{
		Library:   g.cfg.Outputs.Library,
		Sources:   sources,
		Testbench: g.cfg.TestbenchName(module),
		WaveFile:  g.cfg.WaveFile(module),
	})
	if err != nil {
		return Result{Artifact: name}, err
	}
	return g.create(name, content, "")
}

// DescriptorText returns the device programming chain description.
func DescriptorText() string {
	return descriptorText
}

// SettingsAssignment returns the project settings line that registers
// descriptor with the programmer.
func SettingsAssignment(descriptor string) string {
	return "set_global_assignment -name CDF_FILE " + descriptor
}

// ProgramDescriptor creates the programming descriptor and, when it is
// new, registers it in the project settings file.
func (g *Generator) ProgramDescriptor() (Result, error) {
	res, err := g.create(g.cfg.Project.Descriptor, DescriptorText(), "")
	if err != nil || !res.Created {
		return res, err
	}
	if err := g.ws.AppendLine(g.cfg.Project.Settings, SettingsAssignment(g.cfg.Project.Descriptor)); err != nil {
		return res, fmt.Errorf("registering %s: %w", g.cfg.Project.Descriptor, err)
	}
	return res, nil
}

// RenderLauncher lists the simulator install paths, one per line.
func RenderLauncher(paths []string) (string, error) {
	var b strings.Builder
	if err := launcherTpl.Execute(&b, paths); err != nil {
		return "", fmt.Errorf("rendering launcher: %w", err)
	}
	return b.String(), nil
}

// SimulatorLauncher creates the simulator launch helper.
func (g *Generator) SimulatorLauncher() (Result, error) {
	name := g.cfg.Project.Launcher
	if g.ws.Exists(name) {
		return Result{Artifact: name}, nil
	}
	content, err := RenderLauncher(g.cfg.Project.SimulatorPaths)
	if err != nil {
		return Result{Artifact: name}, err
	}
	return g.create(name, content, "(ensure correct installation path)")
}

// create writes a new file. A file that is already present, including one
// that appeared after an earlier existence check, is not an error.
func (g *Generator) create(name, content, note string) (Result, error) {
	res := Result{Artifact: name}
	if err := g.ws.Create(name, content); err != nil {
		if errors.Is(err, workspace.ErrExists) {
			return res, nil
		}
		return res, err
	}
	res.Created = true
	res.Note = note
	g.logger.Debug("created", zap.String("file", g.ws.Path(name)))
	return res, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
