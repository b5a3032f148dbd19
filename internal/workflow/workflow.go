// Package workflow drives one scaffolding run: it seeds the project helper
// files, then generates the testbench, wave file and run script for every
// target source file, printing one status line per decision.
package workflow

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/svaccel/internal/config"
	"github.com/robert-at-pretension-io/svaccel/internal/generator"
	"github.com/robert-at-pretension-io/svaccel/internal/resolver"
	"github.com/robert-at-pretension-io/svaccel/internal/workspace"
)

const bannerWidth = 60

// Driver runs the scaffolding workflow over a workspace.
type Driver struct {
	cfg    *config.Config
	ws     *workspace.Workspace
	gen    *generator.Generator
	logger *zap.Logger

	// Out receives the status report
	Out io.Writer
	// In is read once for the exit acknowledgment
	In io.Reader
	// NoWait skips the exit acknowledgment
	NoWait bool
}

// New creates a driver writing status lines to out and reading the exit
// acknowledgment from in.
func New(cfg *config.Config, ws *workspace.Workspace, out io.Writer, in io.Reader, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := resolver.New(ws, cfg.Extension, logger)
	return &Driver{
		cfg:    cfg,
		ws:     ws,
		gen:    generator.New(cfg, ws, deps, logger),
		logger: logger,
		Out:    out,
		In:     in,
	}
}

// Run performs the whole workflow. With no args every source file in the
// workspace root is a target; otherwise args name the targets.
func (d *Driver) Run(args []string) error {
	d.printBanner()

	fmt.Fprintln(d.Out, "Create workflow scripts:")
	if err := d.step(d.gen.ProgramDescriptor); err != nil {
		return err
	}
	if err := d.step(d.gen.SimulatorLauncher); err != nil {
		return err
	}

	targets, err := d.Targets(args)
	if err != nil {
		return err
	}
	d.logger.Debug("targets", zap.Strings("files", targets))

	for _, file := range targets {
		if err := d.Suite(file); err != nil {
			return err
		}
	}

	fmt.Fprintln(d.Out)
	if !d.NoWait {
		d.waitForEnter()
	}
	return nil
}

// Targets returns the files to scaffold for args.
func (d *Driver) Targets(args []string) ([]string, error) {
	if len(args) > 0 {
		return config.ExpandTargets(d.ws.Root, args)
	}
	files, err := d.ws.SourceFiles(d.cfg.Extension)
	if err != nil {
		return nil, err
	}
	return d.cfg.FilterTargets(files), nil
}

// Suite generates the testbench, wave file and run script for one source
// file, in that order.
func (d *Driver) Suite(file string) error {
	fmt.Fprintf(d.Out, "Target file: %s\n", file)
	module := resolver.ModuleName(file)

	if err := d.step(func() (generator.Result, error) { return d.gen.Testbench(file) }); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if err := d.step(func() (generator.Result, error) { return d.gen.WaveFile(module) }); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if err := d.step(func() (generator.Result, error) { return d.gen.RunScript(module) }); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}

func (d *Driver) step(fn func() (generator.Result, error)) error {
	res, err := fn()
	if err != nil {
		return err
	}
	d.report(res)
	return nil
}

func (d *Driver) report(res generator.Result) {
	if !res.Created {
		fmt.Fprintf(d.Out, "\tAborted: %s already exists\n", res.Artifact)
		return
	}
	if res.Note != "" {
		fmt.Fprintf(d.Out, "\tSuccess: %s was created %s\n", res.Artifact, res.Note)
		return
	}
	fmt.Fprintf(d.Out, "\tSuccess: %s was created\n", res.Artifact)
}

func (d *Driver) printBanner() {
	rule := " " + strings.Repeat("-", bannerWidth) + " "
	fmt.Fprintln(d.Out, rule)
	fmt.Fprintf(d.Out, "|%s|\n", center("Accelerated SystemVerilog Simulation", bannerWidth))
	fmt.Fprintf(d.Out, "|%s|\n", center("svaccel", bannerWidth))
	fmt.Fprintln(d.Out, rule)
}

// waitForEnter blocks until one line (or EOF) is read from In.
func (d *Driver) waitForEnter() {
	fmt.Fprint(d.Out, "Press ENTER to exit...")
	if d.In == nil {
		return
	}
	_, _ = bufio.NewReader(d.In).ReadString('\n')
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
