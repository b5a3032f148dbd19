// =============================================================================
// svaccel - Accelerated SystemVerilog Testing
// =============================================================================
//
// svaccel scans the SystemVerilog sources of a directory and generates the
// files a course simulation workflow needs around each module:
//
//   1. A commented-out testbench stub appended to the source file
//   2. An empty <module>_wave.do waveform configuration
//   3. A runlab_<module>.do ModelSim script that compiles the module's
//      one-hop submodule set and runs <module>_testbench
//
// Two project helpers are seeded once per directory: the DE1-SoC programming
// chain descriptor and the ModelSim launch script.
//
// Nothing is ever overwritten. An artifact that already exists is reported
// as aborted and left as it is, so reruns are safe.
// =============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robert-at-pretension-io/svaccel/internal/config"
	"github.com/robert-at-pretension-io/svaccel/internal/workflow"
	"github.com/robert-at-pretension-io/svaccel/internal/workspace"
)

var (
	// Global flags
	verbose    bool
	rootDir    string
	configPath string
	noWait     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "svaccel [files...]",
	Short: "Generate testbench, wave and runlab scaffolding for SystemVerilog modules",
	Long: `svaccel generates simulation scaffolding for every SystemVerilog module
in a directory, or only for the files given as arguments.

Configuration is read from the first of:
  1. ./svaccel.json, ./.svaccel.json, ./svaccel.yaml, ./.svaccel.yaml
  2. the same names in the --dir directory
  3. ~/.config/svaccel/config.json

Run 'svaccel init' to create a default configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "C", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (default: search)")
	rootCmd.Flags().BoolVar(&noWait, "no-wait", false, "exit without waiting for ENTER")

	rootCmd.AddCommand(initCmd, depsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d := workflow.New(cfg, workspace.New(rootDir), cmd.OutOrStdout(), cmd.InOrStdin(), logger)
	d.NoWait = noWait
	return d.Run(args)
}

// loadConfig honors --config, otherwise searches the default locations.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
