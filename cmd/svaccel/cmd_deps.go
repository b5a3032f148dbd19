package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/svaccel/internal/resolver"
	"github.com/robert-at-pretension-io/svaccel/internal/workspace"
)

var depsFormat string

var depsCmd = &cobra.Command{
	Use:   "deps [module]",
	Short: "Show the submodule dependency graph of the workspace",
	Long: `Prints, for each module (or only the named one), its direct submodules and
the one-hop set compiled by its run script.

With --format mermaid the whole graph is written as a Mermaid flowchart.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().StringVar(&depsFormat, "format", "text", "output format: text or mermaid")
}

func runDeps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	graph, err := resolver.New(workspace.New(rootDir), cfg.Extension, logger).BuildGraph()
	if err != nil {
		return err
	}

	switch depsFormat {
	case "text":
		module := ""
		if len(args) == 1 {
			module = args[0]
		}
		return resolver.FormatReport(cmd.OutOrStdout(), graph, module)
	case "mermaid":
		return resolver.WriteMermaid(cmd.OutOrStdout(), graph)
	default:
		return fmt.Errorf("unknown format %q (want text or mermaid)", depsFormat)
	}
}
