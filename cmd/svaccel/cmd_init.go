package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/svaccel/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default svaccel.json in the workspace directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(rootDir, "svaccel.json")

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file %s already exists.\n", path)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", path)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Source extension and declaration keywords")
	fmt.Fprintln(out, "  - Clock names and the testbench clock period")
	fmt.Fprintln(out, "  - Generated file names and simulator install paths")
	return nil
}
