package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-at-pretension-io/svaccel/internal/scanner"
	"github.com/robert-at-pretension-io/svaccel/internal/validator"
)

// Config is the top-level configuration for svaccel
type Config struct {
	// Extension selects source files (".sv")
	Extension string `json:"extension" yaml:"extension"`

	// Keywords is the declaration keyword table handed to the scanner
	Keywords KeywordConfig `json:"keywords" yaml:"keywords"`

	// Clock controls clock detection and the generated clock block
	Clock ClockConfig `json:"clock" yaml:"clock"`

	// Testbench controls the appended testbench stub
	Testbench TestbenchConfig `json:"testbench" yaml:"testbench"`

	// Outputs names the per-module artifacts
	Outputs OutputConfig `json:"outputs" yaml:"outputs"`

	// Project names the project-level helper files
	Project ProjectConfig `json:"project" yaml:"project"`

	// Ignore is a list of glob patterns skipped when targets are enumerated
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// KeywordConfig defines the module boundary and port direction keywords
type KeywordConfig struct {
	Module    string     `json:"module" yaml:"module"`
	EndModule string     `json:"endmodule" yaml:"endmodule"`
	Ports     []PortRule `json:"ports" yaml:"ports"`
}

// PortRule maps a direction keyword to its testbench replacement
type PortRule struct {
	Keyword     string `json:"keyword" yaml:"keyword"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// ClockConfig contains the clock allow-list and clock block parameters
type ClockConfig struct {
	// Names is the allow-list, matched case-insensitively
	Names []string `json:"names" yaml:"names"`

	// NotFound is written into the testbench when no clock is detected
	NotFound string `json:"not_found" yaml:"not_found"`

	// Period is the PERIOD parameter of the clock block
	Period int `json:"period" yaml:"period"`
}

// TestbenchConfig contains testbench stub options
type TestbenchConfig struct {
	// Suffix is appended to the module name to name the testbench
	Suffix string `json:"suffix" yaml:"suffix"`

	// Repeat is the number of clock edges the stimulus loop waits
	Repeat int `json:"repeat" yaml:"repeat"`
}

// OutputConfig names the per-module output files
type OutputConfig struct {
	WaveSuffix   string `json:"wave_suffix" yaml:"wave_suffix"`
	RunlabPrefix string `json:"runlab_prefix" yaml:"runlab_prefix"`
	Library      string `json:"library" yaml:"library"`
}

// ProjectConfig names the project scaffolding files
type ProjectConfig struct {
	// Descriptor is the device programming chain file
	Descriptor string `json:"descriptor" yaml:"descriptor"`

	// Settings receives the CDF_FILE assignment when Descriptor is created
	Settings string `json:"settings" yaml:"settings"`

	// Launcher is the simulator launch helper script
	Launcher string `json:"launcher" yaml:"launcher"`

	// SimulatorPaths are written to Launcher, one per line
	SimulatorPaths []string `json:"simulator_paths" yaml:"simulator_paths"`
}

// File names searched by Load, in order
var configNames = []string{"svaccel.json", ".svaccel.json", "svaccel.yaml", ".svaccel.yaml"}

// DefaultConfig returns the DE1-SoC / ModelSim course configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load finds and loads the configuration file
// Search order:
//  1. ./svaccel.json, ./.svaccel.json, ./svaccel.yaml, ./.svaccel.yaml
//  2. the same names under rootPath (if different from cwd)
//  3. ~/.config/svaccel/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	var searchPaths []string
	for _, name := range configNames {
		searchPaths = append(searchPaths, filepath.Join(cwd, name))
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			for _, name := range configNames {
				searchPaths = append(searchPaths, filepath.Join(rootPath, name))
			}
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "svaccel", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. YAML is used for
// .yaml and .yml files, JSON otherwise. The result is checked against the
// configuration schema.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Unknown keys are rejected so a misspelled option is not silently dropped
	var cfg Config
	if isYAML(path) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration against the CUE schema
func (c *Config) Validate() error {
	v, err := validator.New()
	if err != nil {
		return err
	}
	return v.Validate(c)
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Extension == "" {
		c.Extension = ".sv"
	}

	rules := scanner.DefaultRules()
	if c.Keywords.Module == "" {
		c.Keywords.Module = rules.ModuleKeyword
	}
	if c.Keywords.EndModule == "" {
		c.Keywords.EndModule = rules.EndKeyword
	}
	if len(c.Keywords.Ports) == 0 {
		for _, p := range rules.Ports {
			c.Keywords.Ports = append(c.Keywords.Ports, PortRule{Keyword: p.Keyword, Replacement: p.Replacement})
		}
	}

	if len(c.Clock.Names) == 0 {
		c.Clock.Names = append([]string(nil), rules.ClockNames...)
	}
	if c.Clock.NotFound == "" {
		c.Clock.NotFound = rules.ClockNotFound
	}
	if c.Clock.Period == 0 {
		c.Clock.Period = 100
	}

	if c.Testbench.Suffix == "" {
		c.Testbench.Suffix = "_testbench"
	}
	if c.Testbench.Repeat == 0 {
		c.Testbench.Repeat = 10
	}

	if c.Outputs.WaveSuffix == "" {
		c.Outputs.WaveSuffix = "_wave.do"
	}
	if c.Outputs.RunlabPrefix == "" {
		c.Outputs.RunlabPrefix = "runlab_"
	}
	if c.Outputs.Library == "" {
		c.Outputs.Library = "work"
	}

	if c.Project.Descriptor == "" {
		c.Project.Descriptor = "ProgramTheDE1_SoC.cdf"
	}
	if c.Project.Settings == "" {
		c.Project.Settings = "DE1_SoC.qsf"
	}
	if c.Project.Launcher == "" {
		c.Project.Launcher = "Launch_ModelSim.bat"
	}
	if len(c.Project.SimulatorPaths) == 0 {
		c.Project.SimulatorPaths = []string{
			`C:\intelFPGA\17.0\modelsim_ase\win32aloem\modelsim.exe`,
			`C:\intelFPGA_lite\17.0\modelsim_ase\win32aloem\modelsim.exe`,
		}
	}
}

// Save writes the configuration to a file, YAML or JSON by extension
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ScannerRules returns the keyword table for the scanner
func (c *Config) ScannerRules() scanner.Rules {
	rules := scanner.Rules{
		ModuleKeyword: c.Keywords.Module,
		EndKeyword:    c.Keywords.EndModule,
		ClockNames:    append([]string(nil), c.Clock.Names...),
		ClockNotFound: c.Clock.NotFound,
	}
	for _, p := range c.Keywords.Ports {
		rules.Ports = append(rules.Ports, scanner.PortRule{Keyword: p.Keyword, Replacement: p.Replacement})
	}
	return rules
}

// TestbenchName returns the testbench module name for module
func (c *Config) TestbenchName(module string) string {
	return module + c.Testbench.Suffix
}

// WaveFile returns the waveform file name for module
func (c *Config) WaveFile(module string) string {
	return module + c.Outputs.WaveSuffix
}

// RunScript returns the run-script file name for module
func (c *Config) RunScript(module string) string {
	return c.Outputs.RunlabPrefix + module + ".do"
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
