package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ShouldIgnoreFile checks if a file is excluded from target enumeration
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.Ignore {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return true
		}
		// Also try matching against the base name
		if matched, _ := filepath.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}

// FilterTargets drops ignored files from an enumerated source list
func (c *Config) FilterTargets(files []string) []string {
	var out []string
	for _, f := range files {
		if !c.ShouldIgnoreFile(f) {
			out = append(out, f)
		}
	}
	return out
}

// ExpandTargets resolves explicit target arguments against rootPath.
// Arguments holding glob characters are expanded (cmd.exe passes them
// through unexpanded); plain names are kept as given. Results are relative
// to rootPath where possible, deduplicated, in argument order.
func ExpandTargets(rootPath string, args []string) ([]string, error) {
	var targets []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			targets = append(targets, name)
		}
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			add(arg)
			continue
		}
		pattern := arg
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if rel, err := filepath.Rel(rootPath, m); err == nil && !strings.HasPrefix(rel, "..") {
				m = rel
			}
			add(m)
		}
	}
	return targets, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[`)
}
