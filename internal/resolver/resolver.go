// Package resolver maps each module of a directory to the other modules its
// file mentions and expands that mapping one level for compile ordering.
package resolver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/svaccel/internal/workspace"
)

// ErrUnknownModule is returned when a module has no entry in the graph.
var ErrUnknownModule = errors.New("unknown module")

// Graph maps a module name to the sorted names of the known modules its
// file references. A file normally references itself through its own
// declaration line.
type Graph map[string][]string

// Direct returns the direct submodules of name.
func (g Graph) Direct(name string) ([]string, error) {
	subs, ok := g[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return subs, nil
}

// TransitiveSubmodules returns the direct submodules of each direct
// submodule of name, merged. The expansion stops after that single hop.
func (g Graph) TransitiveSubmodules(name string) ([]string, error) {
	direct, err := g.Direct(name)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, sub := range direct {
		next, err := g.Direct(sub)
		if err != nil {
			return nil, err
		}
		for _, m := range next {
			set[m] = true
		}
	}
	return sortedKeys(set), nil
}

// Modules returns the graph's module names, sorted.
func (g Graph) Modules() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleName returns the module a source file is named after: its base
// name up to the first ".".
func ModuleName(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	name, _, _ := strings.Cut(base, ".")
	return name
}

// DirectSubmodules returns the whitespace-separated tokens of r that are
// exactly one of the known module names.
func DirectSubmodules(r io.Reader, known map[string]bool) ([]string, error) {
	set := make(map[string]bool)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, tok := range strings.Fields(sc.Text()) {
			if known[tok] {
				set[tok] = true
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return sortedKeys(set), nil
}

// Resolver builds dependency graphs over the source files of a workspace.
type Resolver struct {
	ws     *workspace.Workspace
	ext    string
	logger *zap.Logger
}

// New creates a Resolver for files ending in ext.
func New(ws *workspace.Workspace, ext string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{ws: ws, ext: ext, logger: logger}
}

// AllModuleNames returns the module name of every source file, sorted.
func (r *Resolver) AllModuleNames() ([]string, error) {
	files, err := r.ws.SourceFiles(r.ext)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[ModuleName(f)] = true
	}
	return sortedKeys(set), nil
}

// BuildGraph scans every source file against the known module names.
func (r *Resolver) BuildGraph() (Graph, error) {
	names, err := r.AllModuleNames()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}

	files, err := r.ws.SourceFiles(r.ext)
	if err != nil {
		return nil, err
	}
	graph := make(Graph, len(files))
	for _, f := range files {
		subs, err := r.fileSubmodules(f, known)
		if err != nil {
			return nil, err
		}
		name := ModuleName(f)
		// two files may share a module name ("a.sv", "a.old.sv")
		graph[name] = mergeSorted(graph[name], subs)
	}
	r.logger.Debug("built dependency graph",
		zap.String("root", r.ws.Root),
		zap.Int("modules", len(graph)))
	return graph, nil
}

// TransitiveSubmodules builds a fresh graph and expands name one hop.
func (r *Resolver) TransitiveSubmodules(name string) ([]string, error) {
	graph, err := r.BuildGraph()
	if err != nil {
		return nil, err
	}
	subs, err := graph.TransitiveSubmodules(name)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("resolved submodules",
		zap.String("module", name),
		zap.Strings("submodules", subs))
	return subs, nil
}

func (r *Resolver) fileSubmodules(file string, known map[string]bool) ([]string, error) {
	f, err := r.ws.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	subs, err := DirectSubmodules(f, known)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return subs, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mergeSorted(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		set[s] = true
	}
	return sortedKeys(set)
}
