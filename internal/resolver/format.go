package resolver

import (
	"fmt"
	"io"
	"strings"
)

// FormatReport writes the direct and one-hop submodules of module, or of
// every module when module is empty.
func FormatReport(w io.Writer, g Graph, module string) error {
	modules := g.Modules()
	if module != "" {
		if _, err := g.Direct(module); err != nil {
			return err
		}
		modules = []string{module}
	}

	var b strings.Builder
	for _, name := range modules {
		direct, _ := g.Direct(name)
		hop, err := g.TransitiveSubmodules(name)
		if err != nil {
			return err
		}
		b.WriteString(fmt.Sprintf("  %s\n", name))
		b.WriteString(fmt.Sprintf("    direct (%d): %s\n", len(direct), strings.Join(direct, ", ")))
		b.WriteString(fmt.Sprintf("    one-hop (%d): %s\n", len(hop), strings.Join(hop, ", ")))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMermaid renders the graph as a Mermaid flowchart. Self references
// from a module's own declaration are left out.
func WriteMermaid(w io.Writer, g Graph) error {
	var b strings.Builder
	b.WriteString("graph LR\n")
	for _, name := range g.Modules() {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", safeID(name), name)
	}
	for _, name := range g.Modules() {
		for _, sub := range g[name] {
			if sub == name {
				continue
			}
			fmt.Fprintf(&b, "    %s --> %s\n", safeID(name), safeID(sub))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func safeID(name string) string {
	r := strings.NewReplacer(".", "_", "/", "_", "-", "_", "\\", "_", ":", "_", "$", "_")
	return "m_" + r.Replace(name)
}
