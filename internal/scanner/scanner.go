// Package scanner is the line-oriented extractor for module declarations.
// It does not parse the language: it recognizes a declaration keyword
// followed by a name, direction-qualified port lines and an end keyword,
// and degrades to "nothing found" on anything else.
package scanner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

const maxLineSize = 1024 * 1024

// Scanner extracts module names, ports and clock names under one Rules set.
type Scanner struct {
	rules Rules
	ports []portPattern
	decl  *regexp.Regexp
}

// New creates a Scanner for rules.
func New(rules Rules) *Scanner {
	return &Scanner{
		rules: rules,
		ports: compilePorts(rules.Ports),
		decl:  regexp.MustCompile(`(?:^|\s)` + regexp.QuoteMeta(rules.ModuleKeyword) + `\s+(\S+)`),
	}
}

// Rules returns the keyword table in use.
func (s *Scanner) Rules() Rules {
	return s.rules
}

// ModuleNames returns the names declared in r, deduplicated and sorted.
func (s *Scanner) ModuleNames(r io.Reader) ([]string, error) {
	seen := make(map[string]bool)
	err := eachLine(r, func(line string) bool {
		tokens := strings.Fields(line)
		for i := 0; i+1 < len(tokens); i++ {
			if tokens[i] != s.rules.ModuleKeyword {
				continue
			}
			if name := normalizeName(tokens[i+1]); name != "" {
				seen[name] = true
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ports returns the port lines of module rewritten as testbench
// declarations, in source order with duplicates removed.
func (s *Scanner) Ports(r io.Reader, module string) ([]string, error) {
	var ports []string
	seen := make(map[string]bool)
	add := func(line string) {
		for _, decl := range s.transform(line) {
			if !seen[decl] {
				seen[decl] = true
				ports = append(ports, decl)
			}
		}
	}

	tr := NewTracker(s.rules, module)
	err := eachLine(r, func(line string) bool {
		switch tr.Step(line) {
		case Header:
			if list, ok := s.headerPortList(line, module); ok {
				// "input logic a, b" declares b as "input logic" too
				inherit := ""
				for _, elem := range strings.Split(list, ",") {
					elem = strings.TrimSpace(elem)
					switch {
					case s.directed(elem):
						inherit = declPrefix(elem)
					case inherit != "" && trimToken(elem) != "":
						elem = inherit + " " + elem
					}
					add(elem)
				}
			}
		case Body:
			add(line)
		case End:
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ports, nil
}

// ClockName returns the first allow-listed clock used inside module, in its
// source casing, or the not-found sentinel.
func (s *Scanner) ClockName(r io.Reader, module string) (string, error) {
	clock := ""
	tr := NewTracker(s.rules, module)
	err := eachLine(r, func(line string) bool {
		wasDone := tr.Done()
		pos := tr.Step(line)
		if pos == Outside {
			return true
		}
		if wasDone {
			return false
		}
		// the closing line still counts up to its end keyword
		tokens := strings.Fields(line)
		if end := endIndex(tokens, s.rules.EndKeyword); end >= 0 {
			tokens = tokens[:end]
		}
		for _, tok := range tokens {
			word := trimToken(tok)
			if s.isClock(word) {
				clock = word
				return false
			}
		}
		return !tr.Done()
	})
	if err != nil {
		return "", err
	}
	if clock == "" {
		return s.rules.ClockNotFound, nil
	}
	return clock, nil
}

// transform rewrites one port line, once per direction keyword it holds.
func (s *Scanner) transform(line string) []string {
	line = terminate(line)
	var out []string
	for _, p := range s.ports {
		if p.re.MatchString(line) {
			out = append(out, strings.TrimSpace(p.re.ReplaceAllLiteralString(line, p.replacement)))
		}
	}
	return out
}

// directed reports whether elem holds any direction keyword.
func (s *Scanner) directed(elem string) bool {
	for _, p := range s.ports {
		if p.re.MatchString(elem) {
			return true
		}
	}
	return false
}

// declPrefix returns elem without its trailing identifier:
// "input logic [7:0] a" -> "input logic [7:0]".
func declPrefix(elem string) string {
	i := strings.LastIndexAny(elem, " \t")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(elem[:i])
}

func (s *Scanner) isClock(word string) bool {
	if word == "" {
		return false
	}
	for _, name := range s.rules.ClockNames {
		if strings.EqualFold(word, name) {
			return true
		}
	}
	return false
}

// headerPortList returns the text of the port list opened on the
// declaration line of module, skipping a "#(...)" parameter list. The list
// runs to its closing ")" or to the end of the line when it continues below.
func (s *Scanner) headerPortList(line, module string) (string, bool) {
	for _, m := range s.decl.FindAllStringSubmatchIndex(line, -1) {
		start := m[2]
		if normalizeName(line[start:m[3]]) != module || !strings.HasPrefix(line[start:], module) {
			continue
		}
		rest := strings.TrimSpace(line[start+len(module):])
		if strings.HasPrefix(rest, "#") {
			_, after, ok := balanced(rest)
			if !ok {
				return "", false
			}
			rest = after
		}
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return "", false
		}
		inner, _, _ := balanced(rest[open:])
		return inner, true
	}
	return "", false
}

// balanced splits s at the group opened by its first "(". It returns the
// group contents, the text after the closing ")" and whether it closed.
func balanced(s string) (string, string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", s, false
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i], s[i+1:], true
			}
		}
	}
	return s[open+1:], "", false
}

// ModuleNamesFile runs ModuleNames on the file at path.
func (s *Scanner) ModuleNamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return s.ModuleNames(f)
}

// PortsFile runs Ports on the file at path.
func (s *Scanner) PortsFile(path, module string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return s.Ports(f, module)
}

// ClockNameFile runs ClockName on the file at path.
func (s *Scanner) ClockNameFile(path, module string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return s.ClockName(f, module)
}

// eachLine calls fn for every line of r until fn returns false.
func eachLine(r io.Reader, fn func(line string) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if !fn(strings.TrimRight(sc.Text(), "\r")) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	return nil
}
