package scanner

import (
	"regexp"
	"strings"
)

// Rules is the keyword table the scanner runs against. Tests and
// configuration files can swap in alternate keyword sets.
type Rules struct {
	// ModuleKeyword opens a module declaration ("module")
	ModuleKeyword string

	// EndKeyword closes a module declaration ("endmodule")
	EndKeyword string

	// Ports lists the direction keywords and their testbench-side
	// replacement, in the order they are tried on each line
	Ports []PortRule

	// ClockNames is the clock allow-list, compared case-insensitively
	ClockNames []string

	// ClockNotFound is returned when no allow-listed clock is seen
	ClockNotFound string
}

// PortRule rewrites a direction keyword into its testbench form
type PortRule struct {
	Keyword     string
	Replacement string
}

// DefaultClockNotFound is the sentinel emitted when a module uses no
// allow-listed clock.
const DefaultClockNotFound = "CLOCK_NOT_FOUND"

// DefaultRules returns the SystemVerilog keyword table
func DefaultRules() Rules {
	return Rules{
		ModuleKeyword: "module",
		EndKeyword:    "endmodule",
		Ports: []PortRule{
			{Keyword: "input", Replacement: ""},
			{Keyword: "output", Replacement: ""},
			{Keyword: "inout logic", Replacement: "tri"},
		},
		ClockNames:    []string{"clock", "clk", "CLOCK_50"},
		ClockNotFound: DefaultClockNotFound,
	}
}

// portPattern is a PortRule compiled to a whole-word matcher
type portPattern struct {
	re          *regexp.Regexp
	replacement string
}

func compilePorts(rules []PortRule) []portPattern {
	patterns := make([]portPattern, 0, len(rules))
	for _, rule := range rules {
		words := strings.Fields(rule.Keyword)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		expr := strings.Join(words, `\s+`)
		if isWordByte(rule.Keyword[0]) {
			expr = `\b` + expr
		}
		if isWordByte(rule.Keyword[len(rule.Keyword)-1]) {
			expr = expr + `\b`
		}
		patterns = append(patterns, portPattern{
			re:          regexp.MustCompile(expr),
			replacement: rule.Replacement,
		})
	}
	return patterns
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// normalizeName turns the token after the module keyword into a bare
// identifier: "top(input" -> "top", "top;" -> "top", "top#(" -> "top".
func normalizeName(tok string) string {
	if i := strings.IndexAny(tok, "(#;"); i >= 0 {
		tok = tok[:i]
	}
	return strings.ReplaceAll(tok, ")", "")
}

// trimToken strips the punctuation that hugs identifiers in port lists and
// event controls.
func trimToken(tok string) string {
	return strings.Trim(tok, "(),;: \t")
}

// terminate strips surrounding whitespace, list punctuation and the
// unbalanced ")" that closes a header port list, then appends exactly one
// statement terminator.
func terminate(line string) string {
	line = strings.Trim(strings.TrimSpace(line), ",;:")
	if strings.HasSuffix(line, ")") && strings.Count(line, ")") > strings.Count(line, "(") {
		line = strings.Trim(strings.TrimSpace(strings.TrimSuffix(line, ")")), ",;:")
	}
	return strings.TrimSpace(line) + ";"
}
