package scanner

import "strings"

// Position classifies a source line relative to the target module.
type Position int

const (
	// Outside is any line before the target module is declared
	Outside Position = iota
	// Header is the line declaring the target module
	Header
	// Body is a line between the header and the end keyword
	Body
	// End is the line closing the module and every line after it
	End
)

func (p Position) String() string {
	switch p {
	case Outside:
		return "outside"
	case Header:
		return "header"
	case Body:
		return "body"
	case End:
		return "end"
	}
	return "unknown"
}

// Tracker is the module boundary state machine. It starts outside, moves
// inside on the declaration of its module and stops at the first end
// keyword that follows. Feed it lines in order with Step.
type Tracker struct {
	keyword string
	end     string
	module  string
	inside  bool
	done    bool
}

// NewTracker returns a tracker looking for module under rules.
func NewTracker(rules Rules, module string) *Tracker {
	return &Tracker{
		keyword: rules.ModuleKeyword,
		end:     rules.EndKeyword,
		module:  module,
	}
}

// Step consumes one line and reports where it sits.
func (t *Tracker) Step(line string) Position {
	if t.done {
		return End
	}
	tokens := strings.Fields(line)
	if t.inside {
		if endIndex(tokens, t.end) >= 0 {
			t.inside = false
			t.done = true
			return End
		}
		return Body
	}
	if !declares(tokens, t.keyword, t.module) {
		return Outside
	}
	// "module m (...); endmodule" opens and closes on the same line
	if endIndex(tokens, t.end) >= 0 {
		t.done = true
	} else {
		t.inside = true
	}
	return Header
}

// Done reports whether the end keyword has been seen.
func (t *Tracker) Done() bool {
	return t.done
}

func declares(tokens []string, keyword, module string) bool {
	if module == "" {
		return false
	}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] == keyword && normalizeName(tokens[i+1]) == module {
			return true
		}
	}
	return false
}

// endIndex returns the index of the first end keyword token, or -1.
// "endmodule:" and "endmodule;" count.
func endIndex(tokens []string, end string) int {
	for i, tok := range tokens {
		if strings.TrimRight(tok, ";:") == end {
			return i
		}
	}
	return -1
}
