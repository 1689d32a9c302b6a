package reconcile

import (
	"fmt"
	"regexp"
)

// Entry is one whitelist item before compilation: exactly one of Literal or
// Pattern must be set. An entry with neither (or both) is a configuration
// error surfaced by Compile.
type Entry struct {
	Literal string
	Pattern string
}

// Whitelist is the compiled set of keys protected from deletion.
type Whitelist struct {
	literals map[string]bool
	patterns []*regexp.Regexp
}

// Compile validates and compiles whitelist entries. It fails fast: a
// malformed entry aborts reconciliation before any listing happens.
func Compile(entries []Entry) (*Whitelist, error) {
	w := &Whitelist{literals: make(map[string]bool)}
	for i, e := range entries {
		switch {
		case e.Literal != "" && e.Pattern != "":
			return nil, fmt.Errorf("whitelist entry %d: literal and pattern are mutually exclusive", i)
		case e.Literal != "":
			w.literals[e.Literal] = true
		case e.Pattern != "":
			re, err := regexp.Compile(e.Pattern)
			if err != nil {
				return nil, fmt.Errorf("whitelist entry %d: invalid pattern %q: %w", i, e.Pattern, err)
			}
			w.patterns = append(w.patterns, re)
		default:
			return nil, fmt.Errorf("whitelist entry %d: neither literal nor pattern", i)
		}
	}
	return w, nil
}

// Match reports whether key is protected: equal to a literal entry or
// matched by any pattern entry.
func (w *Whitelist) Match(key string) bool {
	if w == nil {
		return false
	}
	if w.literals[key] {
		return true
	}
	for _, re := range w.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}
