package reconcile

import "testing"

func TestCompileAndMatch(t *testing.T) {
	w, err := Compile([]Entry{
		{Literal: "keep/exact.txt"},
		{Pattern: "^logs/"},
		{Pattern: `\.pdf$`},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	cases := []struct {
		key  string
		want bool
	}{
		{"keep/exact.txt", true},
		{"keep/exact.txt.bak", false},
		{"logs/2026/08.log", true},
		{"reports/q2.pdf", true},
		{"reports/q2.html", false},
		{"other.txt", false},
	}
	for _, tc := range cases {
		if got := w.Match(tc.key); got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestCompileEmptyEntry(t *testing.T) {
	if _, err := Compile([]Entry{{}}); err == nil {
		t.Error("expected error for entry with neither literal nor pattern")
	}
}

func TestCompileBothSet(t *testing.T) {
	if _, err := Compile([]Entry{{Literal: "a", Pattern: "b"}}); err == nil {
		t.Error("expected error for entry with both literal and pattern")
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	if _, err := Compile([]Entry{{Pattern: "("}}); err == nil {
		t.Error("expected error for invalid regexp")
	}
}

func TestNilWhitelistMatchesNothing(t *testing.T) {
	var w *Whitelist
	if w.Match("anything") {
		t.Error("nil whitelist must not match")
	}
}
