package filter

import "testing"

func TestFuzzyContains(t *testing.T) {
	tests := []struct {
		text      string
		pattern   string
		tolerance int
		want      bool
	}{
		{"timeout reached", "timeout", 0, true},
		{"timout reached", "timeout", 0, false},
		{"timout reached", "timeout", 1, true},
		{"tmout reached", "timeout", 1, false},
		{"tmout reached", "timeout", 2, true},
		{"anything", "ab", 2, true},
		{"", "abc", 1, false},
		{"ab", "abcd", 1, false},
		{"abc", "abcd", 1, true},
		{"xabdy", "abcd", 1, true},
		{"ünïcode tëxt", "unicode", 2, true},
	}

	for _, tt := range tests {
		if got := fuzzyContains(tt.text, tt.pattern, tt.tolerance); got != tt.want {
			t.Errorf("fuzzyContains(%q, %q, %d) = %v, want %v", tt.text, tt.pattern, tt.tolerance, got, tt.want)
		}
	}
}

func TestFuzzyMonotonic(t *testing.T) {
	texts := []string{
		"connection refused",
		"conection refused",
		"cnnectin refused",
		"disk full",
		"",
		"c",
	}
	for _, text := range texts {
		prev := false
		for tol := 0; tol <= 5; tol++ {
			got := fuzzyContains(text, "connection", tol)
			if prev && !got {
				t.Errorf("%q matched at tolerance %d but not %d", text, tol-1, tol)
			}
			prev = got
		}
	}
}
