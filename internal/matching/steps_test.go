package matching

import "testing"

func TestIsNullSentinel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		found string
		want  bool
	}{
		{found: "", want: true},
		{found: "NULL", want: true},
		{found: "  None  ", want: true},
		{found: "N/A", want: true},
		{found: "none found.", want: true},
		{found: "No direct mention of Stanford", want: true},
		{found: "Nothing states a connection", want: true},
		{found: "The profile does not mention military service", want: true},
		{found: "Air Force veteran", want: false},
		{found: "Stanford University, class of 2010", want: false},
		{found: "Nonetheless an engineer", want: false},
	}

	for _, tt := range tests {
		if got := IsNullSentinel(tt.found); got != tt.want {
			t.Errorf("IsNullSentinel(%q) = %v, want %v", tt.found, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	if got := Score(nil); got != 0 {
		t.Fatalf("expected 0 for no matches, got %d", got)
	}
}
