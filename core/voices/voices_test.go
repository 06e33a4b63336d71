package voices

import "testing"

func TestSelect(t *testing.T) {
	cases := []struct {
		preference string
		want       string
	}{
		{"male", "ash"},
		{"female", "shimmer"},
		{"no_preference", "alloy"},
		{"FEMALE", "shimmer"},
		{"", DefaultVoice},
		{"robot", DefaultVoice},
	}

	for _, c := range cases {
		if got := Select(c.preference); got != c.want {
			t.Errorf("Select(%q) = %q, want %q", c.preference, got, c.want)
		}
	}
}
