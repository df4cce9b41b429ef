package release

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2", "1.2.0", 0},
		{"2.0.3", "2.1.0", -1},
		{"2.0.3", "2.0.10", -1},
		{"2.10.0", "2.9.9", 1},
		{"1.0.0", "1.0.1", -1},
		{"10.0", "9.9.9", 1},
		{"", "0.0.0", 0},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVersionStripsTagPrefixes(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"v2.1.0", "2.1.0"},
		{"n8n@2.1.0", "2.1.0"},
		{"2.1.0", "2.1.0"},
		{"tool@v1.4.2", "1.4.2"},
	}
	for _, tt := range tests {
		r := Release{TagName: tt.tag}
		if got := r.Version(); got != tt.want {
			t.Errorf("Version(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
