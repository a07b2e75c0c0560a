package globmatch

import "testing"

func TestIsGlob(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"config.json", false},
		{"*.json", true},
		{"file?.txt", true},
		{"[abc].txt", true},
		{"{a,b}.txt", true},
		{"**/*.go", true},
	}
	for _, tt := range tests {
		if got := IsGlob(tt.pattern); got != tt.want {
			t.Errorf("IsGlob(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestMatchBasename(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"*.json", "config.json", true},
		{"*.json", "config.yaml", false},
		{"config.{json,yaml}", "config.yaml", true},
		{"file?.txt", "file1.txt", true},
		{"file?.txt", "file12.txt", false},
		{"[abc].txt", "a.txt", true},
		{"[abc].txt", "d.txt", false},
	}
	for _, tt := range tests {
		if got := MatchBasename(tt.pattern, tt.name); got != tt.want {
			t.Errorf("MatchBasename(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestMatchPathDoubleStar(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"**/.git/**", "a/b/.git/HEAD", true},
		{"**/.git/**", ".git/HEAD", true}, // "**" matches zero leading segments too
		{"**/node_modules/**", "pkg/node_modules/lib/x.js", true},
	}
	for _, tt := range tests {
		if got := MatchPath(tt.pattern, tt.path); got != tt.want {
			t.Errorf("MatchPath(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	if err := Validate("[unterminated"); err == nil {
		t.Error("Validate(\"[unterminated\") should return an error")
	}
	if err := Validate("*.txt"); err != nil {
		t.Errorf("Validate(\"*.txt\") unexpected error: %v", err)
	}
}
