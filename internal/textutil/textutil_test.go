package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC: Back in Black", "AC-DC- Back in Black"},
		{"what? really*", "what really-"},
		{"  plain  ", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateIsRuneSafe(t *testing.T) {
	if got := Truncate("héllo wörld", 5); got != "héllo" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("short", 64); got != "short" {
		t.Fatalf("Truncate should not alter short strings, got %q", got)
	}
	if got := Truncate("Тест długiej нитки", 4); got != "Тест" {
		t.Fatalf("Truncate multibyte = %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Fatalf("Truncate with max 0 = %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("never gonna give you up"); got != "Never Gonna Give You Up" {
		t.Fatalf("TitleCase = %q", got)
	}
	if got := TitleCase("  "); got != "" {
		t.Fatalf("TitleCase of blank = %q", got)
	}
}
