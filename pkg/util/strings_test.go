package util

import "testing"

func TestTruncateCountsRunes(t *testing.T) {
	if got := Truncate("特斯拉财报", 3); got != "特斯拉" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestEllipsize(t *testing.T) {
	if got := Ellipsize("abcdef", 3); got != "abc..." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("", 7) != 7 || ParseIntDefault("x", 7) != 7 || ParseIntDefault(" 12 ", 7) != 12 {
		t.Fatalf("ParseIntDefault misbehaved")
	}
}
