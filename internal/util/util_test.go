// internal/util/util_test.go
package util

import (
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "hello", max: 10, want: "hello"},
		{name: "ascii truncation", in: "helloworld", max: 5, want: "hello…"},
		{name: "multibyte truncation", in: "こんにちは世界", max: 4, want: "こんにち…"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	in := "Reasoning: the patient\npresents with\t acute  symptoms.\nAnswer: B"
	want := "Reasoning: the patient presents with acute symptoms. Answer:…"
	if got := Preview(in, 60); got != want {
		t.Fatalf("Preview=%q want %q", got, want)
	}
	if got := Preview("short", 60); got != "short" {
		t.Fatalf("Preview(short)=%q", got)
	}
}

func TestMin(t *testing.T) {
	t.Parallel()

	if got := Min(3, 7); got != 3 {
		t.Fatalf("Min(3,7)=%d want 3", got)
	}
	if got := Min(9, -1); got != -1 {
		t.Fatalf("Min(9,-1)=%d want -1", got)
	}
}
