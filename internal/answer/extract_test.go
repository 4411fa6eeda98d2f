// internal/answer/extract_test.go
package answer

import "testing"

// TestExtractNumeric verifies terminal-marker numeric extraction: only text
// after the last "####" is searched, grouping commas are stripped, and the
// last number in the text wins.
func TestExtractNumeric(t *testing.T) {
	t.Parallel()

	space := Numbers()
	cases := []struct {
		name string
		text string
		want string
	}{
		{"marker with commas", "The workers planted 6 trees.\n#### 24,000", "24000"},
		{"marker absent takes last number", "3 + 2 = 5 cars in the lot", "5"},
		{"trailing decimal padding", "the answer is 6.0", "6"},
		{"negative value", "balance drops to -12", "-12"},
		{"last marker wins", "#### 3 was wrong, revised:\n#### 42", "42"},
		{"fractional", "works out to 0.5 exactly", "0.5"},
		{"no number", "I cannot determine the result.", Invalid},
		{"empty", "", Invalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Extract(tc.text, space, ModeNumeric); got != tc.want {
				t.Fatalf("Extract(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

// TestExtractLetter verifies that an explicit "Answer:" field takes
// precedence over letters appearing earlier in the reasoning, and that the
// fallback scan picks the last isolated in-space letter.
func TestExtractLetter(t *testing.T) {
	t.Parallel()

	space := Letters('A', 'D')
	cases := []struct {
		name string
		text string
		want string
	}{
		{"answer field with parens", "Reasoning: A is tempting but wrong.\nAnswer: (B)", "B"},
		{"answer field bare", "Answer: C", "C"},
		{"answer field lowercase", "answer: d", "D"},
		{"fallback last isolated letter", "A or maybe C or finally D", "D"},
		{"out of space letter ignored", "Answer: Z", Invalid},
		{"letters inside words ignored", "abcd is not an answer", Invalid},
		{"empty", "", Invalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Extract(tc.text, space, ModeLetter); got != tc.want {
				t.Fatalf("Extract(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

// TestExtractLetterWideSpace covers the ten-option MMLU-Pro space.
func TestExtractLetterWideSpace(t *testing.T) {
	t.Parallel()

	space := Letters('A', 'J')
	if got := Extract("Answer: (J)", space, ModeLetter); got != "J" {
		t.Fatalf("expected J, got %q", got)
	}
	if got := Extract("definitely E, no wait, H", space, ModeLetter); got != "H" {
		t.Fatalf("expected H, got %q", got)
	}
}

// TestExtractDigit verifies bounded-digit extraction for option-index spaces.
func TestExtractDigit(t *testing.T) {
	t.Parallel()

	space := Digits(0, 3)
	cases := []struct {
		name string
		text string
		want string
	}{
		{"bare digit", "2", "2"},
		{"last in-range digit wins", "option 1 seemed right but 3 fits better", "3"},
		{"out of range digits ignored", "I'd rate it 7 out of 9", Invalid},
		{"digit inside larger number", "around 2048 pixels", "0"},
		{"empty", "", Invalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Extract(tc.text, space, ModeDigit); got != tc.want {
				t.Fatalf("Extract(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

// TestExtractLabel verifies labeled word extraction for yes/no/maybe spaces.
func TestExtractLabel(t *testing.T) {
	t.Parallel()

	space := Labels("yes", "no", "maybe")
	cases := []struct {
		name string
		text string
		want string
	}{
		{"answer field", "Reasoning: strong evidence.\nAnswer: yes", "yes"},
		{"answer field mixed case", "Answer: MAYBE", "maybe"},
		{"fallback last word", "it could be yes, but on balance no", "no"},
		{"substring does not match", "this is nothing but noise", Invalid},
		{"empty", "", Invalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Extract(tc.text, space, ModeLabel); got != tc.want {
				t.Fatalf("Extract(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

// TestExtractStripsThinkBlocks confirms reasoning blocks never contaminate
// extraction.
func TestExtractStripsThinkBlocks(t *testing.T) {
	t.Parallel()

	text := "<think>A or B? Definitely A.</think>\nAnswer: C"
	if got := Extract(text, Letters('A', 'D'), ModeLetter); got != "C" {
		t.Fatalf("expected C, got %q", got)
	}

	onlyThink := "<think>still reasoning</think>"
	if got := Extract(onlyThink, Letters('A', 'D'), ModeLetter); got != Invalid {
		t.Fatalf("expected Invalid, got %q", got)
	}
}

// TestNumericEqual verifies canonical numeric equality used for scoring.
func TestNumericEqual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want bool
	}{
		{"24.0", "24", true},
		{"24000", "24,000", true},
		{"1,234.50", "1234.5", true},
		{"6", "6.00", true},
		{"-3", "-3.0", true},
		{"5", "6", false},
		{"abc", "6", false},
	}
	for _, tc := range cases {
		if got := NumericEqual(tc.a, tc.b); got != tc.want {
			t.Fatalf("NumericEqual(%q, %q) = %t, want %t", tc.a, tc.b, got, tc.want)
		}
	}
}

// TestSpaceContains exercises membership for bounded and numeric spaces.
func TestSpaceContains(t *testing.T) {
	t.Parallel()

	letters := Letters('A', 'D')
	if !letters.Contains("B") || letters.Contains("E") || letters.Contains(Refusal) {
		t.Fatalf("letter space membership incorrect: %v", letters.Tokens())
	}

	nums := Numbers()
	if !nums.Contains("42") || !nums.Contains("-1.5") || nums.Contains("forty") {
		t.Fatal("numeric space membership incorrect")
	}
	if nums.Tokens() != nil {
		t.Fatal("numeric space should not enumerate tokens")
	}
}
