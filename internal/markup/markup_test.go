package markup

import "testing"

func TestEscapeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain word", "int"},
		{"reference", ":py:class:`~typing.Dict`\\ \\[:py:class:`str`]"},
		{"literal backticks", "``'a'``"},
		{"punctuation soup", `a[b]{c}(d)<e>!@#$%^&*`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unescape(Escape(tt.input)); got != tt.input {
				t.Fatalf("round trip = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestEscapePunctuation(t *testing.T) {
	if got := Escape("a[b]"); got != `a\[b\]` {
		t.Fatalf("Escape = %q", got)
	}
	// Letters, digits and spaces pass through.
	if got := Escape("abc 123"); got != "abc 123" {
		t.Fatalf("Escape = %q", got)
	}
}

func TestUnescapeKeepsNonBreakingSpace(t *testing.T) {
	// The escaped-space sequence must survive into the second rendering
	// pass, everything else loses its backslash.
	if got := Unescape(`\[x\] a\ b`); got != `[x] a\ b` {
		t.Fatalf("Unescape = %q", got)
	}
}

func TestUnescapeDropsNUL(t *testing.T) {
	if got := Unescape("a\x00b"); got != "ab" {
		t.Fatalf("Unescape = %q", got)
	}
}

func TestTypeSpan(t *testing.T) {
	got := TypeSpan("int")
	want := ":" + RoleName + ":`int`"
	if got != want {
		t.Fatalf("TypeSpan = %q, want %q", got, want)
	}
	// The body is escaped so nested backticks cannot terminate the role.
	got = TypeSpan(":py:class:`str`")
	want = ":" + RoleName + ":`\\:py\\:class\\:\\`str\\``"
	if got != want {
		t.Fatalf("TypeSpan = %q, want %q", got, want)
	}
}

func TestExpandTypeSpans(t *testing.T) {
	line := ":type x: " + TypeSpan(":py:class:`bool`")
	got := ExpandTypeSpans(line)
	want := ":type x: :py:class:`bool`"
	if got != want {
		t.Fatalf("ExpandTypeSpans = %q, want %q", got, want)
	}
	// Lines without markers are untouched.
	if got := ExpandTypeSpans("plain text"); got != "plain text" {
		t.Fatalf("ExpandTypeSpans = %q", got)
	}
}
