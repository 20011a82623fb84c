package promptstyle

import (
	"strings"
	"testing"
)

func TestApplyJSONIsIdempotent(t *testing.T) {
	once := ApplyJSON("Сгенерируй разделы", `{"type":"object"}`)
	twice := ApplyJSON(once, `{"type":"object"}`)
	if once != twice {
		t.Fatalf("second application changed prompt:\nonce=%q\ntwice=%q", once, twice)
	}
	if !strings.HasPrefix(once, "Сгенерируй разделы") {
		t.Fatalf("original prompt not kept at the start: %q", once)
	}
	if !strings.Contains(once, `{"type":"object"}`) {
		t.Fatalf("schema missing: %q", once)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		if got := StripFences(in); got != want {
			t.Fatalf("StripFences(%q): want=%q got=%q", in, want, got)
		}
	}
}
