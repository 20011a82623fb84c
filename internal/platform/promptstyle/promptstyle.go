package promptstyle

import "strings"

const marker = "NDTMASTER_JSON_ONLY_V1"

// ApplyJSON appends a strict JSON-only instruction with the given schema to a
// prompt. Used for providers that have no native response schema. Applying
// it twice is a no-op.
func ApplyJSON(prompt string, schemaJSON string) string {
	base := strings.TrimSpace(prompt)
	if base == "" || strings.Contains(base, marker) {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n---\n")
	b.WriteString(marker)
	b.WriteString("\nReturn a single JSON object that conforms to the schema below and contains no extra keys.")
	b.WriteString("\nDo not wrap the JSON in markdown fences and do not add commentary.")
	if s := strings.TrimSpace(schemaJSON); s != "" {
		b.WriteString("\nSchema:\n")
		b.WriteString(s)
	}
	return b.String()
}

// StripFences removes a surrounding ```json ... ``` block if a model added
// one anyway.
func StripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
