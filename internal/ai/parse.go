package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON returns the substring from the first '{' to the last '}' in the
// input. This is a pragmatic approach to handle model outputs that wrap JSON
// in text or markdown.
func ExtractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}

func unmarshalJSON(j string, out any) error {
	return json.Unmarshal([]byte(j), out)
}
