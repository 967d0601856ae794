package evaluation

import "strings"

// StripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// from an LLM response. Providers are instructed to answer with a bare JSON
// object but routinely wrap it anyway; this is the documented sanitization
// step before parsing, not a guarantee the remainder is valid JSON.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
