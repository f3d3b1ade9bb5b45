package corpus

import "strings"

// SemicolonMarker replaces every semicolon in a normalized sentence.
const SemicolonMarker = " SEMI"

// NormalizeSentence lower-cases s, drops question marks and replaces
// semicolons with SemicolonMarker.
func NormalizeSentence(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "?", "")
	return strings.ReplaceAll(s, ";", SemicolonMarker)
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
