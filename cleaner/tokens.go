package cleaner

import "unicode/utf8"

// EstimateTokens provides a fast token count estimate without importing
// a tokenizer. English text averages ~4 chars/token; dividing the rune
// count by 3 over-estimates slightly, which is the safe direction when
// deciding whether a fragment is worth reducing further.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}
