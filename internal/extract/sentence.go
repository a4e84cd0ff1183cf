package extract

import "strings"

// sentenceAround returns the minimal sentence of text containing the byte
// span [start, end). Falls back to the whole text when the span is out of
// range.
func sentenceAround(text string, start, end int) string {
	if start < 0 || end > len(text) || start >= end {
		return strings.TrimSpace(text)
	}

	from := start
	for from > 0 && !isSentenceBoundary(text[from-1]) {
		from--
	}

	to := end
	for to < len(text) && !isSentenceBoundary(text[to]) {
		to++
	}
	if to < len(text) {
		to++ // keep the terminating punctuation
	}

	return strings.TrimSpace(text[from:to])
}

func isSentenceBoundary(c byte) bool {
	switch c {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
