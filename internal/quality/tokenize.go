package quality

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// A sentence is a run of non-terminal characters closed by one or more
	// terminal marks, or a trailing unterminated run at the end of the text.
	sentenceRegex = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

	paragraphRegex = regexp.MustCompile(`\n\s*\n`)
)

// BulletPrefix marks a bullet line once leading whitespace is trimmed.
const BulletPrefix = "- "

// SplitParagraphs splits text on blank lines. Empty paragraphs are dropped.
func SplitParagraphs(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	var out []string
	for _, p := range paragraphRegex.Split(trimmed, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSentences returns the trimmed sentences of text. Abbreviations such as
// "Dr." and ellipses are not special cased.
func SplitSentences(text string) []string {
	var out []string
	for _, m := range sentenceRegex.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CountSentences is len(SplitSentences(text)).
func CountSentences(text string) int {
	return len(SplitSentences(text))
}

// Lines returns the trimmed, non-empty lines of text.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// BulletLines returns the lines of text that start with BulletPrefix after trimming.
func BulletLines(text string) []string {
	var out []string
	for _, line := range Lines(text) {
		if strings.HasPrefix(line, BulletPrefix) {
			out = append(out, line)
		}
	}
	return out
}

// CountBullets is len(BulletLines(text)).
func CountBullets(text string) int {
	return len(BulletLines(text))
}

// FirstLongWord returns the first word in s longer than minLen letters, lowercased.
func FirstLongWord(s string, minLen int) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len([]rune(w)) > minLen {
			return strings.ToLower(w)
		}
	}
	return ""
}
