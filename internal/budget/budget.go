// Package budget splits a narrative character budget across sections and
// clips generated prose to those limits on sentence boundaries.
package budget

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

const (
	// DefaultTotal is used when no total is configured or requested.
	DefaultTotal = 2200
	// MinTotal and MaxTotal bound a requested total.
	MinTotal = 900
	MaxTotal = 2800
	// MainShare is the fraction of the total spread proportionally over the first four sections.
	MainShare = 0.9
	// MinSocietalNorms floors the residual section.
	MinSocietalNorms = 120
)

// Weight is a section's share of the main pool.
type Weight struct {
	Section string
	Share   float64
}

// MainWeights are applied to MainShare of the total. The residual section is not listed.
var MainWeights = []Weight{
	{Section: core.SectionSnapshot, Share: 0.25},
	{Section: core.SectionStrength, Share: 0.20},
	{Section: core.SectionBlindSpots, Share: 0.30},
	{Section: core.SectionGrowthSpark, Share: 0.25},
}

// NormalizeTotal maps an unset total to DefaultTotal and clamps everything else to [MinTotal, MaxTotal].
func NormalizeTotal(total int) int {
	switch {
	case total <= 0:
		return DefaultTotal
	case total < MinTotal:
		return MinTotal
	case total > MaxTotal:
		return MaxTotal
	}
	return total
}

// AllocateBudgets derives per-section character limits from total.
//
// The four weighted sections are each rounded independently from MainShare of
// total. societalNorms takes whatever is left, floored at MinSocietalNorms, so
// the sum only equals total while the floor is not binding.
func AllocateBudgets(total int) core.SectionBudget {
	main := float64(total) * MainShare
	budgets := make(core.SectionBudget, len(MainWeights)+1)

	allocated := 0
	for _, w := range MainWeights {
		n := int(math.Round(main * w.Share))
		budgets[w.Section] = n
		allocated += n
	}

	budgets[core.SectionSocietalNorms] = max(MinSocietalNorms, total-allocated)
	return budgets
}

// sentenceEnd matches terminal punctuation with optional closing quotes or
// brackets, followed by whitespace or the end of the window.
var sentenceEnd = regexp.MustCompile(`[.!?]["'\x{201D}\x{2019})\]]*(?:\s|$)`)

// ClipSentenceSafe trims text to at most limit characters.
//
// Text that already fits is returned trimmed. Otherwise the first limit
// characters are cut at the last sentence boundary, then at the last space,
// and only as a last resort mid-word.
func ClipSentenceSafe(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return trimmed
	}
	if limit <= 0 {
		return ""
	}

	window := string(runes[:limit])

	if locs := sentenceEnd.FindAllStringIndex(window, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		cut := strings.TrimRightFunc(window[:last[1]], unicode.IsSpace)
		if cut != "" {
			return cut
		}
	}

	if idx := strings.LastIndexFunc(window, unicode.IsSpace); idx > 0 {
		if cut := strings.TrimSpace(window[:idx]); cut != "" {
			return cut
		}
	}

	return strings.TrimSpace(window)
}

// blankLine splits paragraphs: one or more newlines with only whitespace between.
var blankLine = regexp.MustCompile(`\n\s*\n`)

// Paragraphs splits raw text on blank lines and trims each paragraph. Empty
// input yields a single empty paragraph.
func Paragraphs(raw string) []string {
	parts := blankLine.Split(strings.TrimSpace(raw), -1)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// EnforceSections pads or truncates paragraphs to the five narrative sections
// and clips each to its budget. It always returns core.NarrativeSectionCount entries.
func EnforceSections(paragraphs []string, budgets core.SectionBudget) []string {
	sections := make([]string, core.NarrativeSectionCount)
	for i, name := range core.SectionOrder {
		if i < len(paragraphs) {
			sections[i] = ClipSentenceSafe(paragraphs[i], budgets[name])
		}
	}
	return sections
}

// EnforceBudgets clips every section of rawText to its budget and rejoins the
// five sections with blank lines. Extra paragraphs beyond five are dropped.
func EnforceBudgets(rawText string, budgets core.SectionBudget) string {
	return strings.Join(EnforceSections(Paragraphs(rawText), budgets), "\n\n")
}
