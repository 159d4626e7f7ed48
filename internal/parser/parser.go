// Package parser recovers typed records from raw LLM output.
//
// Two contracts coexist: the JSON path is strict and all-or-nothing, the
// "Trait: / 1." text path is lenient and returns whatever it recovered.
// Parse unifies both behind Result so callers pick how strict to be.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

var (
	// Matches a Markdown code fence opener with an optional json tag, and a closing fence.
	fenceOpenRegex  = regexp.MustCompile("(?i)^```(?:json)?[ \\t]*\\n?")
	fenceCloseRegex = regexp.MustCompile("\\n?```[ \\t]*$")

	// Matches "1." / "12." statement prefixes.
	numberedLineRegex = regexp.MustCompile(`^\d+\.\s*`)

	// Blank-line paragraph boundary.
	paragraphBreakRegex = regexp.MustCompile(`\n\s*\n`)
)

// TraitMarker starts a new trait in line-delimited output.
const TraitMarker = "Trait:"

// ParseError reports structured output that cannot satisfy its contract.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed structured output: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed structured output: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StripCodeFence removes a surrounding ``` or ```json fence if present.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = fenceOpenRegex.ReplaceAllString(text, "")
	text = fenceCloseRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

type jsonTrait struct {
	Trait      *string  `json:"trait"`
	Statements []string `json:"statements"`
}

// ParseCampaignJSON parses a full campaign: exactly CampaignTraitCount traits
// with StatementsPerTrait statements each. Any violation fails the whole parse.
func ParseCampaignJSON(raw string) ([]core.Trait, error) {
	return ParseTraitsJSON(raw, core.CampaignTraitCount)
}

// ParseTraitsJSON parses a JSON array of exactly want traits.
func ParseTraitsJSON(raw string, want int) ([]core.Trait, error) {
	body := StripCodeFence(raw)
	if body == "" {
		return nil, &ParseError{Reason: "empty response"}
	}

	var items []jsonTrait
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}

	if len(items) != want {
		return nil, &ParseError{Reason: fmt.Sprintf("expected %d traits, got %d", want, len(items))}
	}

	traits := make([]core.Trait, 0, len(items))
	for i, item := range items {
		if item.Trait == nil || strings.TrimSpace(*item.Trait) == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("trait %d is missing a name", i+1)}
		}
		if len(item.Statements) != core.StatementsPerTrait {
			return nil, &ParseError{Reason: fmt.Sprintf("trait %d (%s) has %d statements, expected %d",
				i+1, *item.Trait, len(item.Statements), core.StatementsPerTrait)}
		}
		for j, s := range item.Statements {
			if strings.TrimSpace(s) == "" {
				return nil, &ParseError{Reason: fmt.Sprintf("trait %d statement %d is empty", i+1, j+1)}
			}
		}
		traits = append(traits, core.Trait{Name: *item.Trait, Statements: item.Statements})
	}

	return traits, nil
}

// ParseLineDelimitedTraits reads "Trait: name" headers followed by numbered
// statements. Unrecognised lines are skipped and no count is enforced.
func ParseLineDelimitedTraits(raw string) []core.Trait {
	var (
		traits  []core.Trait
		current *core.Trait
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, TraitMarker):
			if current != nil {
				traits = append(traits, *current)
			}
			current = &core.Trait{
				Name:       strings.TrimSpace(strings.TrimPrefix(line, TraitMarker)),
				Statements: []string{},
			}
		case current != nil && numberedLineRegex.MatchString(line):
			current.Statements = append(current.Statements, strings.TrimSpace(numberedLineRegex.ReplaceAllString(line, "")))
		}
	}

	if current != nil {
		traits = append(traits, *current)
	}
	return traits
}

// NumberedLines returns the text of every "N." line in raw, prefix stripped.
func NumberedLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if numberedLineRegex.MatchString(line) {
			if s := strings.TrimSpace(numberedLineRegex.ReplaceAllString(line, "")); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// SplitNarrativeSections splits raw text into trimmed paragraphs on blank
// lines. It never pads; empty input yields no sections.
func SplitNarrativeSections(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	parts := paragraphBreakRegex.Split(text, -1)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
