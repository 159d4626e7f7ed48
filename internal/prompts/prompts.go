package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// sectionGuidance describes what each narrative section covers.
var sectionGuidance = map[string]string{
	core.SectionSnapshot:      "a snapshot of how this leader shows up day to day",
	core.SectionStrength:      "the strength the team most relies on",
	core.SectionBlindSpots:    "the blind spots that strength creates",
	core.SectionGrowthSpark:   "one growth spark worth experimenting with",
	core.SectionSocietalNorms: "how the leader's answers compare with common societal norms",
}

// PayloadContext serializes the intake answers for inclusion in a prompt.
func PayloadContext(p core.IntakePayload) string {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		// IntakePayload holds only strings, ints and slices of them.
		return fmt.Sprintf("%+v", p)
	}
	return string(b)
}

// BuildSummaryPrompt asks for the five-section narrative with per-section character limits.
func BuildSummaryPrompt(p core.IntakePayload, budgets core.SectionBudget) string {
	var prompt strings.Builder

	prompt.WriteString("Write a leadership reflection for the leader described below.\n\n")
	prompt.WriteString("**Intake answers:**\n")
	prompt.WriteString(PayloadContext(p))
	prompt.WriteString("\n\n")

	prompt.WriteString(fmt.Sprintf("**Structure:** exactly %d paragraphs separated by one blank line, in this order:\n", core.NarrativeSectionCount))
	for i, name := range core.SectionOrder {
		prompt.WriteString(fmt.Sprintf("%d. %s (at most %d characters)\n", i+1, sectionGuidance[name], budgets[name]))
	}
	prompt.WriteString("\n")

	prompt.WriteString("**Rules:**\n")
	prompt.WriteString("- No headings, labels, bullets or Markdown\n")
	prompt.WriteString("- Finish every paragraph on a complete sentence within its limit\n")
	prompt.WriteString("- Speak to the leader as \"you\"\n")
	prompt.WriteString("- Ground observations in the intake answers, not generic advice\n")

	return prompt.String()
}

// BuildTrailMapPrompt asks for the four-section trail map the rubric evaluates.
func BuildTrailMapPrompt(p core.IntakePayload) string {
	var prompt strings.Builder

	prompt.WriteString("Write a trail map of how this leader's team experiences them.\n\n")
	prompt.WriteString("**Intake answers:**\n")
	prompt.WriteString(PayloadContext(p))
	prompt.WriteString("\n\n")

	prompt.WriteString("**Structure:** exactly 4 sections separated by one blank line.\n")
	prompt.WriteString("1. Trailhead: one paragraph of 6 to 7 sentences on where the leader stands today. ")
	prompt.WriteString("Mention their industry, role and responsibilities in plain words.\n")
	prompt.WriteString(fmt.Sprintf("2. Markers: start with the exact sentence \"%s\" ", core.MarkersLeadPhrase))
	prompt.WriteString("then 3 to 5 lines that each begin with \"- \" naming observable behaviors.\n")
	prompt.WriteString("3. Trajectory: two lines. The first line is exactly 4 sentences on where things go if nothing changes. ")
	prompt.WriteString("The second line is exactly 2 sentences on where things go with a small adjustment.\n")
	prompt.WriteString("4. New trail: exactly 5 lines that each begin with \"- \" describing small experiments.\n\n")

	prompt.WriteString("**Rules:**\n")
	prompt.WriteString("- Describe, do not prescribe: avoid \"you should\", \"need to\", \"must\" and \"have to\"\n")
	prompt.WriteString("- Do not start bullets with an -ing word\n")
	prompt.WriteString("- No marketing filler such as \"unlock your potential\", \"growth mindset\", \"synergy\" or \"level up\"\n")
	prompt.WriteString("- Reference the warning label and role model trait from the intake\n")
	prompt.WriteString("- No headings or Markdown other than the \"- \" bullets\n")

	return prompt.String()
}

// BuildCampaignPrompt asks for a strict JSON campaign of five traits with three statements each.
func BuildCampaignPrompt(p core.IntakePayload, summary string) string {
	var prompt strings.Builder

	prompt.WriteString("Design a continuous improvement campaign for the leader described below. ")
	prompt.WriteString("Their team will rate each statement on effort and efficacy.\n\n")
	prompt.WriteString("**Intake answers:**\n")
	prompt.WriteString(PayloadContext(p))
	prompt.WriteString("\n\n")
	if summary = strings.TrimSpace(summary); summary != "" {
		prompt.WriteString("**Reflection already shared with the leader:**\n")
		prompt.WriteString(summary)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("**Output:** a JSON array and nothing else, shaped as\n")
	prompt.WriteString(`[{"trait": "<2-4 word trait name>", "statements": ["<statement>", "<statement>", "<statement>"]}]`)
	prompt.WriteString("\n\n")
	prompt.WriteString("**Rules:**\n")
	prompt.WriteString(fmt.Sprintf("- Exactly %d traits, each with exactly %d statements\n", core.CampaignTraitCount, core.StatementsPerTrait))
	prompt.WriteString("- Statements are written for team members, in the form \"My leader ...\"\n")
	prompt.WriteString("- Each statement describes one observable behavior\n")
	prompt.WriteString("- Trait names are distinct\n")

	return prompt.String()
}

// BuildTraitReplacementPrompt asks for one new trait in the line format.
func BuildTraitReplacementPrompt(p core.IntakePayload, current []core.Trait, index int) string {
	var prompt strings.Builder

	prompt.WriteString("Replace one trait in a leader's improvement campaign.\n\n")
	prompt.WriteString("**Intake answers:**\n")
	prompt.WriteString(PayloadContext(p))
	prompt.WriteString("\n\n")

	prompt.WriteString("**Current traits:**\n")
	for i, t := range current {
		marker := ""
		if i == index {
			marker = " (replace this one)"
		}
		prompt.WriteString(fmt.Sprintf("- %s%s\n", t.Name, marker))
	}
	prompt.WriteString("\n")

	prompt.WriteString("**Output format:** exactly these four lines and nothing else\n")
	prompt.WriteString("Trait: <new trait name>\n1. <statement>\n2. <statement>\n3. <statement>\n\n")
	prompt.WriteString("**Rules:**\n")
	prompt.WriteString("- The new trait must differ from every current trait\n")
	prompt.WriteString("- Statements are written for team members, in the form \"My leader ...\"\n")

	return prompt.String()
}

// BuildStatementReplacementPrompt asks for one new statement for a trait.
func BuildStatementReplacementPrompt(p core.IntakePayload, trait core.Trait, index int) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Replace one survey statement for the trait \"%s\".\n\n", trait.Name))
	prompt.WriteString("**Intake answers:**\n")
	prompt.WriteString(PayloadContext(p))
	prompt.WriteString("\n\n")

	prompt.WriteString("**Current statements:**\n")
	for i, s := range trait.Statements {
		marker := ""
		if i == index {
			marker = " (replace this one)"
		}
		prompt.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, s, marker))
	}
	prompt.WriteString("\n")

	prompt.WriteString("**Output format:** one line and nothing else\n")
	prompt.WriteString("1. <new statement>\n\n")
	prompt.WriteString("The new statement must describe a different behavior from the other statements.\n")

	return prompt.String()
}
