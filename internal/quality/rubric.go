package quality

import (
	"math"
	"strings"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// Dimension ceilings. They sum to 100.
const (
	MaxStructure        = 10
	MaxTrailhead        = 15
	MaxMarkerLead       = 10
	MaxMarkerBullets    = 10
	MaxTrajectoryFirst  = 8
	MaxTrajectorySecond = 7
	MaxNewTrail         = 10
	MaxNoDirective      = 10
	MaxNoBannedPhrase   = 10
	MaxContextGrounding = 10
)

// MaxQuality is the ceiling of RubricScore.QualityTotal.
const MaxQuality = MaxStructure + MaxTrailhead + MaxMarkerLead + MaxMarkerBullets +
	MaxTrajectoryFirst + MaxTrajectorySecond + MaxNewTrail +
	MaxNoDirective + MaxNoBannedPhrase + MaxContextGrounding

// Interval is a target window for a measured count and the score shape around it.
type Interval struct {
	Min, Max    int
	MaxScore    int
	MinScore    int
	StepPenalty int
}

// Targets for each counted dimension.
var (
	StructureTarget        = Interval{Min: 4, Max: 4, MaxScore: MaxStructure, StepPenalty: 3}
	TrailheadTarget        = Interval{Min: 6, Max: 7, MaxScore: MaxTrailhead, StepPenalty: 3}
	MarkerBulletsTarget    = Interval{Min: 3, Max: 5, MaxScore: MaxMarkerBullets, StepPenalty: 3}
	TrajectoryFirstTarget  = Interval{Min: 4, Max: 4, MaxScore: MaxTrajectoryFirst, StepPenalty: 2}
	TrajectorySecondTarget = Interval{Min: 2, Max: 2, MaxScore: MaxTrajectorySecond, StepPenalty: 2}
	NewTrailTarget         = Interval{Min: 5, Max: 5, MaxScore: MaxNewTrail, StepPenalty: 3}
)

// Score applies IntervalScore with the interval's parameters.
func (iv Interval) Score(value int, hasOutput bool) int {
	return IntervalScore(value, iv.Min, iv.Max, iv.MaxScore, iv.MinScore, iv.StepPenalty, hasOutput)
}

// IntervalScore awards maxScore while value is inside [min, max] and loses
// stepPenalty per unit of distance outside it, never dropping below minScore.
// Without output the score is 0.
func IntervalScore(value, min, max, maxScore, minScore, stepPenalty int, hasOutput bool) int {
	if !hasOutput {
		return 0
	}
	distance := 0
	switch {
	case value < min:
		distance = min - value
	case value > max:
		distance = value - max
	}
	score := maxScore - distance*stepPenalty
	if score < minScore {
		return minScore
	}
	return score
}

// LeadTier is one rung of the lead-phrase ladder.
type LeadTier struct {
	Name  string
	Score int
	Match func(section string) bool
}

// markersLeadAnchor is the looser fragment accepted by the substring tier.
const markersLeadAnchor = "markers your team"

// LeadTiers are evaluated top to bottom; the first match wins.
var LeadTiers = []LeadTier{
	{
		Name:  "exact",
		Score: 10,
		Match: func(s string) bool { return strings.HasPrefix(s, core.MarkersLeadPhrase) },
	},
	{
		Name:  "prefix",
		Score: 7,
		Match: func(s string) bool {
			return strings.HasPrefix(strings.ToLower(s), strings.ToLower(core.MarkersLeadPhrase))
		},
	},
	{
		Name:  "substring",
		Score: 4,
		Match: func(s string) bool { return strings.Contains(strings.ToLower(s), markersLeadAnchor) },
	},
	{
		Name:  "bullets",
		Score: 2,
		Match: func(s string) bool { return CountBullets(s) > 0 },
	},
}

// LeadScore scores how closely section opens with the markers lead phrase.
func LeadScore(section string) int {
	section = strings.TrimSpace(section)
	if section == "" {
		return 0
	}
	for _, tier := range LeadTiers {
		if tier.Match(section) {
			return tier.Score
		}
	}
	return 0
}

// Lexical penalties
const (
	DirectivePenalty    = 2
	MinNoDirective      = 2
	BannedPhrasePenalty = 3
	MinNoBannedPhrase   = 1
)

// PenaltyScore subtracts penalty per hit from ceiling, floored at floor.
// Without output the score is 0.
func PenaltyScore(hits, ceiling, penalty, floor int, hasOutput bool) int {
	if !hasOutput {
		return 0
	}
	return max(floor, ceiling-hits*penalty)
}

// contextTermMinLen is the length a word must exceed to count as a context term.
const contextTermMinLen = 3

// ContextTerms picks the first long word of each grounding field of payload.
// Duplicates are kept; each field counts once.
func ContextTerms(p core.IntakePayload) []string {
	var terms []string
	for _, field := range []string{p.Industry, p.Role, p.Responsibilities, p.WarningLabel, p.RoleModelTrait} {
		if w := FirstLongWord(field, contextTermMinLen); w != "" {
			terms = append(terms, w)
		}
	}
	return terms
}

// ContextGroundingScore scores the share of context terms that appear in text.
func ContextGroundingScore(text string, terms []string) int {
	if strings.TrimSpace(text) == "" || len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	found := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			found++
		}
	}
	return int(math.Round(float64(found) / float64(len(terms)) * MaxContextGrounding))
}
