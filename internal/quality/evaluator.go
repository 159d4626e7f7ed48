// Package quality scores generated trail maps against a structural, lexical
// and contextual rubric and discounts the result by delivery reliability.
package quality

import (
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// Trail map section positions
const (
	sectionTrailhead = iota
	sectionMarkers
	sectionTrajectory
	sectionNewTrail
)

// Evaluator scores trail map text.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an evaluator with default thresholds.
func NewEvaluator() *Evaluator {
	return &Evaluator{thresholds: DefaultThresholds()}
}

// NewEvaluatorWithThresholds creates an evaluator with custom flagging thresholds.
func NewEvaluatorWithThresholds(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// Thresholds returns the evaluator's flagging thresholds.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate computes the quality dimensions of text for payload. Reliability
// and delivery are left at zero; see Score.
func (e *Evaluator) Evaluate(text string, payload core.IntakePayload) RubricScore {
	paragraphs := SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return EmptyScore()
	}

	section := func(i int) string {
		if i < len(paragraphs) {
			return paragraphs[i]
		}
		return ""
	}

	var s RubricScore
	const hasOutput = true

	s.Structure = StructureTarget.Score(len(paragraphs), hasOutput)
	s.Trailhead = TrailheadTarget.Score(CountSentences(section(sectionTrailhead)), hasOutput)

	markers := section(sectionMarkers)
	s.MarkerLead = LeadScore(markers)
	s.MarkerBullets = MarkerBulletsTarget.Score(CountBullets(markers), hasOutput)

	first, second := trajectoryParts(section(sectionTrajectory))
	s.Trajectory = TrajectoryFirstTarget.Score(CountSentences(first), hasOutput) +
		TrajectorySecondTarget.Score(CountSentences(second), hasOutput)

	s.NewTrail = NewTrailTarget.Score(CountBullets(section(sectionNewTrail)), hasOutput)

	directives, _ := CountPatterns(text, DirectivePatterns)
	s.NoDirective = PenaltyScore(directives, MaxNoDirective, DirectivePenalty, MinNoDirective, hasOutput)

	banned, _ := CountPatterns(text, BannedPhrasePatterns)
	s.NoBannedPhrase = PenaltyScore(banned, MaxNoBannedPhrase, BannedPhrasePenalty, MinNoBannedPhrase, hasOutput)

	s.ContextGrounding = ContextGroundingScore(text, ContextTerms(payload))
	s.Sentiment = ClassifySentiment(text)

	for _, d := range s.Dimensions() {
		s.QualityTotal += d.Value
	}
	return s
}

// Score evaluates text and applies the reliability discount for outcome. A
// failed outcome keeps its quality dimensions but delivers 0.
func (e *Evaluator) Score(text string, payload core.IntakePayload, outcome Outcome) RubricScore {
	s := e.Evaluate(text, payload)
	s.ReliabilityScore = ReliabilityScore(outcome)
	s.DeliveryTotal = DeliveryTotal(s.QualityTotal, s.ReliabilityScore, outcome.Succeeded)
	return s
}

// Flags returns the high-risk pattern names for s.
func (e *Evaluator) Flags(s RubricScore) []string {
	return HighRiskFlags(s, e.thresholds)
}

// trajectoryParts returns the first two lines of the trajectory section.
func trajectoryParts(section string) (string, string) {
	lines := Lines(section)
	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return lines[0], ""
	}
	return lines[0], lines[1]
}
