package quality

import (
	"strings"
	"testing"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/google/go-cmp/cmp"
)

func testPayload() core.IntakePayload {
	return core.IntakePayload{
		Industry:         "Healthcare services",
		Role:             "Operations director",
		Responsibilities: "Scheduling and staffing",
		WarningLabel:     "Overcommits under pressure",
		RoleModelTrait:   "Patience with people",
	}
}

const compliantTrailhead = "You lead operations in healthcare with a steady hand. " +
	"Your team sees the scheduling load you carry. " +
	"They notice when your calendar overcommits the crew. " +
	"They also see your patience with people. " +
	"That patience earns trust on hard days. " +
	"The trail ahead starts from there."

const compliantMarkers = "Here are the markers your team is most likely to notice on the trail.\n" +
	"- Calm voice in tense meetings.\n" +
	"- Clear owners for each shift.\n" +
	"- Fast replies to staff questions.\n" +
	"- Visible follow-through on promises."

const compliantTrajectory = "If nothing shifts, the team keeps waiting for you. Decisions slow down. Good people stop offering ideas. Pressure climbs each quarter.\n" +
	"If you adjust, the crew moves faster. Trust grows on its own."

const compliantNewTrail = "- Share the weekly plan on Monday.\n" +
	"- Ask one question before giving an answer.\n" +
	"- Block one hour for staff check-ins.\n" +
	"- Name a backup owner for each project.\n" +
	"- Close each week with a short thank-you."

func compliantTrailMap() string {
	return strings.Join([]string{compliantTrailhead, compliantMarkers, compliantTrajectory, compliantNewTrail}, "\n\n")
}

func TestMaxQualityIsOneHundred(t *testing.T) {
	if MaxQuality != 100 {
		t.Errorf("Expected dimension ceilings to sum to 100, got %d", MaxQuality)
	}
}

func TestEvaluateFullyCompliant(t *testing.T) {
	e := NewEvaluator()
	got := e.Evaluate(compliantTrailMap(), testPayload())

	want := RubricScore{
		Structure:        MaxStructure,
		Trailhead:        MaxTrailhead,
		MarkerLead:       MaxMarkerLead,
		MarkerBullets:    MaxMarkerBullets,
		Trajectory:       MaxTrajectoryFirst + MaxTrajectorySecond,
		NewTrail:         MaxNewTrail,
		NoDirective:      MaxNoDirective,
		NoBannedPhrase:   MaxNoBannedPhrase,
		ContextGrounding: MaxContextGrounding,
		QualityTotal:     MaxQuality,
		Sentiment:        SentimentConstructive,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreAppliesReliability(t *testing.T) {
	e := NewEvaluator()

	got := e.Score(compliantTrailMap(), testPayload(), Outcome{Succeeded: true, Attempts: 3, LatencyMs: 1000})
	if got.ReliabilityScore != 76 {
		t.Errorf("Expected reliability 76, got %d", got.ReliabilityScore)
	}
	if got.DeliveryTotal != 76 {
		t.Errorf("Expected delivery 76, got %d", got.DeliveryTotal)
	}

	failed := e.Score(compliantTrailMap(), testPayload(), Outcome{Succeeded: false, Attempts: 2})
	if failed.QualityTotal != MaxQuality {
		t.Errorf("Expected quality to be measured independently, got %d", failed.QualityTotal)
	}
	if failed.ReliabilityScore != 0 || failed.DeliveryTotal != 0 {
		t.Errorf("Expected failed request to deliver 0, got reliability %d delivery %d",
			failed.ReliabilityScore, failed.DeliveryTotal)
	}
}

func TestEvaluateNoOutput(t *testing.T) {
	e := NewEvaluator()
	for _, text := range []string{"", "   \n\n  "} {
		got := e.Score(text, testPayload(), Outcome{Succeeded: true, Attempts: 1, LatencyMs: 100})
		for _, d := range got.Dimensions() {
			if d.Value != 0 {
				t.Errorf("%q: expected %s to be 0, got %d", text, d.Name, d.Value)
			}
		}
		if got.QualityTotal != 0 || got.DeliveryTotal != 0 {
			t.Errorf("%q: expected zero totals, got quality %d delivery %d", text, got.QualityTotal, got.DeliveryTotal)
		}
		if got.Sentiment != SentimentNoOutput {
			t.Errorf("%q: expected %q, got %q", text, SentimentNoOutput, got.Sentiment)
		}
	}
}

func TestEvaluatePartialStructure(t *testing.T) {
	e := NewEvaluator()
	text := compliantTrailhead + "\n\n" + compliantMarkers
	got := e.Evaluate(text, testPayload())

	if got.Structure != MaxStructure-2*3 {
		t.Errorf("Expected structure %d, got %d", MaxStructure-6, got.Structure)
	}
	// Missing trajectory: 0 of 4 sentences floors the first part, 0 of 2 costs the second 4.
	if got.Trajectory != 0+MaxTrajectorySecond-4 {
		t.Errorf("Expected trajectory %d, got %d", MaxTrajectorySecond-4, got.Trajectory)
	}
	// 0 of 5 bullets.
	if got.NewTrail != 0 {
		t.Errorf("Expected newTrail 0, got %d", got.NewTrail)
	}
	if got.MarkerLead != MaxMarkerLead {
		t.Errorf("Expected markerLead %d, got %d", MaxMarkerLead, got.MarkerLead)
	}
}

func TestEvaluateLexicalPenalties(t *testing.T) {
	e := NewEvaluator()
	newTrail := "- Building trust weekly.\n- You must plan.\n- You need to rest.\n- Unlock your potential.\n- Adopt a growth mindset."
	text := strings.Join([]string{compliantTrailhead, compliantMarkers, compliantTrajectory, newTrail}, "\n\n")

	got := e.Evaluate(text, testPayload())
	if got.NoDirective != MaxNoDirective-3*DirectivePenalty {
		t.Errorf("Expected noDirective %d, got %d", MaxNoDirective-6, got.NoDirective)
	}
	if got.NoBannedPhrase != MaxNoBannedPhrase-2*BannedPhrasePenalty {
		t.Errorf("Expected noBannedPhrase %d, got %d", MaxNoBannedPhrase-6, got.NoBannedPhrase)
	}

	flags := e.Flags(got)
	if diff := cmp.Diff([]string{"directive language", "banned phrase"}, flags); diff != "" {
		t.Errorf("Flags mismatch (-want +got):\n%s", diff)
	}
}

func TestHighRiskFlags(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name  string
		score RubricScore
		want  []string
	}{
		{"clean", RubricScore{NoDirective: 10, NoBannedPhrase: 10}, nil},
		{"at thresholds", RubricScore{NoDirective: 6, NoBannedPhrase: 7}, nil},
		{"directive", RubricScore{NoDirective: 4, NoBannedPhrase: 10}, []string{"directive language"}},
		{"both", RubricScore{NoDirective: 2, NoBannedPhrase: 1}, []string{"directive language", "banned phrase"}},
		{"no output", EmptyScore(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, HighRiskFlags(tt.score, th)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
