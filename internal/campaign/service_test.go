package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/llm"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/parser"
	"github.com/google/go-cmp/cmp"
)

// MockLLMClient returns responses in order and repeats the last one.
type MockLLMClient struct {
	responses   []string
	shouldFail  bool
	callCount   int
	lastOptions llm.TextGenerationOptions
}

func (m *MockLLMClient) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	m.callCount++
	m.lastOptions = options
	if m.shouldFail {
		return "", errors.New("mock LLM error")
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	i := min(m.callCount, len(m.responses)) - 1
	return m.responses[i], nil
}

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newTestService(mock *MockLLMClient) *Service {
	s := NewService(mock, DefaultOptions())
	s.now = func() time.Time { return fixedNow }
	return s
}

func payload() core.IntakePayload {
	return core.IntakePayload{Industry: "Finance", Role: "Controller"}
}

func sampleTraits() []core.Trait {
	traits := make([]core.Trait, core.CampaignTraitCount)
	for i := range traits {
		traits[i] = core.Trait{
			Name: fmt.Sprintf("Trait %d", i+1),
			Statements: []string{
				fmt.Sprintf("My leader does %d.1", i+1),
				fmt.Sprintf("My leader does %d.2", i+1),
				fmt.Sprintf("My leader does %d.3", i+1),
			},
		}
	}
	return traits
}

func traitsJSON(t *testing.T, traits []core.Trait) string {
	t.Helper()
	b, err := json.Marshal(traits)
	if err != nil {
		t.Fatal(err)
	}
	return "```json\n" + string(b) + "\n```"
}

func sampleCampaign() core.Campaign {
	return core.Campaign{ID: "c1", LeaderID: "l1", Traits: sampleTraits()}
}

func TestGenerate(t *testing.T) {
	mock := &MockLLMClient{responses: []string{traitsJSON(t, sampleTraits())}}
	s := newTestService(mock)

	got, err := s.Generate(context.Background(), "leader-9", payload(), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff(sampleTraits(), got.Traits); diff != "" {
		t.Errorf("traits mismatch (-want +got):\n%s", diff)
	}
	if got.ID == "" || got.LeaderID != "leader-9" || !got.DateCreated.Equal(fixedNow) {
		t.Errorf("Unexpected campaign metadata: %+v", got)
	}
	if got.Agent != core.DefaultAgent {
		t.Errorf("Expected default agent, got %s", got.Agent)
	}
	if !mock.lastOptions.JSON {
		t.Error("Expected JSON output to be requested")
	}
}

func TestGenerateRegeneratesOnceOnMalformedOutput(t *testing.T) {
	four := sampleTraits()[:4]
	mock := &MockLLMClient{responses: []string{traitsJSON(t, four), traitsJSON(t, sampleTraits())}}

	got, err := newTestService(mock).Generate(context.Background(), "l", payload(), "")
	if err != nil {
		t.Fatalf("Expected regeneration to succeed, got: %v", err)
	}
	if len(got.Traits) != core.CampaignTraitCount || mock.callCount != 2 {
		t.Errorf("Expected 5 traits after 2 calls, got %d after %d", len(got.Traits), mock.callCount)
	}
}

func TestGenerateFailsAtomically(t *testing.T) {
	bad := sampleTraits()
	bad[2].Statements = bad[2].Statements[:2]
	mock := &MockLLMClient{responses: []string{traitsJSON(t, bad)}}

	got, err := newTestService(mock).Generate(context.Background(), "l", payload(), "")
	if !parser.IsParseError(err) {
		t.Fatalf("Expected ParseError, got: %v", err)
	}
	if got.Traits != nil {
		t.Errorf("Expected no partial campaign, got %d traits", len(got.Traits))
	}
	if mock.callCount != 2 {
		t.Errorf("Expected one regeneration, got %d calls", mock.callCount)
	}
}

func TestGenerateValidatesFirst(t *testing.T) {
	mock := &MockLLMClient{}
	s := newTestService(mock)

	var verr *core.ValidationError
	if _, err := s.Generate(context.Background(), "l", core.IntakePayload{}, ""); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
	if _, err := s.Generate(context.Background(), " ", payload(), ""); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for missing leader, got %v", err)
	}
	if mock.callCount != 0 {
		t.Errorf("Expected no LLM calls, got %d", mock.callCount)
	}
}

func TestGenerateLLMFailure(t *testing.T) {
	_, err := newTestService(&MockLLMClient{shouldFail: true}).Generate(context.Background(), "l", payload(), "")
	if err == nil || parser.IsParseError(err) {
		t.Errorf("Expected a generation error, got %v", err)
	}
}

func TestReplaceTrait(t *testing.T) {
	reply := "Sure.\nTrait: Steady Hand\n1. My leader stays calm.\n2. My leader explains changes.\n3. My leader listens first."
	mock := &MockLLMClient{responses: []string{reply}}
	c := sampleCampaign()

	got, err := newTestService(mock).ReplaceTrait(context.Background(), payload(), c, 2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := core.Trait{Name: "Steady Hand", Statements: []string{"My leader stays calm.", "My leader explains changes.", "My leader listens first."}}
	if diff := cmp.Diff(want, got.Traits[2]); diff != "" {
		t.Errorf("replacement mismatch (-want +got):\n%s", diff)
	}
	if c.Traits[2].Name != "Trait 3" {
		t.Error("Expected the input campaign to be left untouched")
	}
	if !got.DateUpdated.Equal(fixedNow) {
		t.Errorf("Expected DateUpdated to be stamped, got %v", got.DateUpdated)
	}
}

func TestReplaceTraitRejections(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no marker", "1. a\n2. b\n3. c"},
		{"two statements", "Trait: New\n1. a\n2. b"},
		{"four statements", "Trait: New\n1. a\n2. b\n3. c\n4. d"},
		{"duplicate name", "Trait: trait 1\n1. a\n2. b\n3. c"},
		{"empty name", "Trait:\n1. a\n2. b\n3. c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockLLMClient{responses: []string{tt.reply}}
			_, err := newTestService(mock).ReplaceTrait(context.Background(), payload(), sampleCampaign(), 2)
			if !parser.IsParseError(err) {
				t.Errorf("Expected ParseError, got %v", err)
			}
		})
	}
}

func TestReplaceTraitSameNameAtIndexIsAllowed(t *testing.T) {
	mock := &MockLLMClient{responses: []string{"Trait: Trait 3\n1. a\n2. b\n3. c"}}
	if _, err := newTestService(mock).ReplaceTrait(context.Background(), payload(), sampleCampaign(), 2); err != nil {
		t.Errorf("Expected reuse of the replaced name to be allowed, got %v", err)
	}
}

func TestReplaceTraitIndexOutOfRange(t *testing.T) {
	mock := &MockLLMClient{}
	var verr *core.ValidationError
	if _, err := newTestService(mock).ReplaceTrait(context.Background(), payload(), sampleCampaign(), 5); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
	if mock.callCount != 0 {
		t.Error("Expected no LLM call")
	}
}

func TestReplaceStatement(t *testing.T) {
	mock := &MockLLMClient{responses: []string{"Here you go:\n1. My leader names the tradeoff out loud."}}
	c := sampleCampaign()

	got, err := newTestService(mock).ReplaceStatement(context.Background(), payload(), c, 1, 2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got.Traits[1].Statements[2] != "My leader names the tradeoff out loud." {
		t.Errorf("Unexpected statement %q", got.Traits[1].Statements[2])
	}
	if c.Traits[1].Statements[2] != "My leader does 2.3" {
		t.Error("Expected the input campaign to be left untouched")
	}

	mock = &MockLLMClient{responses: []string{"no numbers here"}}
	if _, err := newTestService(mock).ReplaceStatement(context.Background(), payload(), c, 1, 2); !parser.IsParseError(err) {
		t.Errorf("Expected ParseError, got %v", err)
	}

	var verr *core.ValidationError
	if _, err := newTestService(mock).ReplaceStatement(context.Background(), payload(), c, 1, 3); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}
