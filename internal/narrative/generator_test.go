package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/budget"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/llm"
)

type MockLLMClient struct {
	response    string
	shouldFail  bool
	callCount   int
	lastPrompt  string
	lastOptions llm.TextGenerationOptions
}

func (m *MockLLMClient) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	m.lastOptions = options
	if m.shouldFail {
		return "", errors.New("mock LLM error")
	}
	return m.response, nil
}

func validPayload() core.IntakePayload {
	return core.IntakePayload{
		Industry:      "Retail",
		Role:          "Store manager",
		SelectedAgent: string(core.AgentHighSchoolCoach),
	}
}

func newTestGenerator(mock *MockLLMClient) *Generator {
	g := NewGenerator(mock, DefaultOptions())
	g.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestSummaryClipsEverySection(t *testing.T) {
	long := strings.Repeat("The team trusts you on busy weekends. ", 40)
	mock := &MockLLMClient{response: strings.Join([]string{long, long, long, long, long, "extra paragraph"}, "\n\n")}
	g := newTestGenerator(mock)

	got, err := g.Summary(context.Background(), "leader-1", validPayload(), 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(got.Sections) != core.NarrativeSectionCount {
		t.Fatalf("Expected %d sections, got %d", core.NarrativeSectionCount, len(got.Sections))
	}
	for i, name := range core.SectionOrder {
		if n := utf8.RuneCountInString(got.Sections[i]); n > got.Budgets[name] {
			t.Errorf("section %s has %d characters, budget %d", name, n, got.Budgets[name])
		}
		if !strings.HasSuffix(got.Sections[i], ".") {
			t.Errorf("section %s should end on a sentence boundary: %q", name, got.Sections[i])
		}
	}
	if got.TotalChars != budget.DefaultTotal {
		t.Errorf("Expected default total, got %d", got.TotalChars)
	}
	if got.LeaderID != "leader-1" || got.ID == "" {
		t.Errorf("Expected ids to be set, got %+v", got)
	}
	if got.Agent != core.AgentHighSchoolCoach {
		t.Errorf("Expected agent to be recorded, got %s", got.Agent)
	}
	if mock.lastOptions.SystemInstruction == "" {
		t.Error("Expected the agent instruction to be sent")
	}
}

func TestSummaryClampsRequestedTotal(t *testing.T) {
	mock := &MockLLMClient{response: "One.\n\nTwo."}
	g := newTestGenerator(mock)

	got, err := g.Summary(context.Background(), "", validPayload(), 50)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got.TotalChars != budget.MinTotal {
		t.Errorf("Expected total clamped to %d, got %d", budget.MinTotal, got.TotalChars)
	}
	if got.Sections[2] != "" || got.Sections[1] != "Two." {
		t.Errorf("Expected padding after two sections, got %q", got.Sections)
	}
	if !strings.Contains(mock.lastPrompt, "at most 243 characters") {
		t.Error("Expected the prompt to carry the clamped budgets")
	}
}

func TestSummaryRejectsInvalidPayloadBeforeCallingLLM(t *testing.T) {
	mock := &MockLLMClient{response: "unused"}
	g := newTestGenerator(mock)

	_, err := g.Summary(context.Background(), "", core.IntakePayload{}, 0)
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if mock.callCount != 0 {
		t.Errorf("Expected no LLM call, got %d", mock.callCount)
	}
}

func TestSummaryPropagatesLLMFailure(t *testing.T) {
	g := newTestGenerator(&MockLLMClient{shouldFail: true})
	if _, err := g.Summary(context.Background(), "", validPayload(), 0); err == nil {
		t.Error("Expected error")
	}
}

func TestTrailMap(t *testing.T) {
	mock := &MockLLMClient{response: "\n  Trailhead.\n\nMarkers.  \n"}
	g := newTestGenerator(mock)

	got, err := g.TrailMap(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "Trailhead.\n\nMarkers." {
		t.Errorf("Unexpected trail map %q", got)
	}
	if !strings.Contains(mock.lastPrompt, core.MarkersLeadPhrase) {
		t.Error("Expected trail map prompt")
	}

	if _, err := g.TrailMap(context.Background(), core.IntakePayload{Industry: "x"}); err == nil {
		t.Error("Expected validation error for missing role")
	}
}
