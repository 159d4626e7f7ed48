package budget

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/google/go-cmp/cmp"
)

func TestNormalizeTotal(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultTotal},
		{-5, DefaultTotal},
		{100, MinTotal},
		{900, 900},
		{2200, 2200},
		{2800, 2800},
		{5000, MaxTotal},
	}
	for _, tt := range tests {
		if got := NormalizeTotal(tt.in); got != tt.want {
			t.Errorf("NormalizeTotal(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAllocateBudgets(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  core.SectionBudget
	}{
		{
			name:  "default total",
			total: 2200,
			want: core.SectionBudget{
				core.SectionSnapshot:      495,
				core.SectionStrength:      396,
				core.SectionBlindSpots:    594,
				core.SectionGrowthSpark:   495,
				core.SectionSocietalNorms: 220,
			},
		},
		{
			// 202.5 rounds up twice, so the four sections overshoot 90% by one
			// and the residual floor takes over.
			name:  "minimum total hits the residual floor",
			total: 900,
			want: core.SectionBudget{
				core.SectionSnapshot:      203,
				core.SectionStrength:      162,
				core.SectionBlindSpots:    243,
				core.SectionGrowthSpark:   203,
				core.SectionSocietalNorms: 120,
			},
		},
		{
			name:  "maximum total",
			total: 2800,
			want: core.SectionBudget{
				core.SectionSnapshot:      630,
				core.SectionStrength:      504,
				core.SectionBlindSpots:    756,
				core.SectionGrowthSpark:   630,
				core.SectionSocietalNorms: 280,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllocateBudgets(tt.total)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AllocateBudgets(%d) mismatch (-want +got):\n%s", tt.total, diff)
			}
		})
	}
}

func TestAllocateBudgetsResidualFloor(t *testing.T) {
	for total := MinTotal; total <= MaxTotal; total++ {
		b := AllocateBudgets(total)
		if b[core.SectionSocietalNorms] < MinSocietalNorms {
			t.Fatalf("total %d: societalNorms %d below floor", total, b[core.SectionSocietalNorms])
		}
		for name, v := range b {
			if v <= 0 {
				t.Fatalf("total %d: section %s has non-positive budget %d", total, name, v)
			}
		}
		if b[core.SectionSocietalNorms] > MinSocietalNorms && b.Total() != total {
			t.Fatalf("total %d: sum %d should equal total when the floor is not binding", total, b.Total())
		}
	}
}

func TestAllocateBudgetsExceedsTotalWhenFloorBinds(t *testing.T) {
	b := AllocateBudgets(MinTotal)
	if b.Total() <= MinTotal {
		t.Errorf("Expected floor to push the sum above %d, got %d", MinTotal, b.Total())
	}
}

func TestClipSentenceSafe(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"fits untouched", "  Short text.  ", 50, "Short text."},
		{"exact fit", "Hello.", 6, "Hello."},
		{"cuts at last sentence", "One sentence. Two sentence. Three sentence.", 30, "One sentence. Two sentence."},
		{"keeps closing quote", `He said "go." Then he left quickly.`, 20, `He said "go."`},
		{"keeps closing paren", "It worked (mostly!) and then it did not.", 25, "It worked (mostly!)"},
		{"question and exclamation", "Why now? Because! And then more words here", 20, "Why now? Because!"},
		{"falls back to word boundary", "no punctuation anywhere in this text", 20, "no punctuation"},
		{"ignores dot inside a word", "version1.2 is out there somewhere", 15, "version1.2 is"},
		{"hard cut without spaces", "abcdefghijklmnopqrstuvwxyz", 10, "abcdefghij"},
		{"zero limit", "anything", 0, ""},
		{"empty text", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipSentenceSafe(tt.text, tt.limit)
			if got != tt.want {
				t.Errorf("ClipSentenceSafe(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}

func TestClipSentenceSafeNeverExceedsLimit(t *testing.T) {
	text := strings.Repeat("Leaders build trust slowly. ", 40) + "Then they spend it fast"
	for limit := 1; limit < 200; limit++ {
		got := ClipSentenceSafe(text, limit)
		if n := utf8.RuneCountInString(got); n > limit {
			t.Fatalf("limit %d: got %d characters", limit, n)
		}
	}
}

func TestClipSentenceSafeCountsCharactersNotBytes(t *testing.T) {
	text := "Café culture matters. Naïve plans fail."
	got := ClipSentenceSafe(text, 25)
	if got != "Café culture matters." {
		t.Errorf("Unexpected clip %q", got)
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("\n\nFirst line\nstill first\n\n  \n\nSecond\n \t\nThird  \n")
	want := []string{"First line\nstill first", "Second", "Third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestEnforceBudgetsAlwaysFiveSections(t *testing.T) {
	budgets := AllocateBudgets(DefaultTotal)
	inputs := map[string]string{
		"empty":  "",
		"one":    "Only one paragraph.",
		"twenty": strings.Repeat("Paragraph text.\n\n", 20),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			out := EnforceBudgets(in, budgets)
			if n := strings.Count(out, "\n\n"); n != 4 {
				t.Errorf("Expected 4 separators, got %d in %q", n, out)
			}
		})
	}
}

func TestEnforceBudgetsClipsEachSection(t *testing.T) {
	budgets := core.SectionBudget{
		core.SectionSnapshot:      20,
		core.SectionStrength:      100,
		core.SectionBlindSpots:    100,
		core.SectionGrowthSpark:   100,
		core.SectionSocietalNorms: 100,
	}
	raw := "First sentence here. Second sentence is long.\n\nStrength.\n\nBlind.\n\nSpark.\n\nNorms.\n\nDropped."

	got := EnforceBudgets(raw, budgets)
	want := "First sentence here.\n\nStrength.\n\nBlind.\n\nSpark.\n\nNorms."
	if got != want {
		t.Errorf("EnforceBudgets = %q, want %q", got, want)
	}
}

func TestEnforceSectionsPads(t *testing.T) {
	got := EnforceSections([]string{"a"}, AllocateBudgets(DefaultTotal))
	want := []string{"a", "", "", "", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EnforceSections mismatch (-want +got):\n%s", diff)
	}
}
