package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/config"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/evaluation"
)

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"evaluate", "serve", "summarize"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected subcommand %q, got %v (%v)", name, cmd, err)
		}
	}

	evaluate, _, _ := root.Find([]string{"evaluate"})
	if evaluate.Flags().HasFlags() {
		t.Error("Expected evaluate to take no flags of its own")
	}
}

func TestRunEvaluationAgainstEndpoint(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"text": "The trailhead.\n\n" + core.MarkersLeadPhrase + "\n- Steady\n- Clear",
		})
	}))
	defer srv.Close()

	cfg := &config.Config{
		Evaluation: config.Evaluation{
			Workers:        2,
			Repeats:        1,
			MaxAttempts:    2,
			AttemptTimeout: "5s",
			OutputDir:      t.TempDir(),
			Endpoint:       srv.URL,
		},
	}

	gen, err := evaluationGenerator(context.Background(), cfg)
	if err != nil {
		t.Fatalf("evaluationGenerator failed: %v", err)
	}
	if _, ok := gen.(*evaluation.HTTPGenerator); !ok {
		t.Fatalf("Expected HTTP generator when an endpoint is configured, got %T", gen)
	}

	var out bytes.Buffer
	artifacts, err := runEvaluation(context.Background(), cfg, gen, &out)
	if err != nil {
		t.Fatalf("runEvaluation failed: %v", err)
	}

	cases := len(evaluation.DefaultCases())
	if got := calls.Load(); got != int64(cases+1) {
		t.Errorf("Expected %d calls (one retried), got %d", cases+1, got)
	}
	for _, path := range []string{artifacts.CSVPath, artifacts.OverviewPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected artifact %s: %v", path, err)
		}
	}
	if !strings.Contains(out.String(), "Trail map evaluation") || !strings.Contains(out.String(), "0 failed") {
		t.Errorf("Unexpected terminal summary:\n%s", out.String())
	}
}

func TestEvaluationGeneratorRequiresAPIKeyInProcess(t *testing.T) {
	cfg := &config.Config{
		Summary:    config.Summary{DefaultTotal: 2200},
		Evaluation: config.Evaluation{Workers: 2},
		Store:      config.Store{Driver: "memory"},
		Server:     config.Server{RateLimit: config.RateLimit{Requests: 10}},
	}
	if _, err := evaluationGenerator(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "Gemini API key") {
		t.Errorf("Expected API key error, got %v", err)
	}
}

func TestReadPayload(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	data, _ := json.Marshal(core.IntakePayload{Industry: "Retail", Role: "Manager"})
	if err := os.WriteFile(good, data, 0644); err != nil {
		t.Fatal(err)
	}
	p, err := readPayload(good)
	if err != nil || p.Industry != "Retail" {
		t.Errorf("readPayload = %+v, %v", p, err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"role":"Manager"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readPayload(bad); err == nil {
		t.Error("Expected validation error for missing industry")
	}

	if _, err := readPayload(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPrintSummary(t *testing.T) {
	s := core.NarrativeSummary{
		Sections:   []string{"One.", "Two.", "Three.", "Four.", "Five."},
		Budgets:    core.SectionBudget{core.SectionSnapshot: 495},
		TotalChars: 2200,
		Agent:      core.AgentBalancedMentor,
	}

	var text bytes.Buffer
	if err := printSummary(&text, s, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "snapshot 4/495") || !strings.Contains(text.String(), "Five.") {
		t.Errorf("Unexpected text output:\n%s", text.String())
	}

	var js bytes.Buffer
	if err := printSummary(&js, s, true); err != nil {
		t.Fatal(err)
	}
	var decoded core.NarrativeSummary
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil || decoded.TotalChars != 2200 {
		t.Errorf("Unexpected JSON output: %s", js.String())
	}
}
