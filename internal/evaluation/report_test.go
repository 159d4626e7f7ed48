package evaluation

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/quality"
)

func sampleRun() Run {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jobs := ExpandJobs(testCases(1), 3)
	ev := quality.NewEvaluator()

	ok := Result{Job: jobs[0], Status: StatusOK, HTTPStatus: 200, Attempts: 1, LatencyMs: 1200, Response: sampleTrail}
	ok.Score = ev.Score(sampleTrail, jobs[0].Payload, quality.Outcome{Succeeded: true, Attempts: 1, LatencyMs: 1200})

	risky := "You should slow down. You must listen. You need to delegate."
	flagged := Result{Job: jobs[1], Status: StatusOK, HTTPStatus: 200, Attempts: 1, Response: risky}
	flagged.Score = ev.Score(risky, jobs[1].Payload, quality.Outcome{Succeeded: true, Attempts: 1})

	failed := Result{Job: jobs[2], Status: StatusRequestError, HTTPStatus: 500, Attempts: 2,
		Error: "boom, with a comma", Score: quality.EmptyScore()}

	return Run{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Results:    []Result{ok, flagged, failed},
		Thresholds: quality.DefaultThresholds(),
	}
}

func TestSummarize(t *testing.T) {
	run := sampleRun()
	s := Summarize(run)

	if s.Jobs != 3 || s.Completed != 2 || s.Failures != 1 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if len(s.Flags) != 1 || s.Flags[0].BatchID != "002" {
		t.Fatalf("Expected only batch 002 flagged, got %+v", s.Flags)
	}
	if s.Flags[0].Reasons[0] != "directive language" {
		t.Errorf("Unexpected flag reasons: %v", s.Flags[0].Reasons)
	}

	last := s.Averages[len(s.Averages)-3]
	want := float64(run.Results[0].Score.QualityTotal+run.Results[1].Score.QualityTotal) / 2
	if last.Name != "qualityTotal" || last.Value != float64(int(want*10+0.5))/10 {
		t.Errorf("Unexpected quality average: %+v (want %.1f)", last, want)
	}
}

func TestSummarizeAllFailed(t *testing.T) {
	run := Run{Results: []Result{{Status: StatusRequestError, Score: quality.EmptyScore()}}}
	s := Summarize(run)
	if s.Failures != 1 || s.Completed != 0 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	for _, a := range s.Averages {
		if a.Value != 0 {
			t.Errorf("Expected zero average for %s, got %v", a.Name, a.Value)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	run := sampleRun()
	dir := filepath.Join(t.TempDir(), "reports")

	out, err := WriteArtifacts(dir, run, Summarize(run))
	if err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}
	if filepath.Base(out.CSVPath) != "evaluation-20260301-120000.csv" {
		t.Errorf("Unexpected CSV name: %s", out.CSVPath)
	}

	f, err := os.Open(out.CSVPath)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(rows))
	}
	header := rows[0]
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			t.Errorf("Row width %d does not match header width %d", len(row), len(header))
		}
	}
	if last := rows[3][len(header)-1]; last != "boom, with a comma" {
		t.Errorf("Expected error column to round-trip, got %q", last)
	}
	if rows[3][13] != StatusRequestError {
		t.Errorf("Expected status column, got %q", rows[3][13])
	}

	md, err := os.ReadFile(out.OverviewPath)
	if err != nil {
		t.Fatalf("read overview: %v", err)
	}
	text := string(md)
	for _, want := range []string{"Jobs: 3 (completed 2, failed 1)", "## High-Risk Patterns", "Batch 002", "directive language", "## Failures", "status 500 after 2 attempts"} {
		if !strings.Contains(text, want) {
			t.Errorf("Overview missing %q", want)
		}
	}
}

func TestHTTPGenerator(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/trail" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var p core.IntakePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Industry == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad payload"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "trail for " + p.Industry})
	}))
	defer srv.Close()

	gen := NewHTTPGenerator(srv.URL+"/", "secret")
	text, status, err := gen.Generate(context.Background(), core.IntakePayload{Industry: "Retail"})
	if err != nil || status != 200 || text != "trail for Retail" {
		t.Errorf("Generate = %q, %d, %v", text, status, err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Expected bearer header, got %q", gotAuth)
	}

	_, status, err = gen.Generate(context.Background(), core.IntakePayload{})
	if err == nil || status != http.StatusBadRequest || !strings.Contains(err.Error(), "bad payload") {
		t.Errorf("Expected 400 error, got %d %v", status, err)
	}
}

func TestHTTPGeneratorRejectsUnusableSuccessBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html page", "<html>proxy error page</html>"},
		{"truncated json", `{"text": "You start`},
		{"renamed field", `{"trail": "You start at the trailhead."}`},
		{"blank text", `{"text": "  "}`},
		{"oversized", `{"text": "` + strings.Repeat("a", maxResponseBytes) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			text, status, err := NewHTTPGenerator(srv.URL, "").Generate(context.Background(), core.IntakePayload{Industry: "Retail"})
			if err == nil || text != "" {
				t.Errorf("Expected an error, got %q, %d, %v", text, status, err)
			}
			if status != http.StatusOK {
				t.Errorf("Expected status 200 to be reported, got %d", status)
			}
		})
	}
}

func TestRunRetriesUnusableHTTPResponse(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte("<html>proxy error page</html>"))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": sampleTrail})
	}))
	defer srv.Close()

	h := NewHarness(NewHTTPGenerator(srv.URL, ""), quality.NewEvaluator(), Options{Workers: 1, Repeats: 1, MaxAttempts: 2, AttemptTimeout: time.Second})
	run, err := h.Run(context.Background(), testCases(1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	r := run.Results[0]
	if r.Status != StatusOK || r.Attempts != 2 || r.Response != sampleTrail {
		t.Errorf("Expected success on the second attempt, got %s after %d", r.Status, r.Attempts)
	}
}

type fakeMapper struct {
	err error
}

func (f fakeMapper) TrailMap(ctx context.Context, payload core.IntakePayload) (string, error) {
	return "text", f.err
}

func TestLocalGenerator(t *testing.T) {
	if text, status, err := NewLocalGenerator(fakeMapper{}).Generate(context.Background(), core.IntakePayload{}); err != nil || status != 200 || text != "text" {
		t.Errorf("Generate = %q, %d, %v", text, status, err)
	}
	if _, status, err := NewLocalGenerator(fakeMapper{err: errors.New("x")}).Generate(context.Background(), core.IntakePayload{}); err == nil || status != 500 {
		t.Errorf("Expected failure, got %d %v", status, err)
	}
}

func TestWriteCSVHeaderIncludesDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Run{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "markerLead") || !strings.Contains(buf.String(), "deliveryTotal") {
		t.Errorf("Unexpected header: %s", buf.String())
	}
}
