package evaluation

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/quality"
)

// Average is the mean of one reported metric.
type Average struct {
	Name  string
	Value float64
	Max   int
}

// Flag marks a result whose lexical scores fell below the thresholds.
type Flag struct {
	BatchID string
	CaseID  string
	Agent   string
	Reasons []string
}

// Summary aggregates a run for the overview report.
type Summary struct {
	Jobs      int
	Completed int
	Failures  int
	Averages  []Average
	Flags     []Flag
}

// Summarize averages scores over completed results. Failed jobs are counted
// separately rather than averaged in as zeros.
func Summarize(run Run) Summary {
	s := Summary{Jobs: len(run.Results)}

	var sums []float64
	var qualitySum, reliability, delivery float64
	for _, r := range run.Results {
		if r.Status != StatusOK {
			s.Failures++
			continue
		}
		s.Completed++

		dims := r.Score.Dimensions()
		if sums == nil {
			sums = make([]float64, len(dims))
		}
		for i, d := range dims {
			sums[i] += float64(d.Value)
		}
		qualitySum += float64(r.Score.QualityTotal)
		reliability += float64(r.Score.ReliabilityScore)
		delivery += float64(r.Score.DeliveryTotal)

		if reasons := quality.HighRiskFlags(r.Score, run.Thresholds); len(reasons) > 0 {
			s.Flags = append(s.Flags, Flag{
				BatchID: r.Job.BatchID,
				CaseID:  r.Job.CaseID,
				Agent:   r.Job.Payload.SelectedAgent,
				Reasons: reasons,
			})
		}
	}

	for i, d := range quality.EmptyScore().Dimensions() {
		var v float64
		if s.Completed > 0 {
			v = mean(sums[i], s.Completed)
		}
		s.Averages = append(s.Averages, Average{Name: d.Name, Value: v, Max: d.Max})
	}
	s.Averages = append(s.Averages,
		Average{Name: "qualityTotal", Value: mean(qualitySum, s.Completed), Max: quality.MaxQuality},
		Average{Name: "reliabilityScore", Value: mean(reliability, s.Completed), Max: quality.MaxReliability},
		Average{Name: "deliveryTotal", Value: mean(delivery, s.Completed), Max: quality.MaxQuality},
	)
	return s
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*10) / 10
}

// csvHeader returns the column names, rubric dimensions included.
func csvHeader() []string {
	header := []string{
		"batchId", "caseId", "runIndex", "agent",
		"industry", "role", "responsibilities", "teamSize", "leadershipExperience",
		"warningLabel", "roleModelTrait", "energyDrains", "behaviorDichotomies",
		"status", "httpStatus", "attempts", "latencyMs",
	}
	for _, d := range quality.EmptyScore().Dimensions() {
		header = append(header, d.Name)
	}
	return append(header, "qualityTotal", "reliabilityScore", "deliveryTotal", "sentiment", "error")
}

// WriteCSV writes one row per result.
func WriteCSV(w io.Writer, run Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader()); err != nil {
		return err
	}

	for _, r := range run.Results {
		p := r.Job.Payload
		row := []string{
			r.Job.BatchID, r.Job.CaseID, strconv.Itoa(r.Job.RunIndex), p.SelectedAgent,
			p.Industry, p.Role, p.Responsibilities, p.TeamSize, p.LeadershipExperience,
			p.WarningLabel, p.RoleModelTrait, strings.Join(p.EnergyDrains, "|"), joinInts(p.BehaviorDichotomies),
			r.Status, strconv.Itoa(r.HTTPStatus), strconv.Itoa(r.Attempts), strconv.FormatInt(r.LatencyMs, 10),
		}
		for _, d := range r.Score.Dimensions() {
			row = append(row, strconv.Itoa(d.Value))
		}
		row = append(row,
			strconv.Itoa(r.Score.QualityTotal),
			strconv.Itoa(r.Score.ReliabilityScore),
			strconv.Itoa(r.Score.DeliveryTotal),
			r.Score.Sentiment,
			r.Error,
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "|")
}

// WriteOverview writes the Markdown overview of run.
func WriteOverview(w io.Writer, run Run, s Summary) error {
	var b strings.Builder

	b.WriteString("# Trail Map Evaluation Overview\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", run.ID)
	fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "- Jobs: %d (completed %d, failed %d)\n\n", s.Jobs, s.Completed, s.Failures)

	b.WriteString("## Averages\n\n")
	b.WriteString("| Metric | Average | Max |\n|---|---:|---:|\n")
	for _, a := range s.Averages {
		fmt.Fprintf(&b, "| %s | %.1f | %d |\n", a.Name, a.Value, a.Max)
	}

	b.WriteString("\n## High-Risk Patterns\n\n")
	fmt.Fprintf(&b, "Flagged when noDirective < %d or noBannedPhrase < %d.\n\n",
		run.Thresholds.MinNoDirective, run.Thresholds.MinNoBannedPhrase)
	if len(s.Flags) == 0 {
		b.WriteString("None.\n")
	}
	for _, f := range s.Flags {
		fmt.Fprintf(&b, "- Batch %s (%s, %s): %s\n", f.BatchID, f.CaseID, f.Agent, strings.Join(f.Reasons, ", "))
	}

	if s.Failures > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, r := range run.Results {
			if r.Status == StatusOK {
				continue
			}
			fmt.Fprintf(&b, "- Batch %s (%s): status %d after %d attempts\n", r.Job.BatchID, r.Job.CaseID, r.HTTPStatus, r.Attempts)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Artifacts are the files written for one run.
type Artifacts struct {
	CSVPath      string
	OverviewPath string
}

// WriteArtifacts writes evaluation-<stamp>.csv and evaluation-<stamp>-overview.md into dir.
func WriteArtifacts(dir string, run Run, s Summary) (Artifacts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Artifacts{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := run.StartedAt.Format("20060102-150405")
	out := Artifacts{
		CSVPath:      filepath.Join(dir, "evaluation-"+stamp+".csv"),
		OverviewPath: filepath.Join(dir, "evaluation-"+stamp+"-overview.md"),
	}

	if err := writeFile(out.CSVPath, func(w io.Writer) error { return WriteCSV(w, run) }); err != nil {
		return Artifacts{}, err
	}
	if err := writeFile(out.OverviewPath, func(w io.Writer) error { return WriteOverview(w, run, s) }); err != nil {
		return Artifacts{}, err
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
