package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/config"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/evaluation"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/narrative"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/quality"
)

// NewEvaluateCmd creates the evaluation harness command. It takes no flags;
// everything comes from the evaluation section of the config.
func NewEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Score generated trail maps for the built-in persona cases",
		Long: `Run every built-in persona case through trail map generation, score each
response with the quality rubric, and write a CSV of per-job results plus a
Markdown overview with averages, failures and high-risk pattern flags.

When evaluation.endpoint is set the harness calls <endpoint>/api/trail on a
running server; otherwise it generates in process with Gemini.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			gen, err := evaluationGenerator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			_, err = runEvaluation(cmd.Context(), cfg, gen, cmd.OutOrStdout())
			return err
		},
	}
}

func evaluationGenerator(ctx context.Context, cfg *config.Config) (evaluation.Generator, error) {
	if cfg.Evaluation.Endpoint != "" {
		return evaluation.NewHTTPGenerator(cfg.Evaluation.Endpoint, cfg.Server.APIKey), nil
	}
	if err := cfg.Validate(true); err != nil {
		return nil, err
	}
	// the harness owns retries, so no rate-limit backoff here
	textGen, err := newTextGenerator(ctx, cfg, "evaluate", false)
	if err != nil {
		return nil, err
	}
	return evaluation.NewLocalGenerator(narrative.NewGenerator(textGen, narrativeOptions(cfg))), nil
}

func runEvaluation(ctx context.Context, cfg *config.Config, gen evaluation.Generator, out io.Writer) (evaluation.Artifacts, error) {
	opts := evaluation.Options{
		Workers:        cfg.Evaluation.Workers,
		Repeats:        cfg.Evaluation.Repeats,
		MaxAttempts:    cfg.Evaluation.MaxAttempts,
		AttemptTimeout: config.Duration(cfg.Evaluation.AttemptTimeout, evaluation.DefaultOptions().AttemptTimeout),
	}

	harness := evaluation.NewHarness(gen, quality.NewEvaluator(), opts)
	run, err := harness.Run(ctx, evaluation.DefaultCases())
	if err != nil {
		return evaluation.Artifacts{}, fmt.Errorf("evaluation run failed: %w", err)
	}

	summary := evaluation.Summarize(run)
	artifacts, err := evaluation.WriteArtifacts(cfg.Evaluation.OutputDir, run, summary)
	if err != nil {
		return evaluation.Artifacts{}, err
	}

	printEvaluationSummary(out, run, summary, artifacts)
	return artifacts, nil
}

func printEvaluationSummary(out io.Writer, run evaluation.Run, s evaluation.Summary, a evaluation.Artifacts) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Trail map evaluation") + "\n")
	fmt.Fprintf(&b, "%s %d jobs in %s\n", labelStyle.Render("Ran"), s.Jobs, run.FinishedAt.Sub(run.StartedAt).Round(time.Second))

	completed := okStyle.Render(fmt.Sprintf("%d completed", s.Completed))
	failed := fmt.Sprintf("%d failed", s.Failures)
	if s.Failures > 0 {
		failed = warnStyle.Render(failed)
	}
	fmt.Fprintf(&b, "%s %s, %s\n", labelStyle.Render("Status"), completed, failed)

	for _, avg := range s.Averages {
		if avg.Name == "qualityTotal" || avg.Name == "deliveryTotal" {
			fmt.Fprintf(&b, "%s %.1f / %d\n", labelStyle.Render("Avg "+avg.Name), avg.Value, avg.Max)
		}
	}
	if len(s.Flags) > 0 {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("%d high-risk pattern flags", len(s.Flags))))
	}
	fmt.Fprintf(&b, "%s %s\n%s %s", labelStyle.Render("CSV"), a.CSVPath, labelStyle.Render("Overview"), a.OverviewPath)

	fmt.Fprintln(out, boxStyle.Render(b.String()))
}
