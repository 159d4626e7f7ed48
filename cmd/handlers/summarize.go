package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/config"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/narrative"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/persistence"
)

// NewSummarizeCmd creates the summarize command
func NewSummarizeCmd() *cobra.Command {
	var (
		total    int
		leaderID string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "summarize <intake.json>",
		Short: "Generate a budgeted narrative summary from an intake file",
		Long: `Generate the five-section narrative summary for an intake payload stored
as JSON. Every section is clipped on a sentence boundary to its share of
the character budget.

With --leader the summary is also saved to the configured store.

Examples:
  trailhead summarize intake.json
  trailhead summarize intake.json --total 1500 --leader leader-42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			payload, err := readPayload(args[0])
			if err != nil {
				return err
			}

			cfg := config.Get()
			if err := cfg.Validate(true); err != nil {
				return err
			}
			textGen, err := newTextGenerator(ctx, cfg, "summary", true)
			if err != nil {
				return err
			}

			summary, err := narrative.NewGenerator(textGen, narrativeOptions(cfg)).Summary(ctx, leaderID, payload, total)
			if err != nil {
				return err
			}

			if leaderID != "" {
				store, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close(ctx) }()
				if err := persistence.NewRepository(store).SaveSummary(ctx, summary); err != nil {
					return err
				}
			}

			return printSummary(cmd.OutOrStdout(), summary, asJSON)
		},
	}

	cmd.Flags().IntVar(&total, "total", 0, "total character budget, 900-2800 (default from config: 2200)")
	cmd.Flags().StringVar(&leaderID, "leader", "", "leader id to store the summary under")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}

func readPayload(path string) (core.IntakePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.IntakePayload{}, fmt.Errorf("failed to read intake file: %w", err)
	}
	var payload core.IntakePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return core.IntakePayload{}, fmt.Errorf("failed to parse intake file %s: %w", path, err)
	}
	return payload, payload.Validate()
}

func printSummary(out io.Writer, s core.NarrativeSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Narrative summary (%d characters, %s)", s.TotalChars, s.Agent)))
	for i, name := range core.SectionOrder {
		text := s.Sections[i]
		fmt.Fprintf(&b, "\n\n%s\n%s", labelStyle.Render(fmt.Sprintf("%s %d/%d", name, len([]rune(text)), s.Budgets[name])), text)
	}
	fmt.Fprintln(out, boxStyle.Render(b.String()))
	return nil
}
