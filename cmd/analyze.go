package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/pipeline"
)

var analyzeFile string

// analyzeOutput is printed by the analyze command.
type analyzeOutput struct {
	Analysis         model.Analysis `json:"analysis"`
	AnalysisDegraded bool           `json:"analysis_degraded"`
	Variant          model.Variant  `json:"variant"`
	Derived          model.Derived  `json:"derived"`
	DerivedDegraded  bool           `json:"derived_degraded"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a transcript without touching the sink or ledger",
	Long:  "Reads transcript text from --file or stdin, runs both transform stages and prints the result as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		text, err := readTranscript(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return eris.New("analyze: empty transcript")
		}

		variant, err := configuredVariant()
		if err != nil {
			return err
		}
		stage, err := initStage()
		if err != nil {
			return err
		}
		deriver, err := pipeline.NewDeriver(variant, stage)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		analysis := stage.Analyze(ctx, text)
		derived, derivedDegraded := deriver.Derive(ctx, analysis.Value)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(analyzeOutput{
			Analysis:         analysis.Value,
			AnalysisDegraded: analysis.Degraded,
			Variant:          variant,
			Derived:          derived,
			DerivedDegraded:  derivedDegraded,
		})
	},
}

func readTranscript(stdin io.Reader) (string, error) {
	if analyzeFile != "" {
		b, err := os.ReadFile(analyzeFile)
		if err != nil {
			return "", eris.Wrapf(err, "analyze: read %s", analyzeFile)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", eris.Wrap(err, "analyze: read stdin")
	}
	return string(b), nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "transcript file (default stdin)")
	rootCmd.AddCommand(analyzeCmd)
}
