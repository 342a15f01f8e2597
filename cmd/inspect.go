package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/call-insights/internal/pipeline"
	"github.com/sells-group/call-insights/internal/transcript"
)

var (
	inspectCallID  string
	inspectPreview int
	inspectProcess bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show call details and the resolved transcript for one call",
	Long:  "Prints the call-detail keys and a transcript preview. With --process, also runs the call through the pipeline against the durable ledger.",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "inspect"
		if inspectProcess {
			mode = "poll"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}
		if inspectCallID == "" {
			return eris.New("inspect: --call-id is required")
		}

		payload, err := initSource().Details(cmd.Context(), inspectCallID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(out, "call %s: %d keys\n", inspectCallID, len(keys))
		for _, k := range keys {
			fmt.Fprintf(out, "  %s (%T)\n", k, payload[k])
		}

		text, ok := transcript.NewResolver().Resolve(payload)
		if !ok {
			fmt.Fprintln(out, "transcript: not found")
		} else {
			fmt.Fprintf(out, "transcript: %d characters\n", utf8.RuneCountInString(text))
			fmt.Fprintln(out, preview(text, inspectPreview))
		}

		if !inspectProcess {
			return nil
		}
		return processOne(cmd.Context(), out, inspectCallID)
	},
}

// processOne runs a single call through the orchestrator and persists the
// ledger if it was committed.
func processOne(ctx context.Context, out io.Writer, callID string) error {
	env, err := initPipeline(ctx, "poll", true)
	if err != nil {
		return err
	}
	defer env.Close()

	orch, _ := newOrchestrator(env)
	outcome := orch.ProcessCall(ctx, callID, cfg.Pipeline.MinTranscriptLen)
	if outcome.Committed() {
		if err := env.Ledger.Persist(ctx); err != nil {
			return eris.Wrap(err, "inspect: persist ledger")
		}
	}
	fmt.Fprintln(out, describeOutcome(outcome))
	return nil
}

func describeOutcome(o pipeline.Outcome) string {
	switch {
	case o.Committed():
		return fmt.Sprintf("outcome: %s", o)
	case o.Retryable():
		return fmt.Sprintf("outcome: %s (retried on the next pass)", o)
	default:
		return fmt.Sprintf("outcome: %s (not retried)", o)
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func init() {
	inspectCmd.Flags().StringVar(&inspectCallID, "call-id", "", "call identifier")
	inspectCmd.Flags().IntVar(&inspectPreview, "preview", 300, "characters of transcript to print (0 for all)")
	inspectCmd.Flags().BoolVar(&inspectProcess, "process", false, "run the call through the pipeline and record it in the ledger")
	rootCmd.AddCommand(inspectCmd)
}
