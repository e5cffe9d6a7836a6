package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/vaultmod/internal/overrides"
	"github.com/psantana5/vaultmod/internal/report"
)

var (
	applyShowMetrics bool
	applyStrict      bool
	applyRecord      bool
)

// applyCmd coerces every field of an override file
var applyCmd = &cobra.Command{
	Use:   "apply <overrides.yaml>",
	Short: "Coerce every field of an override document",
	Long: `Read an override document and coerce each field value. Fields with a type
use the wrapper type; fields with like use the type of the existing value.
Failed fields are reported and do not stop the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyShowMetrics, "metrics", false, "print coercion counters in Prometheus text format after the run")
	applyCmd.Flags().BoolVar(&applyRecord, "record", false, "save the run in the history store")
	applyCmd.Flags().BoolVar(&applyStrict, "strict", false, "exit non-zero when any field fails")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	doc, err := overrides.Load(args[0])
	if err != nil {
		return err
	}

	result, err := rt.applier.Apply(cmd.Context(), args[0], doc)
	if err != nil {
		return err
	}

	if applyRecord {
		if err := recordRun(cmd, result); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if err := writeOutput(out, result, func(w io.Writer) error { return resultTables(w, result) }); err != nil {
		return err
	}

	if applyShowMetrics {
		text, err := rt.metrics.Export()
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
	}

	if applyStrict && !result.OK() {
		return fmt.Errorf("%d of %d fields failed", len(result.Failures), result.Total())
	}
	return nil
}

func resultTables(w io.Writer, result *report.Result) error {
	if err := outcomeTable(w, result.Applied); err != nil {
		return err
	}
	if len(result.Failures) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%d failed:\n", len(result.Failures))
	table := tablewriter.NewWriter(w)
	table.Header("Record", "Field", "Literal", "Kind", "Reason")
	for _, f := range result.Failures {
		table.Append([]string{f.Record, f.Field, f.Literal, f.Kind, f.Reason})
	}
	return table.Render()
}
