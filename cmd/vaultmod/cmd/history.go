package cmd

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/vaultmod/internal/history"
	"github.com/psantana5/vaultmod/internal/report"
)

var historyLimit int

// historyCmd lists or shows recorded apply runs
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded apply runs, or show one",
	Long: `Runs are recorded by "vaultmod apply --record" into the history store
configured by history.type (sqlite, postgres) and history.dsn.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("history-type", "sqlite", "history store: sqlite or postgres")
	flags.String("history-dsn", "", "history database (sqlite file path or postgres DSN)")
	viper.BindPFlag("history.type", flags.Lookup("history-type"))
	viper.BindPFlag("history.dsn", flags.Lookup("history-dsn"))

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (history.Store, error) {
	return history.NewStore(history.Config{
		Type: viper.GetString("history.type"),
		DSN:  viper.GetString("history.dsn"),
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		result, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), result, func(w io.Writer) error { return resultTables(w, result) })
	}

	runs, err := store.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), runs, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header("Run", "Source", "Started", "Took", "Applied", "Failed")
		for _, r := range runs {
			table.Append([]string{
				r.RunID,
				r.Source,
				r.StartTime.Local().Format("2006-01-02 15:04:05"),
				r.Duration.Round(time.Microsecond).String(),
				strconv.Itoa(r.Applied),
				strconv.Itoa(r.Failed),
			})
		}
		return table.Render()
	})
}

func recordRun(cmd *cobra.Command, result *report.Result) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(cmd.Context(), result)
}
