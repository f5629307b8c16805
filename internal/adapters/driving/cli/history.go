package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	historyClient string
	historyLimit  int
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent audits",
	Long: `Lists audits recorded in local storage, newest first.

Only the sqlite backend keeps history across runs.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyClient, "client", cliClientID, "client identity to list")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output records as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	records, err := a.history.Recent(cmd.Context(), historyClient, historyLimit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), records)
	}
	if len(records) == 0 {
		cmd.Println("No audits recorded.")
		return nil
	}
	for i := range records {
		r := records[i]
		workType := r.WorkType
		if workType == "" {
			workType = "-"
		}
		cmd.Printf("  %s  %-30s %-20s risks=%d confidence=%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Filename, workType,
			r.RisksCount, strconv.FormatFloat(r.Confidence, 'f', 2, 64))
	}
	return nil
}
