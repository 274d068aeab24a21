package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wangwllu/peoples-daily/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the ledger",
	Long: `History lists past fetch runs recorded in the SQLite ledger: issue date,
pages fetched, output size, and final state, most recent first.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().String("db", "", "ledger database path (default: the fetch ledger)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = historyPath()
	}
	if dbPath == "" {
		return fmt.Errorf("no ledger path configured")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPAGES\tBYTES\tCOMPRESSED\tSTATE\tOUTPUT\tRECORDED")
	for _, r := range runs {
		compressed := "no"
		if r.Compressed {
			compressed = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d/%d\t%d\t%s\t%s\t%s\t%s\n",
			r.Date, r.PagesFetched, r.PagesTotal, r.Bytes, compressed,
			r.State, r.OutputPath, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
