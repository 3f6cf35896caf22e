package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tverens/craftplan/internal/planstore"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent planning runs",
	Long: `Display recent planning runs from the history database,
newest first, with aggregate statistics.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.History.Path
	if path == "" {
		path = planstore.DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No history yet. Run 'craftplan plan <task>' first.")
		return nil
	}

	store, err := planstore.Open(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No history yet. Run 'craftplan plan <task>' first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tGOAL\tDOMAIN\tRESULT\tSTEPS\tITER\tTIME")
	for _, r := range runs {
		result := color.GreenString("ok")
		if !r.Success {
			result = color.RedString("fail")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Goal, r.Domain, result, r.Steps, r.Iterations,
			r.Duration.Round(time.Millisecond))
	}
	w.Flush()

	sum, err := store.Stats()
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	fmt.Printf("\n%s\n", color.New(color.Faint).Sprintf(
		"%d runs total, %d succeeded, %.1f avg iterations",
		sum.Total, sum.Succeeded, sum.AvgIterations))
	return nil
}
