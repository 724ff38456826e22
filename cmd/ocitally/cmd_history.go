package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/ocitally/internal/ledger"
)

var (
	historyLimit   int
	historyRun     string
	historyCompact int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs from the local ledger",
	Long: `Show past collection runs recorded in the ledger (ledger.path), newest
first. With --run, show the per-family outcome of one run and how each family
changed since the run before it.`,
	Example: `  ocitally history -c ocitally.toml
  ocitally history --limit 5
  ocitally history --run 2024-05-01T12-00-00Z
  ocitally history --compact 30   # keep only the newest 30 runs`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list (0 for all)")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the details of one run")
	historyCmd.Flags().IntVar(&historyCompact, "compact", -1, "Drop all but the newest N runs")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Ledger.Path == "" {
		return errors.New("ledger.path is not configured")
	}

	l, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	w := cmd.OutOrStdout()
	switch {
	case historyCompact >= 0:
		n, err := l.Compact(historyCompact)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "removed %d runs\n", n)
		return err
	case historyRun != "":
		return printRun(w, l, historyRun)
	default:
		return printHistory(w, l.List(historyLimit))
	}
}

func printHistory(w io.Writer, entries []ledger.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "REV\tRUN\tSINK\tFAMILIES\tRECORDS\tFAILED\tDURATION\n")
	for _, e := range entries {
		s := e.Summary
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.Revision, s.RunID, s.Sink, len(s.Outcomes), s.Records(), len(s.Failed()),
			s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	}
	return tw.Flush()
}

func printRun(w io.Writer, l *ledger.Ledger, runID string) error {
	e, err := l.Get(runID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "run %s (revision %d, correlation %s)\n\n", e.Summary.RunID, e.Revision, e.Summary.CorrelationID)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "FAMILY\tRECORDS\tSTATUS\n")
	for _, o := range e.Summary.Outcomes {
		status := "ok"
		if !o.OK() {
			status = o.Error
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Family, o.Records, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	prev, ok := l.Previous(e.Revision)
	if !ok {
		return nil
	}
	diffs := ledger.Compare(prev, e)
	if len(diffs) == 0 {
		_, err := fmt.Fprintf(w, "\nno changes since %s\n", prev.Summary.RunID)
		return err
	}
	_, _ = fmt.Fprintf(w, "\nchanges since %s:\n", prev.Summary.RunID)
	for _, d := range diffs {
		_, _ = fmt.Fprintf(w, "  %s %s: %d -> %d (%+d)\n", d.Type, d.Family, d.Previous, d.Current, d.Delta())
	}
	return nil
}
