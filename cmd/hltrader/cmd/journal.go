package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/hltrader/internal/display"
	"github.com/rustyeddy/hltrader/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the submission journal",
	Long: `Query and display submission records from the SQLite journal.

Subcommands:
  show   - Details of one submission by ID
  today  - Submissions made today
  day    - Submissions made on a specific day
  export - Write a date range to .xlsx or .csv

Examples:
  hltrader journal show <id>
  hltrader journal today --table
  hltrader journal day 2024-01-15
  hltrader journal export 2024-01-01 2024-02-01 -o january.xlsx`,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List submissions made today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listJournalDay(cmd, time.Now().In(time.Local).Format("2006-01-02"))
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List submissions made on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listJournalDay(cmd, args[0])
	},
}

var journalExportCmd = &cobra.Command{
	Use:   "export <from YYYY-MM-DD> <to YYYY-MM-DD>",
	Short: "Export submissions in [from, to) to xlsx or csv",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalExport,
}

var (
	journalDBPath string
	journalTable  bool
	journalOutput string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalShowCmd, journalTodayCmd, journalDayCmd, journalExportCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (defaults to journal.db_path)")
	journalCmd.PersistentFlags().BoolVar(&journalTable, "table", false, "render as a table instead of Org-mode")
	journalExportCmd.Flags().StringVarP(&journalOutput, "output", "o", "submissions.xlsx", "output file (.xlsx or .csv)")
}

func openSQLiteJournal() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal database: set journal.db_path or --db")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := openSQLiteJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.Get(args[0])
	if err != nil {
		return fmt.Errorf("get submission: %w", err)
	}
	if journalTable {
		display.Submissions(cmd.OutOrStdout(), []journal.Submission{rec})
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatSubmissionOrg(rec))
	return nil
}

func listJournalDay(cmd *cobra.Command, day string) error {
	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := openSQLiteJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListBetween(start, end)
	if err != nil {
		return fmt.Errorf("query submissions: %w", err)
	}
	out := cmd.OutOrStdout()
	if journalTable {
		display.Submissions(out, recs)
	} else {
		fmt.Fprintln(out, journal.FormatSubmissionsOrg(recs))
	}

	summary, err := j.Summary(start, end)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	states := make([]string, 0, len(summary))
	for state := range summary {
		states = append(states, state)
	}
	sort.Strings(states)
	for _, state := range states {
		fmt.Fprintf(out, "# %s: %d\n", state, summary[state])
	}
	return nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	start, _, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	end, _, err := dayBounds(time.Local, args[1])
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("to must be after from")
	}

	j, err := openSQLiteJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListBetween(start, end)
	if err != nil {
		return fmt.Errorf("query submissions: %w", err)
	}

	switch strings.ToLower(filepath.Ext(journalOutput)) {
	case ".xlsx":
		err = journal.WriteXLSX(recs, journalOutput)
	case ".csv":
		err = exportCSV(recs, journalOutput)
	default:
		return fmt.Errorf("unsupported export format %q (want .xlsx or .csv)", filepath.Ext(journalOutput))
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d submissions to %s\n", len(recs), journalOutput)
	return nil
}

func exportCSV(recs []journal.Submission, path string) error {
	c, err := journal.NewCSV(path)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := c.RecordSubmission(r); err != nil {
			c.Close()
			return err
		}
	}
	return c.Close()
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
