package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Inspect the attendance ledger",
}

var attendanceReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print check-in/check-out times for one date",
	Long: `Print a per-person attendance report for one calendar date.

Examples:
  face-attendance attendance report
  face-attendance attendance report --date 2024-01-10`,
	RunE: runAttendanceReport,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceReportCmd)

	attendanceReportCmd.Flags().String("date", "", "Date to report on (YYYY-MM-DD, default today)")
	attendanceReportCmd.Flags().Bool("all", false, "Include people with no events on the date")
}

func runAttendanceReport(cmd *cobra.Command, args []string) error {
	date, _ := cmd.Flags().GetString("date")
	all, _ := cmd.Flags().GetBool("all")

	if date == "" {
		date = ledger.DateOf(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}

	l := svc.Ledger()

	type line struct {
		name, in, out, status string
	}
	var lines []line
	for _, row := range l.Rows {
		name := row[ledger.ColName]
		in := row[ledger.InColumn(date)]
		out := row[ledger.OutColumn(date)]
		if in == "" && !all {
			continue
		}
		lines = append(lines, line{name, in, out, l.Status(name, date).String()})
	}

	if len(lines) == 0 {
		fmt.Printf("No attendance recorded on %s.\n", date)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIN\tOUT\tSTATUS")
	for _, ln := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ln.name, ln.in, ln.out, ln.status)
	}
	return w.Flush()
}
