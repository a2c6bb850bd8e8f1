// Command blinklog-stats summarises a session log written by blinklog-pointer
// or blinklog-gamepad.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/blink-logger/internal/analysis"
	"github.com/sweeney/blink-logger/internal/logging"
)

func main() {
	top := flag.Int("top", 15, "Number of action pairs to show (0 for all)")
	gap := flag.Duration("gap", analysis.DefaultInactivity, "Minimum idle gap to report")
	rolling := flag.Int("rolling", 10, "Rolling blink mean window in rows (0 to disable)")
	matrix := flag.Bool("matrix", false, "Print the transition matrix")
	level := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(*level, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: blinklog-stats [flags] LOGFILE")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(os.Stdout, flag.Arg(0), *top, *gap, *rolling, *matrix); err != nil {
		logger.Fatal("summarise log", zap.String("path", flag.Arg(0)), zap.Error(err))
	}
}

func run(w io.Writer, path string, top int, gap time.Duration, rolling int, matrix bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	recs, err := analysis.Load(f, time.Local)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	s := analysis.Summarize(recs, top, gap)
	printSummary(w, s)
	if matrix {
		printMatrix(w, s.Transitions)
	}
	if rolling > 0 {
		printRolling(w, analysis.RollingBlinks(recs, rolling), rolling)
	}
	return nil
}

func printSummary(w io.Writer, s analysis.Summary) {
	fmt.Fprintf(w, "records: %d\n", s.Records)
	if s.Records == 0 {
		return
	}
	fmt.Fprintf(w, "span:    %s .. %s (%v)\n",
		s.Start.Format(time.DateTime), s.End.Format(time.DateTime), s.End.Sub(s.Start))
	fmt.Fprintf(w, "blinks:  %d\n", s.FinalBlinks)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "\nACTION\tROWS\tBLINKS\tMEAN INTERVAL")
	blinks := make(map[string]int, len(s.Blinks))
	for _, b := range s.Blinks {
		blinks[b.Action] = b.N
	}
	for _, a := range s.Actions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%v\n", a.Action, a.N, blinks[a.Action], s.Intervals[a.Action].Round(time.Millisecond))
	}

	fmt.Fprintln(tw, "\nPAIR\tCOUNT")
	for _, p := range s.Pairs {
		fmt.Fprintf(tw, "%s\t%d\n", p.Action, p.N)
	}
	tw.Flush()

	printHours(w, s)

	fmt.Fprintf(w, "\nidle gaps: %d\n", len(s.Gaps))
	for _, g := range s.Gaps {
		fmt.Fprintf(w, "  %s  %v\n", g.Start.Format(time.DateTime), g.Duration)
	}
}

// printHours prints rows per action for each hour of day, actions in
// frequency order.
func printHours(w io.Writer, s analysis.Summary) {
	hours := make([]int, 0, len(s.ByHour))
	for h := range s.ByHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\nHOUR\t")
	for _, a := range s.Actions {
		fmt.Fprintf(tw, "%s\t", a.Action)
	}
	fmt.Fprintln(tw)
	for _, h := range hours {
		fmt.Fprintf(tw, "%02d\t", h)
		for _, a := range s.Actions {
			fmt.Fprintf(tw, "%d\t", s.ByHour[h][a.Action])
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func printMatrix(w io.Writer, m analysis.Matrix) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\nFROM\\TO\t")
	for _, a := range m.Actions {
		fmt.Fprintf(tw, "%s\t", a)
	}
	fmt.Fprintln(tw)
	for i, a := range m.Actions {
		fmt.Fprintf(tw, "%s\t", a)
		for _, p := range m.P[i] {
			fmt.Fprintf(tw, "%.2f\t", p)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func printRolling(w io.Writer, means []float64, window int) {
	if len(means) == 0 {
		return
	}
	lo, hi := means[0], means[0]
	for _, m := range means {
		lo = min(lo, m)
		hi = max(hi, m)
	}
	fmt.Fprintf(w, "\nrolling blink mean (%d rows): min %.2f, max %.2f, last %.2f\n",
		window, lo, hi, means[len(means)-1])
}
