// Package analysis summarises a session log: how often each action occurs,
// which actions follow each other, when blinks happen and where the user
// went idle.
package analysis

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sweeney/blink-logger/internal/record"
)

// DefaultInactivity is the gap above which the user counts as idle.
const DefaultInactivity = 5 * time.Second

// Load parses every non-blank line of r. Timestamps are read in loc.
func Load(r io.Reader, loc *time.Location) ([]record.Record, error) {
	var recs []record.Record
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := record.ParseLine(text, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return recs, nil
}

// ActionCount is one row of a frequency table.
type ActionCount struct {
	Action string
	N      int
}

// sortCounts orders by descending count, then by name.
func sortCounts(counts map[string]int) []ActionCount {
	out := make([]ActionCount, 0, len(counts))
	for a, n := range counts {
		out = append(out, ActionCount{Action: a, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// ActionFrequencies counts rows per action, most frequent first.
func ActionFrequencies(recs []record.Record) []ActionCount {
	counts := make(map[string]int)
	for _, r := range recs {
		counts[r.Action]++
	}
	return sortCounts(counts)
}

// Pairs counts consecutive action pairs "a -> b", most frequent first.
// A non-positive top returns every pair.
func Pairs(recs []record.Record, top int) []ActionCount {
	counts := make(map[string]int)
	for i := 1; i < len(recs); i++ {
		counts[recs[i-1].Action+" -> "+recs[i].Action]++
	}
	out := sortCounts(counts)
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// Matrix holds row-wise transition probabilities between actions.
type Matrix struct {
	// Actions labels both rows (current) and columns (next), sorted.
	Actions []string
	P       [][]float64
}

// At returns the probability of moving from one action to another.
func (m Matrix) At(from, to string) float64 {
	i := sort.SearchStrings(m.Actions, from)
	j := sort.SearchStrings(m.Actions, to)
	if i >= len(m.Actions) || m.Actions[i] != from || j >= len(m.Actions) || m.Actions[j] != to {
		return 0
	}
	return m.P[i][j]
}

// TransitionMatrix builds P[i][j], the share of rows with action i followed
// by action j. Rows with no successor stay zero.
func TransitionMatrix(recs []record.Record) Matrix {
	seen := make(map[string]bool)
	for _, r := range recs {
		seen[r.Action] = true
	}
	actions := make([]string, 0, len(seen))
	for a := range seen {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	index := make(map[string]int, len(actions))
	for i, a := range actions {
		index[a] = i
	}

	counts := make([][]float64, len(actions))
	for i := range counts {
		counts[i] = make([]float64, len(actions))
	}
	for i := 1; i < len(recs); i++ {
		counts[index[recs[i-1].Action]][index[recs[i].Action]]++
	}
	for _, row := range counts {
		var total float64
		for _, v := range row {
			total += v
		}
		if total == 0 {
			continue
		}
		for j := range row {
			row[j] /= total
		}
	}
	return Matrix{Actions: actions, P: counts}
}

// BlinksPerAction attributes each increase of the blink count to the action
// of the row where it appeared.
func BlinksPerAction(recs []record.Record) []ActionCount {
	counts := make(map[string]int)
	for i := 1; i < len(recs); i++ {
		if d := recs[i].Blinks - recs[i-1].Blinks; d > 0 {
			counts[recs[i].Action] += d
		}
	}
	return sortCounts(counts)
}

// Gap is a stretch between two consecutive rows longer than the threshold.
type Gap struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// InactivityGaps returns gaps between consecutive rows longer than threshold.
func InactivityGaps(recs []record.Record, threshold time.Duration) []Gap {
	var gaps []Gap
	for i := 1; i < len(recs); i++ {
		d := recs[i].Time.Sub(recs[i-1].Time)
		if d > threshold {
			gaps = append(gaps, Gap{Start: recs[i-1].Time, End: recs[i].Time, Duration: d})
		}
	}
	return gaps
}

// MeanInterval returns, per action, the mean time since the previous row.
// The first row has no predecessor and is ignored.
func MeanInterval(recs []record.Record) map[string]time.Duration {
	sums := make(map[string]time.Duration)
	ns := make(map[string]int)
	for i := 1; i < len(recs); i++ {
		a := recs[i].Action
		sums[a] += recs[i].Time.Sub(recs[i-1].Time)
		ns[a]++
	}
	out := make(map[string]time.Duration, len(sums))
	for a, s := range sums {
		out[a] = s / time.Duration(ns[a])
	}
	return out
}

// RollingBlinks returns the rolling mean of the blink count over window rows.
// Element i covers rows i..i+window-1.
func RollingBlinks(recs []record.Record, window int) []float64 {
	if window < 1 || len(recs) < window {
		return nil
	}
	out := make([]float64, 0, len(recs)-window+1)
	sum := 0
	for i, r := range recs {
		sum += r.Blinks
		if i >= window {
			sum -= recs[i-window].Blinks
		}
		if i >= window-1 {
			out = append(out, float64(sum)/float64(window))
		}
	}
	return out
}

// ActionsByHour counts rows per action for each hour of day.
func ActionsByHour(recs []record.Record) map[int]map[string]int {
	out := make(map[int]map[string]int)
	for _, r := range recs {
		h := r.Time.Hour()
		if out[h] == nil {
			out[h] = make(map[string]int)
		}
		out[h][r.Action]++
	}
	return out
}

// Summary is the full report for one log.
type Summary struct {
	Records     int
	Start       time.Time
	End         time.Time
	FinalBlinks int
	Actions     []ActionCount
	Pairs       []ActionCount
	Transitions Matrix
	Blinks      []ActionCount
	Gaps        []Gap
	Intervals   map[string]time.Duration
	ByHour      map[int]map[string]int
}

// Summarize computes every statistic. topPairs limits the pair table.
func Summarize(recs []record.Record, topPairs int, inactivity time.Duration) Summary {
	s := Summary{
		Records:     len(recs),
		Actions:     ActionFrequencies(recs),
		Pairs:       Pairs(recs, topPairs),
		Transitions: TransitionMatrix(recs),
		Blinks:      BlinksPerAction(recs),
		Gaps:        InactivityGaps(recs, inactivity),
		Intervals:   MeanInterval(recs),
		ByHour:      ActionsByHour(recs),
	}
	if len(recs) > 0 {
		s.Start = recs[0].Time
		s.End = recs[len(recs)-1].Time
		s.FinalBlinks = recs[len(recs)-1].Blinks
	}
	return s
}
