// Package metrics times the stages of a lifespan run: loading data, laying
// out the chart, writing outputs and running hooks.
//
// Collection is on by default; LIFESPAN_METRICS=0 turns it off.
//
//	defer metrics.Timer(metrics.Layout)()
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("LIFESPAN_METRICS") != "0")
}

// Enabled reports whether timings are recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// Stage accumulates the durations of one kind of work.
type Stage struct {
	name string

	mu    sync.Mutex
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

func newStage(name string) *Stage { return &Stage{name: name} }

// Name returns the stage name.
func (s *Stage) Name() string { return s.name }

// Record adds one measurement.
func (s *Stage) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.total += d
	if s.count == 1 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}

// Reset forgets every measurement.
func (s *Stage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count, s.total, s.min, s.max = 0, 0, 0, 0
}

// Stats is a snapshot of a stage.
type Stats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total_ns"`
	Avg   time.Duration `json:"avg_ns"`
	Min   time.Duration `json:"min_ns"`
	Max   time.Duration `json:"max_ns"`
}

// Stats returns the current totals.
func (s *Stage) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Name: s.name, Count: s.count, Total: s.total, Min: s.min, Max: s.max}
	if s.count > 0 {
		st.Avg = s.total / time.Duration(s.count)
	}
	return st
}

// Timer starts timing s and returns the func that stops it.
func Timer(s *Stage) func() {
	if !Enabled() || s == nil {
		return func() {}
	}
	start := time.Now()
	return func() { s.Record(time.Since(start)) }
}

// Stages of a run.
var (
	Load   = newStage("load")
	Layout = newStage("layout")
	Export = newStage("export")
	Hooks  = newStage("hooks")
)

// All returns every stage in run order.
func All() []*Stage {
	return []*Stage{Load, Layout, Export, Hooks}
}

// ResetAll resets every stage.
func ResetAll() {
	for _, s := range All() {
		s.Reset()
	}
}

// Snapshot returns stats for the stages that recorded anything.
func Snapshot() []Stats {
	var out []Stats
	for _, s := range All() {
		if st := s.Stats(); st.Count > 0 {
			out = append(out, st)
		}
	}
	return out
}

// WriteTable prints a snapshot as an aligned table.
func WriteTable(w io.Writer, stats []Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tCOUNT\tTOTAL\tAVG\tMAX")
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\t%v\n", st.Name, st.Count,
			st.Total.Round(time.Microsecond), st.Avg.Round(time.Microsecond), st.Max.Round(time.Microsecond))
	}
	return tw.Flush()
}
