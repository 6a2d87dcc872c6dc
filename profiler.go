package fplus

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type stageTiming struct {
	name    string
	start   time.Time
	last    time.Duration
	total   time.Duration
	samples int
}

// Profiler records per-stage CPU timings and counters of the frames set up
// by one ForwardLights. It is not safe for concurrent use.
type Profiler struct {
	stages map[string]*stageTiming
	order  []*stageTiming
	counts map[string]int
	frames int
}

func NewProfiler() *Profiler {
	return &Profiler{
		stages: make(map[string]*stageTiming),
		counts: make(map[string]int),
	}
}

func (p *Profiler) stage(name string) *stageTiming {
	s, ok := p.stages[name]
	if !ok {
		s = &stageTiming{name: name}
		p.stages[name] = s
		p.order = append(p.order, s)
	}
	return s
}

func (p *Profiler) BeginScope(name string) {
	p.stage(name).start = time.Now()
}

func (p *Profiler) EndScope(name string) {
	s, ok := p.stages[name]
	if !ok || s.start.IsZero() {
		return
	}
	s.last = time.Since(s.start)
	s.total += s.last
	s.samples++
	s.start = time.Time{}
}

func (p *Profiler) SetCount(name string, count int) {
	p.counts[name] = count
}

// Reset starts a new frame. Running averages are kept.
func (p *Profiler) Reset() {
	for _, s := range p.order {
		s.last = 0
	}
	p.frames++
}

// Last returns the duration of the named stage in the current frame.
func (p *Profiler) Last(name string) time.Duration {
	if s, ok := p.stages[name]; ok {
		return s.last
	}
	return 0
}

// Average returns the mean duration of the named stage over all frames.
func (p *Profiler) Average(name string) time.Duration {
	s, ok := p.stages[name]
	if !ok || s.samples == 0 {
		return 0
	}
	return s.total / time.Duration(s.samples)
}

// Total is the sum of the current frame's stage durations.
func (p *Profiler) Total() time.Duration {
	var total time.Duration
	for _, s := range p.order {
		total += s.last
	}
	return total
}

func (p *Profiler) Frames() int { return p.frames }

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Stages (CPU, %d frames):\n", p.frames)
	for _, s := range p.order {
		fmt.Fprintf(&sb, "  %-15s: %.3f ms (avg %.3f ms)\n", s.name, ms(s.last), ms(p.Average(s.name)))
	}

	sb.WriteString("\nCounts:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.counts[k])
	}
	return sb.String()
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }
