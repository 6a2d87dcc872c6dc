package fplus

import (
	"strings"
	"testing"
	"time"
)

func TestProfiler(t *testing.T) {
	p := NewProfiler()
	p.Reset()
	p.BeginScope("Culling")
	time.Sleep(time.Millisecond)
	p.EndScope("Culling")
	p.BeginScope("Upload")
	p.EndScope("Upload")
	p.SetCount("Lights", 12)

	if p.Last("Culling") < time.Millisecond {
		t.Errorf("Culling = %v, want >= 1ms", p.Last("Culling"))
	}
	if p.Total() < p.Last("Culling") {
		t.Errorf("Total %v smaller than a stage", p.Total())
	}

	stats := p.GetStatsString()
	for _, want := range []string{"Culling", "Upload", "Lights", "12", "1 frames"} {
		if !strings.Contains(stats, want) {
			t.Errorf("stats missing %q:\n%s", want, stats)
		}
	}
	if strings.Index(stats, "Culling") > strings.Index(stats, "Upload") {
		t.Errorf("stages out of order:\n%s", stats)
	}

	avg := p.Average("Culling")
	p.Reset()
	if p.Total() != 0 {
		t.Errorf("Total after reset = %v", p.Total())
	}
	if p.Average("Culling") != avg {
		t.Errorf("Average changed on reset: %v != %v", p.Average("Culling"), avg)
	}
	if p.Frames() != 2 {
		t.Errorf("Frames = %d, want 2", p.Frames())
	}
}

func TestProfiler_EndWithoutBegin(t *testing.T) {
	p := NewProfiler()
	p.EndScope("Missing")
	if p.Last("Missing") != 0 || p.Average("Missing") != 0 {
		t.Error("unknown stage recorded a duration")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	if l.DebugEnabled() {
		t.Error("nop logger reports debug enabled")
	}
	l.Debugf("%d", 1)
	l.Errorf("%d", 1)
}

func TestDefaultLogger_NamedSharesDebug(t *testing.T) {
	l := NewDefaultLogger("fplus", false)
	child := l.Named("tiling")
	if child.prefix != "fplus/tiling" {
		t.Errorf("prefix = %q", child.prefix)
	}
	l.SetDebug(true)
	if !child.DebugEnabled() {
		t.Error("child did not see debug switch")
	}
	if LevelWarn.String() != "WARN" || LevelError.String() != "ERROR" {
		t.Error("level names")
	}
}
