package ui

import (
	"fmt"
	"time"

	"worldgen/internal/core"
)

// StageState is how far a stage got in the current run.
type StageState int

const (
	StagePending StageState = iota
	StageNext
	StageDone
	StageFailed
)

// StageLine is one row of the stage list.
type StageLine struct {
	Name     string
	State    StageState
	Duration time.Duration
	Hash     string
}

// Status is a read-only snapshot of a run, rendered by the HUD.
type Status struct {
	Seed     int64
	Width    int
	Height   int
	RunID    string
	Layer    string
	Running  bool
	Stages   []StageLine
	Checksum string
	Err      string
	Params   core.ParameterSnapshot
}

// Lines renders the snapshot as panel text, one entry per line.
func (s Status) Lines() []string {
	lines := []string{
		fmt.Sprintf("seed %d  %dx%d", s.Seed, s.Width, s.Height),
		"run " + s.RunID,
		"layer " + s.Layer,
		"",
	}
	for _, st := range s.Stages {
		lines = append(lines, st.line())
	}
	lines = append(lines, "")
	switch {
	case s.Err != "":
		lines = append(lines, "failed: "+s.Err)
	case s.Checksum != "":
		lines = append(lines, "checksum "+s.Checksum)
	case s.Running:
		lines = append(lines, "running...")
	default:
		lines = append(lines, "N step  Enter run")
	}
	for _, g := range s.Params.Groups {
		lines = append(lines, "", g.Name)
		for _, p := range g.Params {
			lines = append(lines, fmt.Sprintf("  %s: %s", p.Label, p.Value))
		}
	}
	return lines
}

func (l StageLine) line() string {
	switch l.State {
	case StageDone:
		return fmt.Sprintf("+ %-14s %6.1fms %s", l.Name, float64(l.Duration.Microseconds())/1000, l.Hash)
	case StageNext:
		return "> " + l.Name
	case StageFailed:
		return "! " + l.Name
	}
	return "  " + l.Name
}
