package simulator

import (
	"fmt"
	"strings"
)

// StepKind represents the generator family that produced a trace step
type StepKind int

const (
	StepKindSchedule StepKind = iota
	StepKindPageReference
	StepKindSeek
)

func (k StepKind) String() string {
	switch k {
	case StepKindSchedule:
		return "schedule"
	case StepKindPageReference:
		return "page_reference"
	case StepKindSeek:
		return "seek"
	default:
		return "unknown"
	}
}

// Step is the base interface for all trace records
type Step interface {
	Kind() StepKind
	String() string
}

// Trace is the complete, ordered, read-only step sequence for one run
type Trace []Step

// Len returns the number of steps in the trace
func (t Trace) Len() int { return len(t) }

// At returns the step at index i, or nil when i is out of range
func (t Trace) At(i int) Step {
	if i < 0 || i >= len(t) {
		return nil
	}
	return t[i]
}

// IdleID labels schedule intervals where no process is runnable
const IdleID = "Idle"

// ScheduleInterval is one contiguous span of CPU time, [Start, End)
type ScheduleInterval struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (s ScheduleInterval) Kind() StepKind { return StepKindSchedule }
func (s ScheduleInterval) Duration() int  { return s.End - s.Start }
func (s ScheduleInterval) IsIdle() bool   { return s.ID == IdleID }
func (s ScheduleInterval) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.ID, s.Start, s.End)
}

// EmptyFrame marks a frame slot that holds no page
const EmptyFrame = -1

// PageReferenceStep is the frame table after servicing one reference
type PageReferenceStep struct {
	Index              int   `json:"index"`              // Position in the reference string
	Page               int   `json:"page"`               // Referenced page
	Frames             []int `json:"frames"`             // Frame contents after the step, EmptyFrame for unused slots
	Fault              bool  `json:"fault"`              // Page was not resident before this step
	ReplacedFrameIndex int   `json:"replacedFrameIndex"` // Slot loaded on a fault, -1 on a hit
	EvictedPage        int   `json:"evictedPage"`        // Page pushed out, EmptyFrame when a free slot was filled or on a hit
}

func (p PageReferenceStep) Kind() StepKind { return StepKindPageReference }
func (p PageReferenceStep) Hit() bool      { return !p.Fault }
func (p PageReferenceStep) String() string {
	cells := make([]string, len(p.Frames))
	for i, f := range p.Frames {
		if f == EmptyFrame {
			cells[i] = "-"
		} else {
			cells[i] = fmt.Sprintf("%d", f)
		}
	}
	outcome := "hit"
	if p.Fault {
		outcome = fmt.Sprintf("fault@%d", p.ReplacedFrameIndex)
	}
	return fmt.Sprintf("Ref(#%d, page=%d, %s, frames=[%s])", p.Index, p.Page, outcome, strings.Join(cells, " "))
}

// DiskSeekHop is one head movement
type DiskSeekHop struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	Distance int  `json:"distance"`
	Serviced bool `json:"serviced"` // To is a pending request serviced on arrival
	Wrap     bool `json:"wrap"`     // Return jump of the circular policies
}

func newHop(from, to int, serviced, wrap bool) DiskSeekHop {
	d := to - from
	if d < 0 {
		d = -d
	}
	return DiskSeekHop{From: from, To: to, Distance: d, Serviced: serviced, Wrap: wrap}
}

func (h DiskSeekHop) Kind() StepKind { return StepKindSeek }
func (h DiskSeekHop) String() string {
	switch {
	case h.Wrap:
		return fmt.Sprintf("Wrap(%d->%d, %d)", h.From, h.To, h.Distance)
	case h.Serviced:
		return fmt.Sprintf("Seek(%d->%d, %d)", h.From, h.To, h.Distance)
	default:
		return fmt.Sprintf("Sweep(%d->%d, %d)", h.From, h.To, h.Distance)
	}
}
