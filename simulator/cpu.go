package simulator

import (
	"fmt"
	"sort"
)

// Process is an immutable CPU scheduling input
type Process struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	ArrivalTime int    `json:"arrivalTime" yaml:"arrivalTime" toml:"arrivalTime"`
	BurstTime   int    `json:"burstTime" yaml:"burstTime" toml:"burstTime"`
}

// runtimeProcess is a generator-local working copy of a Process
type runtimeProcess struct {
	Process
	index     int // Position in the caller's list
	remaining int
}

func newRuntimeProcesses(processes []Process) []runtimeProcess {
	rps := make([]runtimeProcess, len(processes))
	for i, p := range processes {
		rps[i] = runtimeProcess{Process: p, index: i, remaining: p.BurstTime}
	}
	return rps
}

// timeline appends intervals that tile [0, now) without gaps
type timeline struct {
	now       int
	intervals []ScheduleInterval
}

// idleUntil fills [now, t) with an Idle interval when t is in the future
func (tl *timeline) idleUntil(t int) {
	if t <= tl.now {
		return
	}
	tl.intervals = append(tl.intervals, ScheduleInterval{ID: IdleID, Start: tl.now, End: t})
	tl.now = t
}

func (tl *timeline) run(id string, d int) {
	tl.intervals = append(tl.intervals, ScheduleInterval{ID: id, Start: tl.now, End: tl.now + d})
	tl.now += d
}

// FCFS runs processes to completion in (arrivalTime, input order) order.
func FCFS(processes []Process) []ScheduleInterval {
	order := make([]int, len(processes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return processes[order[a]].ArrivalTime < processes[order[b]].ArrivalTime
	})

	tl := &timeline{}
	for _, i := range order {
		p := processes[i]
		tl.idleUntil(p.ArrivalTime)
		tl.run(p.ID, p.BurstTime)
	}
	return tl.intervals
}

// SJF is non-preemptive shortest job first. Among arrived processes the one
// with the least remaining time wins; ties go to the earlier arrival, then
// to the earlier input position.
func SJF(processes []Process) []ScheduleInterval {
	rps := newRuntimeProcesses(processes)
	tl := &timeline{}

	for completed := 0; completed < len(rps); {
		best := -1
		for i := range rps {
			rp := &rps[i]
			if rp.remaining == 0 || rp.ArrivalTime > tl.now {
				continue
			}
			if best < 0 || shorterJob(rp, &rps[best]) {
				best = i
			}
		}

		if best < 0 {
			next := -1
			for i := range rps {
				if rps[i].remaining > 0 && (next < 0 || rps[i].ArrivalTime < next) {
					next = rps[i].ArrivalTime
				}
			}
			tl.idleUntil(next)
			continue
		}

		rp := &rps[best]
		tl.run(rp.ID, rp.remaining)
		rp.remaining = 0
		completed++
	}
	return tl.intervals
}

func shorterJob(a, b *runtimeProcess) bool {
	if a.remaining != b.remaining {
		return a.remaining < b.remaining
	}
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime < b.ArrivalTime
	}
	return a.index < b.index
}

// RoundRobin dispatches from a FIFO ready queue for min(quantum, remaining).
// Processes arriving while a slice runs, or exactly when it ends, are queued
// before the preempted process goes back to the tail.
func RoundRobin(processes []Process, quantum int) []ScheduleInterval {
	rps := newRuntimeProcesses(processes)
	arrivals := NewArrivalQueue(processes)
	tl := &timeline{}
	var ready []int

	for {
		ready = append(ready, arrivals.ReleaseUntil(tl.now)...)
		if len(ready) == 0 {
			if arrivals.IsEmpty() {
				break
			}
			tl.idleUntil(arrivals.NextTime())
			continue
		}

		i := ready[0]
		ready = ready[1:]
		rp := &rps[i]
		slice := min(quantum, rp.remaining)
		tl.run(rp.ID, slice)
		rp.remaining -= slice

		ready = append(ready, arrivals.ReleaseUntil(tl.now)...)
		if rp.remaining > 0 {
			ready = append(ready, i)
		}
	}
	return tl.intervals
}

// ScheduleCPU validates the input, runs the chosen policy and derives
// per-process and aggregate metrics. quantum is only read by round robin.
func ScheduleCPU(alg CPUAlgorithm, processes []Process, quantum int) (*CPUSchedule, error) {
	if err := ValidateProcesses(processes); err != nil {
		return nil, err
	}

	var intervals []ScheduleInterval
	switch alg {
	case CPUFCFS:
		intervals = FCFS(processes)
	case CPUSJF:
		intervals = SJF(processes)
	case CPURoundRobin:
		if quantum < 1 {
			return nil, ErrInvalidConfig("quantum must be >= 1")
		}
		intervals = RoundRobin(processes, quantum)
	default:
		return nil, ErrInvalidConfig(fmt.Sprintf("unknown cpu algorithm %d", int(alg)))
	}

	schedule := &CPUSchedule{
		Algorithm: alg,
		Intervals: intervals,
		Processes: computeProcessMetrics(processes, intervals),
	}
	if alg == CPURoundRobin {
		schedule.Quantum = quantum
	}
	schedule.Summary = summarizeCPU(schedule.Processes, intervals)
	return schedule, nil
}

// CPUSchedule is the full result of one CPU scheduling run
type CPUSchedule struct {
	Algorithm CPUAlgorithm       `json:"algorithm"`
	Quantum   int                `json:"quantum,omitempty"`
	Intervals []ScheduleInterval `json:"intervals"`
	Processes []ProcessMetrics   `json:"processes"` // Input order
	Summary   CPUSummary         `json:"summary"`
}

// Trace returns the intervals as playback steps
func (s *CPUSchedule) Trace() Trace {
	trace := make(Trace, len(s.Intervals))
	for i, iv := range s.Intervals {
		trace[i] = iv
	}
	return trace
}
