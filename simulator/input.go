package simulator

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntSequence parses free text such as "7, 0 1,2" into integers.
// Spaces, commas, tabs, semicolons and newlines all separate tokens.
func ParseIntSequence(text string) ([]int, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', ',', '\t', '\n', '\r', ';':
			return true
		}
		return false
	})
	out := make([]int, 0, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, ErrInvalidInput(fmt.Sprintf("token %d (%q) is not an integer", i+1, f))
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseProcesses zips an arrival sequence and a burst sequence into
// processes named P1..Pn and validates them.
func ParseProcesses(arrivals, bursts string) ([]Process, error) {
	arr, err := ParseIntSequence(arrivals)
	if err != nil {
		return nil, fmt.Errorf("arrival times: %w", err)
	}
	bur, err := ParseIntSequence(bursts)
	if err != nil {
		return nil, fmt.Errorf("burst times: %w", err)
	}
	if len(arr) != len(bur) {
		return nil, ErrInvalidInput(fmt.Sprintf("%d arrival times but %d burst times", len(arr), len(bur)))
	}

	processes := make([]Process, len(arr))
	for i := range arr {
		processes[i] = Process{
			ID:          fmt.Sprintf("P%d", i+1),
			ArrivalTime: arr[i],
			BurstTime:   bur[i],
		}
	}
	if err := ValidateProcesses(processes); err != nil {
		return nil, err
	}
	return processes, nil
}

// ValidateProcesses rejects negative arrivals, non-positive bursts and
// missing or duplicate ids. An empty list is valid.
func ValidateProcesses(processes []Process) error {
	seen := make(map[string]bool, len(processes))
	for i, p := range processes {
		if p.ID == "" {
			return ErrInvalidInput(fmt.Sprintf("process %d has no id", i+1))
		}
		if p.ID == IdleID {
			return ErrInvalidInput(fmt.Sprintf("process id %q is reserved", IdleID))
		}
		if seen[p.ID] {
			return ErrInvalidInput(fmt.Sprintf("duplicate process id %q", p.ID))
		}
		seen[p.ID] = true
		if p.ArrivalTime < 0 {
			return ErrInvalidInput(fmt.Sprintf("process %s: arrival time must be >= 0", p.ID))
		}
		if p.BurstTime < 1 {
			return ErrInvalidInput(fmt.Sprintf("process %s: burst time must be >= 1", p.ID))
		}
	}
	return nil
}

// ValidateReferences rejects negative page numbers
func ValidateReferences(references []int) error {
	for i, page := range references {
		if page < 0 {
			return ErrInvalidInput(fmt.Sprintf("reference %d: page must be >= 0, got %d", i+1, page))
		}
	}
	return nil
}

// ValidateRequests rejects tracks outside [0, maxTrack]
func ValidateRequests(requests []int, maxTrack int) error {
	for i, t := range requests {
		if t < 0 || t > maxTrack {
			return ErrInvalidInput(fmt.Sprintf("request %d: track %d outside [0, %d]", i+1, t, maxTrack))
		}
	}
	return nil
}
