package simulator

import (
	"encoding/json"
	"fmt"
)

// Family identifies which generator a run uses
type Family int

const (
	FamilyUnknown Family = iota // Not set
	FamilyCPU                   // CPU scheduling
	FamilyPaging                // Page replacement
	FamilyDisk                  // Disk-head scheduling
)

// String returns the string representation of Family
func (f Family) String() string {
	switch f {
	case FamilyCPU:
		return "cpu"
	case FamilyPaging:
		return "paging"
	case FamilyDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// ParseFamily parses a string into Family
func ParseFamily(s string) (Family, error) {
	switch s {
	case "cpu", "scheduling":
		return FamilyCPU, nil
	case "paging", "page", "memory":
		return FamilyPaging, nil
	case "disk":
		return FamilyDisk, nil
	default:
		return FamilyUnknown, fmt.Errorf("invalid family: %s (must be 'cpu', 'paging' or 'disk')", s)
	}
}

// MarshalJSON implements json.Marshaler for Family
func (f Family) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON implements json.Unmarshaler for Family
func (f *Family) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFamily(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// UnmarshalText lets YAML and TOML decoders read Family from a string
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// CPUAlgorithm represents the CPU scheduling policy
type CPUAlgorithm int

const (
	CPUFCFS       CPUAlgorithm = iota // First come first served
	CPUSJF                            // Shortest job first (non-preemptive)
	CPURoundRobin                     // Round robin with a fixed quantum
)

// CPUAlgorithms lists every CPU policy in comparison order
var CPUAlgorithms = []CPUAlgorithm{CPUFCFS, CPUSJF, CPURoundRobin}

func (a CPUAlgorithm) String() string {
	switch a {
	case CPUFCFS:
		return "fcfs"
	case CPUSJF:
		return "sjf"
	case CPURoundRobin:
		return "rr"
	default:
		return "unknown"
	}
}

// ParseCPUAlgorithm parses a string into CPUAlgorithm
func ParseCPUAlgorithm(s string) (CPUAlgorithm, error) {
	switch s {
	case "fcfs", "FCFS":
		return CPUFCFS, nil
	case "sjf", "SJF":
		return CPUSJF, nil
	case "rr", "RR", "roundrobin", "round-robin":
		return CPURoundRobin, nil
	default:
		return CPUFCFS, fmt.Errorf("invalid cpu algorithm: %s (must be 'fcfs', 'sjf' or 'rr')", s)
	}
}

func (a CPUAlgorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *CPUAlgorithm) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCPUAlgorithm(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// PageAlgorithm represents the page-replacement policy
type PageAlgorithm int

const (
	PageFIFO    PageAlgorithm = iota // Evict the oldest resident page
	PageLRU                          // Evict the least recently used page
	PageOptimal                      // Evict the page used farthest in the future
)

// PageAlgorithms lists every page-replacement policy in comparison order
var PageAlgorithms = []PageAlgorithm{PageFIFO, PageLRU, PageOptimal}

func (a PageAlgorithm) String() string {
	switch a {
	case PageFIFO:
		return "fifo"
	case PageLRU:
		return "lru"
	case PageOptimal:
		return "optimal"
	default:
		return "unknown"
	}
}

// ParsePageAlgorithm parses a string into PageAlgorithm
func ParsePageAlgorithm(s string) (PageAlgorithm, error) {
	switch s {
	case "fifo", "FIFO":
		return PageFIFO, nil
	case "lru", "LRU":
		return PageLRU, nil
	case "optimal", "opt", "OPT":
		return PageOptimal, nil
	default:
		return PageFIFO, fmt.Errorf("invalid page algorithm: %s (must be 'fifo', 'lru' or 'optimal')", s)
	}
}

func (a PageAlgorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *PageAlgorithm) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePageAlgorithm(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DiskAlgorithm represents the disk-head scheduling policy
type DiskAlgorithm int

const (
	DiskFCFS  DiskAlgorithm = iota // Service in arrival order
	DiskSSTF                       // Shortest seek time first
	DiskSCAN                       // Elevator: sweep to the bound, then reverse
	DiskCSCAN                      // Circular SCAN: sweep, wrap to the opposite bound
	DiskLOOK                       // SCAN that reverses at the last request
	DiskCLOOK                      // C-SCAN that wraps between the outermost requests
)

// DiskAlgorithms lists every disk policy in comparison order
var DiskAlgorithms = []DiskAlgorithm{DiskFCFS, DiskSSTF, DiskSCAN, DiskCSCAN, DiskLOOK, DiskCLOOK}

func (a DiskAlgorithm) String() string {
	switch a {
	case DiskFCFS:
		return "fcfs"
	case DiskSSTF:
		return "sstf"
	case DiskSCAN:
		return "scan"
	case DiskCSCAN:
		return "cscan"
	case DiskLOOK:
		return "look"
	case DiskCLOOK:
		return "clook"
	default:
		return "unknown"
	}
}

// ParseDiskAlgorithm parses a string into DiskAlgorithm
func ParseDiskAlgorithm(s string) (DiskAlgorithm, error) {
	switch s {
	case "fcfs", "FCFS":
		return DiskFCFS, nil
	case "sstf", "SSTF":
		return DiskSSTF, nil
	case "scan", "SCAN":
		return DiskSCAN, nil
	case "cscan", "c-scan", "CSCAN", "C-SCAN":
		return DiskCSCAN, nil
	case "look", "LOOK":
		return DiskLOOK, nil
	case "clook", "c-look", "CLOOK", "C-LOOK":
		return DiskCLOOK, nil
	default:
		return DiskFCFS, fmt.Errorf("invalid disk algorithm: %s (must be one of fcfs, sstf, scan, cscan, look, clook)", s)
	}
}

func (a DiskAlgorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *DiskAlgorithm) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDiskAlgorithm(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Direction is the initial sweep direction of the disk head
type Direction int

const (
	DirectionUp   Direction = iota // Toward maxTrack
	DirectionDown                  // Toward track 0
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "up"
	}
}

// ParseDirection parses a string into Direction
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "right", "outward", "":
		return DirectionUp, nil
	case "down", "left", "inward":
		return DirectionDown, nil
	default:
		return DirectionUp, fmt.Errorf("invalid direction: %s (must be 'up' or 'down')", s)
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalText lets YAML and TOML decoders read Direction from a string
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DefaultMaxTrack is the highest track number when a run does not set one
const DefaultMaxTrack = 199

// RunConfig holds the per-run generator parameters
type RunConfig struct {
	Quantum        int       `json:"quantum" yaml:"quantum" toml:"quantum"`                      // Round robin time slice (>= 1)
	FrameCount     int       `json:"frameCount" yaml:"frameCount" toml:"frameCount"`             // Physical frames for page replacement (>= 1)
	MaxTrack       int       `json:"maxTrack" yaml:"maxTrack" toml:"maxTrack"`                   // Highest addressable track (default 199)
	StartingTrack  int       `json:"startingTrack" yaml:"startingTrack" toml:"startingTrack"`    // Initial head position, in [0, maxTrack]
	Direction      Direction `json:"direction" yaml:"direction" toml:"direction"`                // Initial sweep direction for SCAN family
	StepIntervalMs int       `json:"stepIntervalMs" yaml:"stepIntervalMs" toml:"stepIntervalMs"` // Default playback speed
}

// DefaultRunConfig returns the defaults used by the UI forms
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Quantum:        2,
		FrameCount:     3,
		MaxTrack:       DefaultMaxTrack,
		StartingTrack:  53,
		Direction:      DirectionUp,
		StepIntervalMs: 1000,
	}
}

// Validate checks if configuration values are reasonable
func (c *RunConfig) Validate() error {
	if c.Quantum < 1 {
		return ErrInvalidConfig("quantum must be >= 1")
	}
	if c.FrameCount < 1 {
		return ErrInvalidConfig("frameCount must be >= 1")
	}
	if c.MaxTrack < 1 {
		return ErrInvalidConfig("maxTrack must be >= 1")
	}
	if c.StartingTrack < 0 || c.StartingTrack > c.MaxTrack {
		return ErrInvalidConfig(fmt.Sprintf("startingTrack must be in [0, %d]", c.MaxTrack))
	}
	if c.StepIntervalMs < 1 {
		return ErrInvalidConfig("stepIntervalMs must be >= 1")
	}
	return nil
}
