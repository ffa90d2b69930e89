package simulator

import (
	"encoding/json"
	"fmt"
	"time"
)

// Request is everything needed to run one generator. Only the input field
// matching Family is read.
type Request struct {
	Family     Family    `json:"family" yaml:"family" toml:"family"`
	Algorithm  string    `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Processes  []Process `json:"processes,omitempty" yaml:"processes,omitempty" toml:"processes,omitempty"`
	References []int     `json:"references,omitempty" yaml:"references,omitempty" toml:"references,omitempty"`
	Requests   []int     `json:"requests,omitempty" yaml:"requests,omitempty" toml:"requests,omitempty"`
	Config     RunConfig `json:"config" yaml:"config" toml:"config"`
}

// DefaultRequest returns an empty request whose config holds the defaults.
// Decoding a request document onto it leaves omitted config fields at their
// default values while explicit values, zero included, are kept and validated.
func DefaultRequest() Request {
	return Request{Config: DefaultRunConfig()}
}

// UnmarshalJSON decodes onto the receiver's config, or onto DefaultRunConfig
// when the receiver has none, so omitted fields keep their defaults.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	p := plain(*r)
	if p.Config == (RunConfig{}) {
		p.Config = DefaultRunConfig()
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Request(p)
	return nil
}

// Run is the immutable outcome of one generator invocation. Exactly one of
// CPU, Paging and Disk is set, matching Family.
type Run struct {
	Family          Family       `json:"family"`
	Algorithm       string       `json:"algorithm"`
	Config          RunConfig    `json:"config"`
	CPU             *CPUSchedule `json:"cpu,omitempty"`
	Paging          *PageResult  `json:"paging,omitempty"`
	Disk            *DiskResult  `json:"disk,omitempty"`
	ExecutionTimeMs float64      `json:"executionTimeMs"`

	trace Trace
}

// Trace returns the playback steps of the run
func (r *Run) Trace() Trace {
	return r.trace
}

// Execute validates the request, runs the matching generator to completion
// and times it. The config is used as given; see DefaultRequest.
func Execute(req Request) (*Run, error) {
	if req.Family == FamilyUnknown {
		return nil, ErrInvalidInput("family is required")
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	run := &Run{Family: req.Family, Config: req.Config}
	start := time.Now()

	switch req.Family {
	case FamilyCPU:
		alg, err := ParseCPUAlgorithm(req.Algorithm)
		if err != nil {
			return nil, ErrInvalidConfig(err.Error())
		}
		schedule, err := ScheduleCPU(alg, req.Processes, req.Config.Quantum)
		if err != nil {
			return nil, err
		}
		run.Algorithm = alg.String()
		run.CPU = schedule
		run.trace = schedule.Trace()

	case FamilyPaging:
		alg, err := ParsePageAlgorithm(req.Algorithm)
		if err != nil {
			return nil, ErrInvalidConfig(err.Error())
		}
		result, err := ReplacePages(alg, req.References, req.Config.FrameCount)
		if err != nil {
			return nil, err
		}
		run.Algorithm = alg.String()
		run.Paging = result
		run.trace = result.Trace()

	case FamilyDisk:
		alg, err := ParseDiskAlgorithm(req.Algorithm)
		if err != nil {
			return nil, ErrInvalidConfig(err.Error())
		}
		result, err := ScheduleDisk(alg, req.Requests, req.Config)
		if err != nil {
			return nil, err
		}
		run.Algorithm = alg.String()
		run.Disk = result
		run.trace = result.Trace()

	default:
		return nil, ErrInvalidConfig(fmt.Sprintf("unknown family %d", int(req.Family)))
	}

	run.ExecutionTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	return run, nil
}

// Input returns the family-specific input of the request, for recording
func (r Request) Input() interface{} {
	switch r.Family {
	case FamilyCPU:
		return r.Processes
	case FamilyPaging:
		return r.References
	case FamilyDisk:
		return r.Requests
	default:
		return nil
	}
}
