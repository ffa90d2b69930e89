package simulator

import "fmt"

// CPUComparison is one row of a CPU policy comparison
type CPUComparison struct {
	Algorithm CPUAlgorithm `json:"algorithm"`
	Summary   CPUSummary   `json:"summary"`
}

// PageComparison is one row of a page-replacement comparison
type PageComparison struct {
	Algorithm PageAlgorithm `json:"algorithm"`
	Summary   PageSummary   `json:"summary"`
}

// DiskComparison is one row of a disk policy comparison
type DiskComparison struct {
	Algorithm DiskAlgorithm `json:"algorithm"`
	Order     []int         `json:"order"`
	SeekStats
}

// Comparison holds every policy of one family run on the same input
type Comparison struct {
	Family Family           `json:"family"`
	CPU    []CPUComparison  `json:"cpu,omitempty"`
	Paging []PageComparison `json:"paging,omitempty"`
	Disk   []DiskComparison `json:"disk,omitempty"`
}

// CompareCPU runs FCFS, SJF and round robin on the same processes
func CompareCPU(processes []Process, quantum int) ([]CPUComparison, error) {
	rows := make([]CPUComparison, 0, len(CPUAlgorithms))
	for _, alg := range CPUAlgorithms {
		schedule, err := ScheduleCPU(alg, processes, quantum)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		rows = append(rows, CPUComparison{Algorithm: alg, Summary: schedule.Summary})
	}
	return rows, nil
}

// ComparePaging runs FIFO, LRU and Optimal on the same reference string
func ComparePaging(references []int, frameCount int) ([]PageComparison, error) {
	rows := make([]PageComparison, 0, len(PageAlgorithms))
	for _, alg := range PageAlgorithms {
		result, err := ReplacePages(alg, references, frameCount)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		rows = append(rows, PageComparison{Algorithm: alg, Summary: result.Summary})
	}
	return rows, nil
}

// CompareDisk runs every disk policy on the same request list
func CompareDisk(requests []int, cfg RunConfig) ([]DiskComparison, error) {
	rows := make([]DiskComparison, 0, len(DiskAlgorithms))
	for _, alg := range DiskAlgorithms {
		result, err := ScheduleDisk(alg, requests, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		rows = append(rows, DiskComparison{Algorithm: alg, Order: result.Order, SeekStats: result.SeekStats})
	}
	return rows, nil
}

// Compare runs every policy of req.Family. req.Algorithm is ignored.
func Compare(req Request) (*Comparison, error) {
	if req.Family == FamilyUnknown {
		return nil, ErrInvalidInput("family is required")
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	cmp := &Comparison{Family: req.Family}
	var err error
	switch req.Family {
	case FamilyCPU:
		cmp.CPU, err = CompareCPU(req.Processes, req.Config.Quantum)
	case FamilyPaging:
		cmp.Paging, err = ComparePaging(req.References, req.Config.FrameCount)
	case FamilyDisk:
		cmp.Disk, err = CompareDisk(req.Requests, req.Config)
	default:
		err = ErrInvalidConfig(fmt.Sprintf("unknown family %d", int(req.Family)))
	}
	if err != nil {
		return nil, err
	}
	return cmp, nil
}
