package simulator

// ProcessMetrics holds the timing of one process, derived after its last interval closes
type ProcessMetrics struct {
	ID             string `json:"id"`
	ArrivalTime    int    `json:"arrivalTime"`
	BurstTime      int    `json:"burstTime"`
	StartTime      int    `json:"startTime"`      // First dispatch
	CompletionTime int    `json:"completionTime"` // End of the last interval
	TurnaroundTime int    `json:"turnaroundTime"` // completion - arrival
	WaitingTime    int    `json:"waitingTime"`    // turnaround - burst
	ResponseTime   int    `json:"responseTime"`   // start - arrival
}

// CPUSummary aggregates a schedule for the metrics panel
type CPUSummary struct {
	AvgWaitingTime    float64 `json:"avgWaitingTime"`
	AvgTurnaroundTime float64 `json:"avgTurnaroundTime"`
	AvgResponseTime   float64 `json:"avgResponseTime"`
	TotalTime         int     `json:"totalTime"`         // End of the last interval
	IdleTime          int     `json:"idleTime"`          // Sum of Idle interval durations
	CPUUtilization    float64 `json:"cpuUtilization"`    // Busy share of TotalTime, in percent
	Throughput        float64 `json:"throughput"`        // Completed processes per time unit
	ContextSwitches   int     `json:"contextSwitches"`   // Dispatches of a different process than the previous one
}

// PageSummary aggregates a page-replacement run
type PageSummary struct {
	References int     `json:"references"`
	Faults     int     `json:"faults"`
	Hits       int     `json:"hits"`
	FaultRate  float64 `json:"faultRate"` // faults / references
	HitRatio   float64 `json:"hitRatio"`  // hits / references
}

// SeekStats aggregates head movement over the hops of one run
type SeekStats struct {
	TotalSeekTime int     `json:"totalSeekTime"`
	AvgSeekTime   float64 `json:"avgSeekTime"`
	MaxSeekTime   int     `json:"maxSeekTime"`
	MinSeekTime   int     `json:"minSeekTime"`
}

func computeProcessMetrics(processes []Process, intervals []ScheduleInterval) []ProcessMetrics {
	first := make(map[string]int, len(processes))
	last := make(map[string]int, len(processes))
	for _, iv := range intervals {
		if iv.IsIdle() {
			continue
		}
		if _, seen := first[iv.ID]; !seen {
			first[iv.ID] = iv.Start
		}
		last[iv.ID] = iv.End
	}

	out := make([]ProcessMetrics, len(processes))
	for i, p := range processes {
		completion := last[p.ID]
		turnaround := completion - p.ArrivalTime
		out[i] = ProcessMetrics{
			ID:             p.ID,
			ArrivalTime:    p.ArrivalTime,
			BurstTime:      p.BurstTime,
			StartTime:      first[p.ID],
			CompletionTime: completion,
			TurnaroundTime: turnaround,
			WaitingTime:    turnaround - p.BurstTime,
			ResponseTime:   first[p.ID] - p.ArrivalTime,
		}
	}
	return out
}

func summarizeCPU(metrics []ProcessMetrics, intervals []ScheduleInterval) CPUSummary {
	var summary CPUSummary
	if len(intervals) == 0 {
		return summary
	}

	waits := make([]float64, len(metrics))
	turnarounds := make([]float64, len(metrics))
	responses := make([]float64, len(metrics))
	for i, m := range metrics {
		waits[i] = float64(m.WaitingTime)
		turnarounds[i] = float64(m.TurnaroundTime)
		responses[i] = float64(m.ResponseTime)
	}
	summary.AvgWaitingTime = mean(waits)
	summary.AvgTurnaroundTime = mean(turnarounds)
	summary.AvgResponseTime = mean(responses)

	prev := ""
	for _, iv := range intervals {
		if iv.IsIdle() {
			summary.IdleTime += iv.Duration()
			continue
		}
		if prev != "" && iv.ID != prev {
			summary.ContextSwitches++
		}
		prev = iv.ID
	}

	summary.TotalTime = intervals[len(intervals)-1].End
	if summary.TotalTime > 0 {
		busy := summary.TotalTime - summary.IdleTime
		summary.CPUUtilization = 100 * float64(busy) / float64(summary.TotalTime)
		summary.Throughput = float64(len(metrics)) / float64(summary.TotalTime)
	}
	return summary
}

func summarizePaging(steps []PageReferenceStep) PageSummary {
	summary := PageSummary{References: len(steps)}
	for _, s := range steps {
		if s.Fault {
			summary.Faults++
		} else {
			summary.Hits++
		}
	}
	if summary.References > 0 {
		summary.FaultRate = float64(summary.Faults) / float64(summary.References)
		summary.HitRatio = float64(summary.Hits) / float64(summary.References)
	}
	return summary
}

func summarizeSeeks(hops []DiskSeekHop) SeekStats {
	var stats SeekStats
	if len(hops) == 0 {
		return stats
	}
	stats.MinSeekTime = hops[0].Distance
	for _, h := range hops {
		stats.TotalSeekTime += h.Distance
		stats.MaxSeekTime = max(stats.MaxSeekTime, h.Distance)
		stats.MinSeekTime = min(stats.MinSeekTime, h.Distance)
	}
	stats.AvgSeekTime = float64(stats.TotalSeekTime) / float64(len(hops))
	return stats
}

// mean calculates the average of a slice
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
