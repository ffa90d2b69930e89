package simulator

import (
	"fmt"
	"slices"
)

// DiskResult is the full result of one disk-head scheduling run
type DiskResult struct {
	Algorithm     DiskAlgorithm `json:"algorithm"`
	StartingTrack int           `json:"startingTrack"`
	MaxTrack      int           `json:"maxTrack"`
	Direction     Direction     `json:"direction"`
	Hops          []DiskSeekHop `json:"hops"`
	Order         []int         `json:"order"` // Tracks in the order they were serviced
	SeekStats
}

// Trace returns the hops as playback steps
func (r *DiskResult) Trace() Trace {
	trace := make(Trace, len(r.Hops))
	for i, h := range r.Hops {
		trace[i] = h
	}
	return trace
}

// seekPath records head movement from a starting track
type seekPath struct {
	pos  int
	hops []DiskSeekHop
}

// service moves to a pending request. A request at the current position
// still produces a zero-length hop so every request shows up in the trace.
func (sp *seekPath) service(track int) {
	sp.hops = append(sp.hops, newHop(sp.pos, track, true, false))
	sp.pos = track
}

// sweepTo moves to a bound without servicing anything
func (sp *seekPath) sweepTo(track int) {
	if track == sp.pos {
		return
	}
	sp.hops = append(sp.hops, newHop(sp.pos, track, false, false))
	sp.pos = track
}

// wrapTo is the return jump of the circular policies; its distance counts.
func (sp *seekPath) wrapTo(track int, serviced bool) {
	sp.hops = append(sp.hops, newHop(sp.pos, track, serviced, true))
	sp.pos = track
}

// FCFSDisk services requests in input order.
func FCFSDisk(requests []int, start int) []DiskSeekHop {
	sp := &seekPath{pos: start}
	for _, r := range requests {
		sp.service(r)
	}
	return sp.hops
}

// SSTFDisk repeatedly services the closest pending request; equal distances
// go to the smaller track.
func SSTFDisk(requests []int, start int) []DiskSeekHop {
	pending := slices.Clone(requests)
	sp := &seekPath{pos: start}
	for len(pending) > 0 {
		best := 0
		for i := 1; i < len(pending); i++ {
			di, db := abs(pending[i]-sp.pos), abs(pending[best]-sp.pos)
			if di < db || (di == db && pending[i] < pending[best]) {
				best = i
			}
		}
		sp.service(pending[best])
		pending = slices.Delete(pending, best, best+1)
	}
	return sp.hops
}

// splitSweep sorts the distinct requests and splits them around start.
// ahead is in sweep order starting at the head (requests at start included);
// behind is everything else, ascending.
func splitSweep(requests []int, start int, dir Direction) (ahead, behind []int) {
	tracks := slices.Clone(requests)
	slices.Sort(tracks)
	tracks = slices.Compact(tracks)

	for _, t := range tracks {
		if (dir == DirectionUp && t >= start) || (dir == DirectionDown && t <= start) {
			ahead = append(ahead, t)
		} else {
			behind = append(behind, t)
		}
	}
	if dir == DirectionDown {
		slices.Reverse(ahead)
	}
	return ahead, behind
}

func bounds(dir Direction, maxTrack int) (near, far int) {
	if dir == DirectionUp {
		return maxTrack, 0
	}
	return 0, maxTrack
}

// SCANDisk sweeps toward the bound in dir, servicing requests on the way,
// then reverses. The head only travels to the bound when requests remain
// behind it.
func SCANDisk(requests []int, start, maxTrack int, dir Direction) []DiskSeekHop {
	return elevator(requests, start, maxTrack, dir, true)
}

// LOOKDisk is SCAN that reverses at the last request instead of the bound.
func LOOKDisk(requests []int, start, maxTrack int, dir Direction) []DiskSeekHop {
	return elevator(requests, start, maxTrack, dir, false)
}

// elevator ends at the last request when nothing lies behind the head; the
// bound sweep happens only on the way to a reversal.
func elevator(requests []int, start, maxTrack int, dir Direction, toBound bool) []DiskSeekHop {
	ahead, behind := splitSweep(requests, start, dir)
	sp := &seekPath{pos: start}
	for _, t := range ahead {
		sp.service(t)
	}
	if len(behind) == 0 {
		return sp.hops
	}
	if toBound {
		near, _ := bounds(dir, maxTrack)
		sp.sweepTo(near)
	}
	if dir == DirectionUp {
		slices.Reverse(behind)
	}
	for _, t := range behind {
		sp.service(t)
	}
	return sp.hops
}

// CSCANDisk sweeps toward the bound in dir, jumps to the opposite bound
// (the jump is counted as seek distance) and keeps servicing in the same
// direction.
func CSCANDisk(requests []int, start, maxTrack int, dir Direction) []DiskSeekHop {
	return circular(requests, start, maxTrack, dir, true)
}

// CLOOKDisk is C-SCAN that jumps from the last request in the sweep
// direction straight to the first request on the other side.
func CLOOKDisk(requests []int, start, maxTrack int, dir Direction) []DiskSeekHop {
	return circular(requests, start, maxTrack, dir, false)
}

// circular ends at the last request when nothing lies behind the head; the
// bound sweep and the wrap happen only when requests remain on the far side.
func circular(requests []int, start, maxTrack int, dir Direction, toBound bool) []DiskSeekHop {
	ahead, behind := splitSweep(requests, start, dir)
	sp := &seekPath{pos: start}
	for _, t := range ahead {
		sp.service(t)
	}
	if len(behind) == 0 {
		return sp.hops
	}
	if dir == DirectionDown {
		slices.Reverse(behind)
	}
	if toBound {
		near, far := bounds(dir, maxTrack)
		sp.sweepTo(near)
		sp.wrapTo(far, false)
		for _, t := range behind {
			sp.service(t)
		}
		return sp.hops
	}
	sp.wrapTo(behind[0], true)
	for _, t := range behind[1:] {
		sp.service(t)
	}
	return sp.hops
}

// ScheduleDisk validates the input and runs the chosen policy
func ScheduleDisk(alg DiskAlgorithm, requests []int, cfg RunConfig) (*DiskResult, error) {
	if cfg.MaxTrack < 1 {
		return nil, ErrInvalidConfig("maxTrack must be >= 1")
	}
	if cfg.StartingTrack < 0 || cfg.StartingTrack > cfg.MaxTrack {
		return nil, ErrInvalidConfig(fmt.Sprintf("startingTrack must be in [0, %d]", cfg.MaxTrack))
	}
	if err := ValidateRequests(requests, cfg.MaxTrack); err != nil {
		return nil, err
	}

	start, maxTrack, dir := cfg.StartingTrack, cfg.MaxTrack, cfg.Direction
	var hops []DiskSeekHop
	switch alg {
	case DiskFCFS:
		hops = FCFSDisk(requests, start)
	case DiskSSTF:
		hops = SSTFDisk(requests, start)
	case DiskSCAN:
		hops = SCANDisk(requests, start, maxTrack, dir)
	case DiskCSCAN:
		hops = CSCANDisk(requests, start, maxTrack, dir)
	case DiskLOOK:
		hops = LOOKDisk(requests, start, maxTrack, dir)
	case DiskCLOOK:
		hops = CLOOKDisk(requests, start, maxTrack, dir)
	default:
		return nil, ErrInvalidConfig(fmt.Sprintf("unknown disk algorithm %d", int(alg)))
	}

	order := make([]int, 0, len(hops))
	for _, h := range hops {
		if h.Serviced {
			order = append(order, h.To)
		}
	}
	return &DiskResult{
		Algorithm:     alg,
		StartingTrack: start,
		MaxTrack:      maxTrack,
		Direction:     dir,
		Hops:          hops,
		Order:         order,
		SeekStats:     summarizeSeeks(hops),
	}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
