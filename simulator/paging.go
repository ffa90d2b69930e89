package simulator

import (
	"fmt"
	"math"
)

// PageResult is the full result of one page-replacement run
type PageResult struct {
	Algorithm  PageAlgorithm       `json:"algorithm"`
	FrameCount int                 `json:"frameCount"`
	Steps      []PageReferenceStep `json:"steps"`
	Summary    PageSummary         `json:"summary"`
}

// Trace returns the reference steps as playback steps
func (r *PageResult) Trace() Trace {
	trace := make(Trace, len(r.Steps))
	for i, s := range r.Steps {
		trace[i] = s
	}
	return trace
}

// victimPicker chooses the slot to load on a fault. frames is the table
// before the fault; step is the position of the faulting reference.
type victimPicker interface {
	pick(frames []int, step int) int
	touch(slot, step int)
}

// frameTable owns the resident pages of one run
type frameTable struct {
	frames []int
	slotOf map[int]int // page -> slot
}

func newFrameTable(frameCount int) *frameTable {
	ft := &frameTable{
		frames: make([]int, frameCount),
		slotOf: make(map[int]int, frameCount),
	}
	for i := range ft.frames {
		ft.frames[i] = EmptyFrame
	}
	return ft
}

func (ft *frameTable) snapshot() []int {
	out := make([]int, len(ft.frames))
	copy(out, ft.frames)
	return out
}

func (ft *frameTable) load(slot, page int) (evicted int) {
	evicted = ft.frames[slot]
	if evicted != EmptyFrame {
		delete(ft.slotOf, evicted)
	}
	ft.frames[slot] = page
	ft.slotOf[page] = slot
	return evicted
}

// replay drives one policy over the whole reference string
func replay(references []int, frameCount int, policy victimPicker) []PageReferenceStep {
	ft := newFrameTable(frameCount)
	steps := make([]PageReferenceStep, 0, len(references))

	for i, page := range references {
		step := PageReferenceStep{
			Index:              i,
			Page:               page,
			ReplacedFrameIndex: -1,
			EvictedPage:        EmptyFrame,
		}
		if slot, resident := ft.slotOf[page]; resident {
			policy.touch(slot, i)
		} else {
			slot := policy.pick(ft.frames, i)
			step.Fault = true
			step.ReplacedFrameIndex = slot
			step.EvictedPage = ft.load(slot, page)
			policy.touch(slot, i)
		}
		step.Frames = ft.snapshot()
		steps = append(steps, step)
	}
	return steps
}

// fifoPolicy is a circular pointer over the slots. Free slots are filled in
// pointer order, so the pointer always names the oldest resident page.
type fifoPolicy struct {
	next int
}

func (p *fifoPolicy) pick(frames []int, _ int) int {
	slot := p.next
	p.next = (p.next + 1) % len(frames)
	return slot
}

func (p *fifoPolicy) touch(int, int) {}

// lruPolicy tracks the reference index of each slot's most recent use
type lruPolicy struct {
	lastUsed []int
}

func newLRUPolicy(frameCount int) *lruPolicy {
	p := &lruPolicy{lastUsed: make([]int, frameCount)}
	for i := range p.lastUsed {
		p.lastUsed[i] = -1
	}
	return p
}

func (p *lruPolicy) pick(_ []int, _ int) int {
	victim := 0
	for slot := 1; slot < len(p.lastUsed); slot++ {
		if p.lastUsed[slot] < p.lastUsed[victim] {
			victim = slot
		}
	}
	return victim
}

func (p *lruPolicy) touch(slot, step int) {
	p.lastUsed[slot] = step
}

// optimalPolicy evicts the page whose next use is farthest away
type optimalPolicy struct {
	references []int
}

func (p *optimalPolicy) pick(frames []int, step int) int {
	for slot, page := range frames {
		if page == EmptyFrame {
			return slot
		}
	}
	victim, farthest := 0, -1
	for slot, page := range frames {
		next := p.nextUse(page, step)
		if next > farthest {
			victim, farthest = slot, next
		}
	}
	return victim
}

func (p *optimalPolicy) nextUse(page, step int) int {
	for i := step + 1; i < len(p.references); i++ {
		if p.references[i] == page {
			return i
		}
	}
	return math.MaxInt
}

func (p *optimalPolicy) touch(int, int) {}

// FIFOPaging replaces pages in load order.
func FIFOPaging(references []int, frameCount int) []PageReferenceStep {
	return replay(references, frameCount, &fifoPolicy{})
}

// LRUPaging replaces the least recently used page. Free slots are used
// first, lowest index first.
func LRUPaging(references []int, frameCount int) []PageReferenceStep {
	return replay(references, frameCount, newLRUPolicy(frameCount))
}

// OptimalPaging replaces the page referenced farthest in the future (never
// referenced again counts as infinitely far). Ties go to the lowest slot.
func OptimalPaging(references []int, frameCount int) []PageReferenceStep {
	return replay(references, frameCount, &optimalPolicy{references: references})
}

// ReplacePages validates the input and runs the chosen policy
func ReplacePages(alg PageAlgorithm, references []int, frameCount int) (*PageResult, error) {
	if frameCount < 1 {
		return nil, ErrInvalidConfig("frameCount must be >= 1")
	}
	if err := ValidateReferences(references); err != nil {
		return nil, err
	}

	var steps []PageReferenceStep
	switch alg {
	case PageFIFO:
		steps = FIFOPaging(references, frameCount)
	case PageLRU:
		steps = LRUPaging(references, frameCount)
	case PageOptimal:
		steps = OptimalPaging(references, frameCount)
	default:
		return nil, ErrInvalidConfig(fmt.Sprintf("unknown page algorithm %d", int(alg)))
	}

	return &PageResult{
		Algorithm:  alg,
		FrameCount: frameCount,
		Steps:      steps,
		Summary:    summarizePaging(steps),
	}, nil
}
