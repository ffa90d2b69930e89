package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	beladyRefs   = []int{1, 2, 3, 4, 1, 2, 5, 1, 2, 3, 4, 5}
	textbookRefs = []int{7, 0, 1, 2, 0, 3, 0, 4, 2, 3, 0, 3, 2, 1, 2, 0, 1, 7, 0, 1}
)

func countFaults(steps []PageReferenceStep) int {
	n := 0
	for _, s := range steps {
		if s.Fault {
			n++
		}
	}
	return n
}

func TestFIFO_BeladyAnomaly(t *testing.T) {
	require.Equal(t, 9, countFaults(FIFOPaging(beladyRefs, 3)))
	require.Equal(t, 10, countFaults(FIFOPaging(beladyRefs, 4)))
}

func TestTextbookFaultCounts(t *testing.T) {
	tests := []struct {
		alg    PageAlgorithm
		faults int
	}{
		{PageFIFO, 15},
		{PageLRU, 12},
		{PageOptimal, 9},
	}
	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			result, err := ReplacePages(tt.alg, textbookRefs, 3)
			require.NoError(t, err)
			require.Equal(t, tt.faults, result.Summary.Faults)
			require.Equal(t, len(textbookRefs)-tt.faults, result.Summary.Hits)
			require.InDelta(t, float64(tt.faults)/float64(len(textbookRefs)), result.Summary.FaultRate, 1e-9)
		})
	}
}

func TestFIFO_StepDetail(t *testing.T) {
	steps := FIFOPaging([]int{7, 0, 1, 2, 0}, 3)
	require.Len(t, steps, 5)

	first := steps[0]
	require.True(t, first.Fault)
	require.Equal(t, 0, first.ReplacedFrameIndex)
	require.Equal(t, EmptyFrame, first.EvictedPage)
	require.Equal(t, []int{7, EmptyFrame, EmptyFrame}, first.Frames)

	require.Equal(t, []int{7, 0, 1}, steps[2].Frames)

	evict := steps[3]
	require.True(t, evict.Fault)
	require.Equal(t, 0, evict.ReplacedFrameIndex)
	require.Equal(t, 7, evict.EvictedPage)
	require.Equal(t, []int{2, 0, 1}, evict.Frames)

	hit := steps[4]
	require.True(t, hit.Hit())
	require.Equal(t, -1, hit.ReplacedFrameIndex)
	require.Equal(t, EmptyFrame, hit.EvictedPage)
	require.Equal(t, []int{2, 0, 1}, hit.Frames)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	// 1 is touched again before 4 arrives, so 2 is the LRU page
	steps := LRUPaging([]int{1, 2, 3, 1, 4}, 3)
	last := steps[4]
	require.True(t, last.Fault)
	require.Equal(t, 2, last.EvictedPage)
	require.Equal(t, 1, last.ReplacedFrameIndex)
	require.Equal(t, []int{1, 4, 3}, last.Frames)
}

func TestOptimal_EvictsFarthestNextUse(t *testing.T) {
	// When 4 arrives: 1 is used next at index 4, 2 at 5, 3 never again
	steps := OptimalPaging([]int{1, 2, 3, 4, 1, 2}, 3)
	require.Equal(t, 3, steps[3].EvictedPage)
	require.Equal(t, []int{1, 2, 4}, steps[3].Frames)
	require.Equal(t, 4, countFaults(steps))
}

func TestOptimal_TieGoesToLowestSlot(t *testing.T) {
	// Neither 1 nor 2 is referenced after 3 arrives
	steps := OptimalPaging([]int{1, 2, 3}, 2)
	require.Equal(t, 0, steps[2].ReplacedFrameIndex)
	require.Equal(t, 1, steps[2].EvictedPage)
}

func TestPagingInvariants(t *testing.T) {
	refStrings := map[string][]int{
		"belady":   beladyRefs,
		"textbook": textbookRefs,
		"repeat":   {4, 4, 4, 4},
		"distinct": {0, 1, 2, 3, 4, 5, 6},
	}

	for name, refs := range refStrings {
		for frames := 1; frames <= 5; frames++ {
			results := make(map[PageAlgorithm]*PageResult)
			for _, alg := range PageAlgorithms {
				before := append([]int(nil), refs...)
				result, err := ReplacePages(alg, refs, frames)
				require.NoError(t, err)
				require.Equal(t, before, refs, "input must not be mutated")
				results[alg] = result

				require.Len(t, result.Steps, len(refs))
				require.Equal(t, len(refs), result.Summary.Faults+result.Summary.Hits)
				for i, step := range result.Steps {
					require.Equal(t, i, step.Index)
					require.Len(t, step.Frames, frames)
					require.Contains(t, step.Frames, step.Page, "%s/%s: page must be resident after its step", name, alg)

					seen := make(map[int]bool)
					for _, f := range step.Frames {
						if f == EmptyFrame {
							continue
						}
						require.False(t, seen[f], "page %d resident twice", f)
						seen[f] = true
					}
					if step.Fault {
						require.Equal(t, step.Page, step.Frames[step.ReplacedFrameIndex])
					} else {
						require.Equal(t, -1, step.ReplacedFrameIndex)
					}
				}
			}

			opt := results[PageOptimal].Summary.Faults
			require.LessOrEqual(t, opt, results[PageFIFO].Summary.Faults, "%s frames=%d", name, frames)
			require.LessOrEqual(t, opt, results[PageLRU].Summary.Faults, "%s frames=%d", name, frames)
		}
	}
}

func TestReplacePages_Validation(t *testing.T) {
	_, err := ReplacePages(PageFIFO, []int{1, 2}, 0)
	require.True(t, IsSimError(err))

	_, err = ReplacePages(PageLRU, []int{1, -2}, 3)
	require.True(t, IsSimError(err))

	result, err := ReplacePages(PageOptimal, nil, 3)
	require.NoError(t, err)
	require.Empty(t, result.Steps)
	require.Equal(t, 0, result.Trace().Len())
	require.Equal(t, PageSummary{}, result.Summary)
}
