package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var textbookTracks = []int{98, 183, 37, 122, 14, 124, 65, 67}

func diskConfig(start int, dir Direction) RunConfig {
	cfg := DefaultRunConfig()
	cfg.StartingTrack = start
	cfg.Direction = dir
	return cfg
}

func TestScheduleDisk_TextbookTotals(t *testing.T) {
	tests := []struct {
		alg   DiskAlgorithm
		dir   Direction
		total int
		order []int
	}{
		{DiskFCFS, DirectionUp, 640, []int{98, 183, 37, 122, 14, 124, 65, 67}},
		{DiskSSTF, DirectionUp, 236, []int{65, 67, 37, 14, 98, 122, 124, 183}},
		{DiskSCAN, DirectionUp, 331, []int{65, 67, 98, 122, 124, 183, 37, 14}},
		{DiskSCAN, DirectionDown, 236, []int{37, 14, 65, 67, 98, 122, 124, 183}},
		{DiskCSCAN, DirectionUp, 382, []int{65, 67, 98, 122, 124, 183, 14, 37}},
		{DiskLOOK, DirectionUp, 299, []int{65, 67, 98, 122, 124, 183, 37, 14}},
		{DiskCLOOK, DirectionUp, 322, []int{65, 67, 98, 122, 124, 183, 14, 37}},
	}

	for _, tt := range tests {
		t.Run(tt.alg.String()+"/"+tt.dir.String(), func(t *testing.T) {
			result, err := ScheduleDisk(tt.alg, textbookTracks, diskConfig(53, tt.dir))
			require.NoError(t, err)
			require.Equal(t, tt.total, result.TotalSeekTime)
			require.Equal(t, tt.order, result.Order)
		})
	}
}

func TestFCFSDisk_Hops(t *testing.T) {
	hops := FCFSDisk([]int{10, 10, 4}, 7)
	require.Equal(t, []DiskSeekHop{
		{From: 7, To: 10, Distance: 3, Serviced: true},
		{From: 10, To: 10, Distance: 0, Serviced: true},
		{From: 10, To: 4, Distance: 6, Serviced: true},
	}, hops)

	stats := summarizeSeeks(hops)
	require.Equal(t, 9, stats.TotalSeekTime)
	require.Equal(t, 6, stats.MaxSeekTime)
	require.Equal(t, 0, stats.MinSeekTime)
	require.InDelta(t, 3.0, stats.AvgSeekTime, 1e-9)
}

func TestSSTFDisk_TieGoesToSmallerTrack(t *testing.T) {
	hops := SSTFDisk([]int{60, 40}, 50)
	require.Equal(t, 40, hops[0].To)
	require.Equal(t, 60, hops[1].To)
}

func TestSCANDisk_SweepsToBoundOnlyWhenNeeded(t *testing.T) {
	// Everything is ahead of the head: no trip to the bound
	hops := SCANDisk([]int{60, 90}, 50, 199, DirectionUp)
	require.Len(t, hops, 2)
	require.Equal(t, 90, hops[len(hops)-1].To)

	hops = SCANDisk([]int{60, 10}, 50, 199, DirectionUp)
	require.Equal(t, []DiskSeekHop{
		{From: 50, To: 60, Distance: 10, Serviced: true},
		{From: 60, To: 199, Distance: 139},
		{From: 199, To: 10, Distance: 189, Serviced: true},
	}, hops)
}

func TestCSCANDisk_WrapIsCounted(t *testing.T) {
	hops := CSCANDisk([]int{60, 10}, 50, 199, DirectionUp)
	require.Equal(t, []DiskSeekHop{
		{From: 50, To: 60, Distance: 10, Serviced: true},
		{From: 60, To: 199, Distance: 139},
		{From: 199, To: 0, Distance: 199, Wrap: true},
		{From: 0, To: 10, Distance: 10, Serviced: true},
	}, hops)
	require.Equal(t, 358, summarizeSeeks(hops).TotalSeekTime)

	// Nothing behind the head: no bound sweep and no wrap
	hops = CSCANDisk([]int{60, 90}, 50, 199, DirectionUp)
	require.Equal(t, []DiskSeekHop{
		{From: 50, To: 60, Distance: 10, Serviced: true},
		{From: 60, To: 90, Distance: 30, Serviced: true},
	}, hops)
}

func TestCSCANDisk_Down(t *testing.T) {
	hops := CSCANDisk([]int{40, 80, 20, 120}, 50, 199, DirectionDown)
	order := []int{}
	for _, h := range hops {
		if h.Serviced {
			order = append(order, h.To)
		}
	}
	// Down to 0, wrap to 199 and keep moving down
	require.Equal(t, []int{40, 20, 120, 80}, order)
	require.Equal(t, 10+20+20+199+79+40, summarizeSeeks(hops).TotalSeekTime)
}

func TestCLOOKDisk_JumpServicesFirstRequest(t *testing.T) {
	hops := CLOOKDisk([]int{60, 10, 30}, 50, 199, DirectionUp)
	require.Equal(t, []DiskSeekHop{
		{From: 50, To: 60, Distance: 10, Serviced: true},
		{From: 60, To: 10, Distance: 50, Serviced: true, Wrap: true},
		{From: 10, To: 30, Distance: 20, Serviced: true},
	}, hops)
}

func TestSweepPolicies_DistinctTracks(t *testing.T) {
	requests := []int{70, 70, 20, 20, 50}
	for _, alg := range []DiskAlgorithm{DiskSCAN, DiskCSCAN, DiskLOOK, DiskCLOOK} {
		t.Run(alg.String(), func(t *testing.T) {
			result, err := ScheduleDisk(alg, requests, diskConfig(50, DirectionUp))
			require.NoError(t, err)
			require.ElementsMatch(t, []int{20, 50, 70}, result.Order)
			// The head is already at 50, so it is serviced with a zero-length hop
			require.Equal(t, 0, result.Hops[0].Distance)
		})
	}
}

func TestDiskInvariants(t *testing.T) {
	for _, alg := range DiskAlgorithms {
		for _, dir := range []Direction{DirectionUp, DirectionDown} {
			t.Run(alg.String()+"/"+dir.String(), func(t *testing.T) {
				before := append([]int(nil), textbookTracks...)
				result, err := ScheduleDisk(alg, textbookTracks, diskConfig(53, dir))
				require.NoError(t, err)
				require.Equal(t, before, textbookTracks, "input must not be mutated")

				require.ElementsMatch(t, textbookTracks, result.Order)
				require.Equal(t, len(result.Hops), result.Trace().Len())

				pos, total := 53, 0
				for _, h := range result.Hops {
					require.Equal(t, pos, h.From, "hops must chain")
					require.GreaterOrEqual(t, h.To, 0)
					require.LessOrEqual(t, h.To, 199)
					require.Equal(t, abs(h.To-h.From), h.Distance)
					total += h.Distance
					pos = h.To
				}
				require.Equal(t, total, result.TotalSeekTime)
			})
		}
	}
}

func TestScheduleDisk_EmptyAndInvalid(t *testing.T) {
	for _, alg := range DiskAlgorithms {
		result, err := ScheduleDisk(alg, nil, diskConfig(53, DirectionUp))
		require.NoError(t, err)
		require.Empty(t, result.Hops)
		require.Equal(t, SeekStats{}, result.SeekStats)
	}

	_, err := ScheduleDisk(DiskFCFS, []int{200}, diskConfig(53, DirectionUp))
	require.True(t, IsSimError(err))

	_, err = ScheduleDisk(DiskFCFS, []int{-1}, diskConfig(53, DirectionUp))
	require.True(t, IsSimError(err))

	_, err = ScheduleDisk(DiskSCAN, []int{10}, diskConfig(250, DirectionUp))
	require.True(t, IsSimError(err))
}
