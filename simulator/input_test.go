package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntSequence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"spaces", "7 0 1 2", []int{7, 0, 1, 2}},
		{"commas", "98,183,37", []int{98, 183, 37}},
		{"mixed separators", " 1, 2;3\t4\n5 ", []int{1, 2, 3, 4, 5}},
		{"repeated separators", "1,, 2", []int{1, 2}},
		{"negative", "-3 4", []int{-3, 4}},
		{"empty", "", []int{}},
		{"blank", "  \n ", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntSequence(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntSequence_RejectsNonNumeric(t *testing.T) {
	for _, input := range []string{"1 two 3", "1.5", "4x"} {
		_, err := ParseIntSequence(input)
		require.Error(t, err, input)
		require.True(t, IsSimError(err), input)
	}
}

func TestParseProcesses(t *testing.T) {
	processes, err := ParseProcesses("0 1 2", "4, 3, 5")
	require.NoError(t, err)
	require.Equal(t, []Process{
		{ID: "P1", ArrivalTime: 0, BurstTime: 4},
		{ID: "P2", ArrivalTime: 1, BurstTime: 3},
		{ID: "P3", ArrivalTime: 2, BurstTime: 5},
	}, processes)

	t.Run("length mismatch", func(t *testing.T) {
		_, err := ParseProcesses("0 1", "4")
		require.True(t, IsSimError(err))
	})

	t.Run("bad token is wrapped", func(t *testing.T) {
		_, err := ParseProcesses("0 x", "1 2")
		require.ErrorContains(t, err, "arrival times")
		require.True(t, IsSimError(err))
	})

	t.Run("zero burst", func(t *testing.T) {
		_, err := ParseProcesses("0", "0")
		require.True(t, IsSimError(err))
	})
}

func TestValidateRequestsAndReferences(t *testing.T) {
	require.NoError(t, ValidateRequests([]int{0, 199}, 199))
	require.Error(t, ValidateRequests([]int{0, 200}, 199))
	require.NoError(t, ValidateReferences([]int{0, 5}))
	require.Error(t, ValidateReferences([]int{0, -1}))
}
