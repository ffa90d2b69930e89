package simulator

import "container/heap"

// arrival is a process waiting to enter the ready set
type arrival struct {
	index int // Position in the caller's process list (tie-breaker)
	time  int
}

// ArrivalQueue releases processes in (arrivalTime, input index) order
type ArrivalQueue struct {
	pending arrivalHeap
}

// NewArrivalQueue builds a queue holding every process of the list
func NewArrivalQueue(processes []Process) *ArrivalQueue {
	aq := &ArrivalQueue{
		pending: make(arrivalHeap, 0, len(processes)),
	}
	for i, p := range processes {
		aq.pending = append(aq.pending, arrival{index: i, time: p.ArrivalTime})
	}
	heap.Init(&aq.pending)
	return aq
}

// IsEmpty returns true if every process has been released
func (aq *ArrivalQueue) IsEmpty() bool {
	return aq.pending.Len() == 0
}

// Len returns the number of processes not yet released
func (aq *ArrivalQueue) Len() int {
	return aq.pending.Len()
}

// NextTime returns the earliest pending arrival time, or -1 if empty
func (aq *ArrivalQueue) NextTime() int {
	if aq.IsEmpty() {
		return -1
	}
	return aq.pending[0].time
}

// ReleaseUntil pops every process that has arrived by time t and returns
// their input indexes in release order.
func (aq *ArrivalQueue) ReleaseUntil(t int) []int {
	var released []int
	for !aq.IsEmpty() && aq.pending[0].time <= t {
		released = append(released, heap.Pop(&aq.pending).(arrival).index)
	}
	return released
}

// arrivalHeap implements heap.Interface for arrival
type arrivalHeap []arrival

func (h arrivalHeap) Len() int { return len(h) }
func (h arrivalHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].index < h[j].index
}
func (h arrivalHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *arrivalHeap) Push(x interface{}) {
	*h = append(*h, x.(arrival))
}

func (h *arrivalHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
