package simulator

import (
	"testing"
)

func TestArrivalQueueBasicOperations(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		q := NewArrivalQueue(nil)
		if !q.IsEmpty() {
			t.Errorf("Expected empty queue, got length %d", q.Len())
		}
		if q.NextTime() != -1 {
			t.Errorf("Expected NextTime -1 on empty queue, got %d", q.NextTime())
		}
		if released := q.ReleaseUntil(100); len(released) != 0 {
			t.Errorf("Expected nothing released, got %v", released)
		}
	})

	t.Run("release single process", func(t *testing.T) {
		q := NewArrivalQueue([]Process{{ID: "P1", ArrivalTime: 10, BurstTime: 1}})
		if q.Len() != 1 {
			t.Errorf("Expected length 1, got %d", q.Len())
		}
		if released := q.ReleaseUntil(9); len(released) != 0 {
			t.Errorf("Expected nothing before arrival, got %v", released)
		}
		released := q.ReleaseUntil(10)
		if len(released) != 1 || released[0] != 0 {
			t.Fatalf("Expected [0], got %v", released)
		}
		if !q.IsEmpty() {
			t.Errorf("Expected empty queue after release, got length %d", q.Len())
		}
	})
}

func TestArrivalQueueOrdering(t *testing.T) {
	// Pushed out of order; equal times keep input order
	processes := []Process{
		{ID: "A", ArrivalTime: 15},
		{ID: "B", ArrivalTime: 5},
		{ID: "C", ArrivalTime: 20},
		{ID: "D", ArrivalTime: 5},
		{ID: "E", ArrivalTime: 0},
	}
	q := NewArrivalQueue(processes)

	if q.NextTime() != 0 {
		t.Fatalf("Expected NextTime 0, got %d", q.NextTime())
	}

	released := q.ReleaseUntil(15)
	expected := []int{4, 1, 3, 0}
	if len(released) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, released)
	}
	for i := range expected {
		if released[i] != expected[i] {
			t.Errorf("At position %d: expected index %d, got %d", i, expected[i], released[i])
		}
	}

	if q.NextTime() != 20 {
		t.Errorf("Expected NextTime 20, got %d", q.NextTime())
	}
	if q.Len() != 1 {
		t.Errorf("Expected 1 pending process, got %d", q.Len())
	}
}
