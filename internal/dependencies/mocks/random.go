package mocks

import (
	"multirpg/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Each method drains its own queue of scripted results and returns the
// zero value once the queue is exhausted.
type MockRandom struct {
	IntnResults []int
	intnIndex   int

	RangeResults []int
	rangeIndex   int

	Float64Results []float64
	float64Index   int

	PermResults [][]int
	permIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// Range returns the next queued result, or lo if none remaining
func (r *MockRandom) Range(lo, hi int) int {
	if r.rangeIndex >= len(r.RangeResults) {
		return lo
	}
	result := r.RangeResults[r.rangeIndex]
	r.rangeIndex++
	return result
}

// Float64 returns the next queued result, or 1.0 if none remaining.
// The 1.0 default means "probability roll fails", so unscripted branches
// stay quiet in tests.
func (r *MockRandom) Float64() float64 {
	if r.float64Index >= len(r.Float64Results) {
		return 1.0
	}
	result := r.Float64Results[r.float64Index]
	r.float64Index++
	return result
}

// Perm returns the next queued result, or the identity permutation
func (r *MockRandom) Perm(n int) []int {
	if r.permIndex >= len(r.PermResults) {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	result := r.PermResults[r.permIndex]
	r.permIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueRange adds values to the Range result queue
func (r *MockRandom) QueueRange(values ...int) {
	r.RangeResults = append(r.RangeResults, values...)
}

// QueueFloat64 adds values to the Float64 result queue
func (r *MockRandom) QueueFloat64(values ...float64) {
	r.Float64Results = append(r.Float64Results, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	*r = MockRandom{}
}
