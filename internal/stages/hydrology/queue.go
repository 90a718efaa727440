package hydrology

import "container/heap"

// floodItem is one open cell of the priority flood.
type floodItem struct {
	cell  int
	level float64
	seq   uint64
}

// floodQueue is a min-heap keyed by (level, insertion sequence).
type floodQueue []floodItem

func (q floodQueue) Len() int { return len(q) }

func (q floodQueue) Less(i, j int) bool {
	if q[i].level != q[j].level {
		return q[i].level < q[j].level
	}
	return q[i].seq < q[j].seq
}

func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *floodQueue) Push(x any) { *q = append(*q, x.(floodItem)) }

func (q *floodQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

type frontier struct {
	q   floodQueue
	seq uint64
}

func newFrontier(capacity int) *frontier {
	f := &frontier{q: make(floodQueue, 0, capacity)}
	heap.Init(&f.q)
	return f
}

func (f *frontier) push(cell int, level float64) {
	heap.Push(&f.q, floodItem{cell: cell, level: level, seq: f.seq})
	f.seq++
}

func (f *frontier) pop() floodItem { return heap.Pop(&f.q).(floodItem) }

func (f *frontier) empty() bool { return f.q.Len() == 0 }
