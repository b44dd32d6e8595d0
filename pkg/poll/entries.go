package poll

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
)

type entry struct {
	attribute attribute.ID
	interval  uint32
	deadline  uint64
	seq       uint64
	index     int
}

// entryHeap orders by deadline, then by first insertion.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Entries is the default Queue: a min-heap with an index by attribute.
// It is not safe for concurrent use; the engine owns it.
type Entries struct {
	heap  entryHeap
	index map[attribute.ID]*entry
	seq   uint64
}

var _ Queue = (*Entries)(nil)

func NewEntries() *Entries {
	return &Entries{index: make(map[attribute.ID]*entry)}
}

func (q *Entries) Queue(a attribute.ID, interval uint32, now uint64) bool {
	deadline := now + uint64(interval)
	if e, ok := q.index[a]; ok {
		e.interval = interval
		e.deadline = deadline
		heap.Fix(&q.heap, e.index)
		return false
	}
	q.seq++
	e := &entry{attribute: a, interval: interval, deadline: deadline, seq: q.seq}
	heap.Push(&q.heap, e)
	q.index[a] = e
	return true
}

func (q *Entries) Requeue(a attribute.ID, now uint64) bool {
	e, ok := q.index[a]
	if !ok {
		return false
	}
	e.deadline = now + uint64(e.interval)
	heap.Fix(&q.heap, e.index)
	return true
}

func (q *Entries) Upcoming() (attribute.ID, uint64, bool) {
	if len(q.heap) == 0 {
		return attribute.InvalidID, 0, false
	}
	e := q.heap[0]
	return e.attribute, e.deadline, true
}

func (q *Entries) PopNext() (attribute.ID, uint32, bool) {
	if len(q.heap) == 0 {
		return attribute.InvalidID, 0, false
	}
	e := heap.Pop(&q.heap).(*entry)
	delete(q.index, e.attribute)
	return e.attribute, e.interval, true
}

func (q *Entries) Contains(a attribute.ID) bool {
	_, ok := q.index[a]
	return ok
}

func (q *Entries) Remove(a attribute.ID) bool {
	e, ok := q.index[a]
	if !ok {
		return false
	}
	heap.Remove(&q.heap, e.index)
	delete(q.index, a)
	return true
}

func (q *Entries) Len() int {
	return len(q.heap)
}

// String lists entries in poll order.
func (q *Entries) String() string {
	sorted := make(entryHeap, len(q.heap))
	copy(sorted, q.heap)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].deadline != sorted[j].deadline {
			return sorted[i].deadline < sorted[j].deadline
		}
		return sorted[i].seq < sorted[j].seq
	})

	var b strings.Builder
	fmt.Fprintf(&b, "poll queue (%d entries)", len(sorted))
	for _, e := range sorted {
		fmt.Fprintf(&b, "\n  attribute=%d interval=%ds deadline=%d", e.attribute, e.interval, e.deadline)
	}
	return b.String()
}
