package queue

import (
	"container/heap"
	"time"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
)

type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityImmediate
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ParsePriority accepts the names printed by Priority.String.
// An empty string means PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "", "normal":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	case "high":
		return PriorityHigh, nil
	case "immediate":
		return PriorityImmediate, nil
	default:
		return PriorityNormal, errors.Errorf("unknown priority %q", s)
	}
}

type entry[H any] struct {
	id       txn.ID
	name     string
	priority Priority
	seq      uint64
	accepted time.Time
	tx       txn.Transaction[H]
}

// pending orders entries by priority, then by acceptance.
type pending[H any] []*entry[H]

func (p pending[H]) Len() int { return len(p) }

func (p pending[H]) Less(i, j int) bool {
	if p[i].priority != p[j].priority {
		return p[i].priority > p[j].priority
	}
	return p[i].seq < p[j].seq
}

func (p pending[H]) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *pending[H]) Push(x any) {
	*p = append(*p, x.(*entry[H]))
}

func (p *pending[H]) Pop() any {
	old := *p
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*p = old[:n-1]
	return e
}

func (p *pending[H]) push(e *entry[H]) {
	heap.Push(p, e)
}

func (p *pending[H]) pop() *entry[H] {
	return heap.Pop(p).(*entry[H])
}

func (p *pending[H]) remove(id txn.ID) (*entry[H], bool) {
	for i, e := range *p {
		if e.id == id {
			return heap.Remove(p, i).(*entry[H]), true
		}
	}
	return nil, false
}

// removeWhere takes out every entry match holds for and restores heap order.
func (p *pending[H]) removeWhere(match func(e *entry[H]) bool) []*entry[H] {
	var removed []*entry[H]

	kept := (*p)[:0]
	for _, e := range *p {
		if match(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	clear((*p)[len(kept):])
	*p = kept

	heap.Init(p)
	return removed
}

// drain removes everything in execution order.
func (p *pending[H]) drain() []*entry[H] {
	out := make([]*entry[H], 0, p.Len())
	for p.Len() > 0 {
		out = append(out, p.pop())
	}
	return out
}
