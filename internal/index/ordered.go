package index

import (
	"cmp"
	"slices"

	"github.com/MrSnakeDoc/linemark/internal/domain"
)

// entry pairs an item with its insertion sequence, used to break order ties.
type entry[T any] struct {
	item T
	seq  uint64
}

// orderedSet is an id-keyed collection sorted on demand by order key.
// It is not safe for concurrent use; MemoryIndex guards it.
type orderedSet[T any] struct {
	items   map[string]*entry[T]
	nextSeq uint64
	idOf    func(*T) string
	orderOf func(*T) **float64
}

func newOrderedSet[T any](idOf func(*T) string, orderOf func(*T) **float64) *orderedSet[T] {
	return &orderedSet[T]{
		items:   make(map[string]*entry[T]),
		idOf:    idOf,
		orderOf: orderOf,
	}
}

func (s *orderedSet[T]) order(item *T) *float64 {
	return *s.orderOf(item)
}

// put inserts or replaces id. A replaced item keeps its original sequence.
func (s *orderedSet[T]) put(id string, item T) {
	if e, ok := s.items[id]; ok {
		e.item = item
		return
	}
	s.items[id] = &entry[T]{item: item, seq: s.nextSeq}
	s.nextSeq++
}

func (s *orderedSet[T]) get(id string) (*T, bool) {
	e, ok := s.items[id]
	if !ok {
		return nil, false
	}
	return &e.item, true
}

func (s *orderedSet[T]) remove(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

func (s *orderedSet[T]) clear() {
	s.items = make(map[string]*entry[T])
}

func (s *orderedSet[T]) len() int {
	return len(s.items)
}

// sorted returns entries ascending by order key, then insertion sequence.
func (s *orderedSet[T]) sorted() []*entry[T] {
	out := make([]*entry[T], 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *entry[T]) int {
		if c := cmp.Compare(domain.SortKey(s.order(&a.item)), domain.SortKey(s.order(&b.item))); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return out
}

// orders returns the order keys of sorted, position for position.
func (s *orderedSet[T]) orders(sorted []*entry[T]) []*float64 {
	out := make([]*float64, len(sorted))
	for i, e := range sorted {
		out[i] = s.order(&e.item)
	}
	return out
}

// nextOrder is max(order)+1 over the whole set, 0 when empty.
func (s *orderedSet[T]) nextOrder() float64 {
	all := make([]*float64, 0, len(s.items))
	for _, e := range s.items {
		all = append(all, s.order(&e.item))
	}
	return domain.NextOrder(all)
}

// reorderKey computes the new order for srcID relative to dstID.
// ok is false when either id is unknown or both are the same.
func (s *orderedSet[T]) reorderKey(srcID, dstID string) (key float64, ok bool) {
	if srcID == dstID {
		return 0, false
	}
	sorted := s.sorted()
	src, dst := -1, -1
	for i, e := range sorted {
		switch s.idOf(&e.item) {
		case srcID:
			src = i
		case dstID:
			dst = i
		}
	}
	if src == -1 || dst == -1 {
		return 0, false
	}
	return domain.ReorderKey(s.orders(sorted), src, dst), true
}

// renumber rewrites orders to 0..n-1 in current sort order and reports
// whether any key changed.
func (s *orderedSet[T]) renumber() bool {
	changed := false
	for i, e := range s.sorted() {
		want := float64(i)
		if p := s.order(&e.item); p != nil && *p == want {
			continue
		}
		*s.orderOf(&e.item) = domain.Ptr(want)
		changed = true
	}
	return changed
}

func (s *orderedSet[T]) minGap() float64 {
	return domain.MinGap(s.orders(s.sorted()))
}
