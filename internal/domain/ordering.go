package domain

import "math"

// Order keys are real numbers compared only by relative magnitude.
// A move writes one new key between two neighbours instead of renumbering
// every sibling. Repeated moves into the same gap halve it each time, so
// float64 keys eventually collide; Renumber on the store resets them.

// SortKey maps an optional order to a comparable value (missing = +Inf).
func SortKey(order *float64) float64 {
	if order == nil {
		return math.Inf(1)
	}
	return *order
}

// NextOrder returns max(defined orders) + 1, or 0 when none is defined.
func NextOrder(orders []*float64) float64 {
	highest := -1.0
	for _, o := range orders {
		if o != nil && *o > highest {
			highest = *o
		}
	}
	return highest + 1
}

// ReorderKey computes the new order for the item at src so that it lands
// next to the item at dst. orders must be sorted by SortKey. Moving toward
// the front places the item before dst, moving toward the back places it
// after dst.
func ReorderKey(orders []*float64, src, dst int) float64 {
	if src > dst {
		target := orders[dst]
		if dst == 0 {
			if target == nil {
				return 0
			}
			return *target - 1
		}
		prev := valueOr(orders[dst-1], 0)
		curr := valueOr(target, 1)
		return prev + (curr-prev)/2
	}

	last := len(orders) - 1
	if dst == last {
		if orders[dst] == nil {
			return float64(len(orders))
		}
		return *orders[dst] + 1
	}
	curr := valueOr(orders[dst], float64(dst))
	next := valueOr(orders[dst+1], float64(dst+1))
	return curr + (next-curr)/2
}

// MinGap returns the smallest distance between adjacent defined orders.
// It returns +Inf when fewer than two orders are defined.
func MinGap(sorted []*float64) float64 {
	gap := math.Inf(1)
	var prev *float64
	for _, o := range sorted {
		if o == nil {
			continue
		}
		if prev != nil {
			if d := *o - *prev; d < gap {
				gap = d
			}
		}
		prev = o
	}
	return gap
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
