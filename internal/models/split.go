package models

import (
	"maps"
	"slices"
)

// Item represents a single purchased line on the bill.
// Items are shared among the participants listed in Consumers.
type Item struct {
	// ID is unique within the bill's item collection.
	ID int

	// Name is the description of the item (e.g., "Pizza", "Beer").
	Name string

	// Price is the pre-discount price. Always >= 0.
	Price float64

	// Consumers are the participant IDs sharing this item, in the order
	// they were added.
	Consumers []int

	// Split decides how the price divides among Consumers.
	// A nil Split behaves as EqualSplit.
	Split SplitMode

	// DiscountExempt makes the item ignore the bill's discount percentage.
	DiscountExempt bool
}

// TotalPortions returns the item's portion budget (1 for an equal split).
func (i Item) TotalPortions() int {
	if w, ok := i.Split.(WeightedSplit); ok {
		return w.Total
	}
	return 1
}

// HasConsumer reports whether the participant consumes this item.
func (i Item) HasConsumer(participantID int) bool {
	return slices.Contains(i.Consumers, participantID)
}

// Clone returns a deep copy so the result can be edited without aliasing
// the original's consumers or weights.
func (i Item) Clone() Item {
	out := i
	out.Consumers = slices.Clone(i.Consumers)
	if w, ok := i.Split.(WeightedSplit); ok {
		out.Split = WeightedSplit{Total: w.Total, Weights: w.Weights.Clone()}
	}
	return out
}

// SplitMode describes how an item's cost is divided. It is either
// EqualSplit or WeightedSplit.
type SplitMode interface {
	splitMode()
}

// EqualSplit divides the cost equally among all consumers.
type EqualSplit struct{}

// WeightedSplit divides the cost into Total portions; each consumer pays for
// the number of portions recorded in Weights.
type WeightedSplit struct {
	// Total is the number of portions the item is cut into. Always > 1.
	Total int

	// Weights maps participant ID to the number of portions they consumed.
	// Its sum should equal Total but may transiently differ.
	Weights Portions
}

func (EqualSplit) splitMode()    {}
func (WeightedSplit) splitMode() {}

// Portions maps participant ID to an integer portion weight.
type Portions map[int]int

// Sum returns the total number of allocated portions.
func (p Portions) Sum() int {
	total := 0
	for _, w := range p {
		total += w
	}
	return total
}

// Keys returns the participant IDs in ascending order.
func (p Portions) Keys() []int {
	return slices.Sorted(maps.Keys(p))
}

// Clone returns a copy of the weights. A nil map clones to an empty one.
func (p Portions) Clone() Portions {
	out := make(Portions, len(p))
	maps.Copy(out, p)
	return out
}
