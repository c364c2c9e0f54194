// Package ledger owns a bill's participants, items and discount, and keeps
// the allocation snapshot in step with every change.
//
// State is an immutable value: every transition returns a new State and never
// modifies the receiver, so earlier snapshots stay valid. Store serializes
// transitions for callers that share one bill.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/mmynk/tabsplit/internal/calculator"
	"github.com/mmynk/tabsplit/internal/models"
)

// ErrUnsatisfiablePortions is returned when a manual portion assignment would
// push an item past its total and no other consumer can be reduced.
var ErrUnsatisfiablePortions = errors.New("portion allocation cannot be satisfied")

// State is one version of a bill.
type State struct {
	participants    []models.Participant
	items           []models.Item
	discountPercent float64

	nextParticipantID int
	nextItemID        int
}

// NewState returns an empty bill.
func NewState() State {
	return State{nextParticipantID: 1, nextItemID: 1}
}

// Starter returns the bill a new session opens with: two people and one
// unpriced item consumed by the first of them.
func Starter() State {
	s := NewState().
		AddParticipant("Person 1").
		AddParticipant("Person 2").
		AddItem("Food Item 1")
	return s.ToggleConsumer(1, 1)
}

// Participants returns the participants in the order they were added.
func (s State) Participants() []models.Participant {
	return slices.Clone(s.participants)
}

// Items returns deep copies of the items in the order they were added.
func (s State) Items() []models.Item {
	out := make([]models.Item, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// DiscountPercent returns the bill-wide discount in [0, 100].
func (s State) DiscountPercent() float64 {
	return s.discountPercent
}

// Participant looks up a participant by ID.
func (s State) Participant(id int) (models.Participant, bool) {
	idx := s.participantIndex(id)
	if idx < 0 {
		return models.Participant{}, false
	}
	return s.participants[idx], true
}

// Item looks up an item by ID.
func (s State) Item(id int) (models.Item, bool) {
	idx := s.itemIndex(id)
	if idx < 0 {
		return models.Item{}, false
	}
	return s.items[idx].Clone(), true
}

// Compute runs the allocation engine over this state.
func (s State) Compute() calculator.Allocation {
	return calculator.Compute(s.participants, s.items, s.discountPercent)
}

// AddParticipant appends a participant. Blank names are ignored.
func (s State) AddParticipant(name string) State {
	name = strings.TrimSpace(name)
	if name == "" {
		return s
	}
	s.participants = append(slices.Clip(s.participants), models.Participant{ID: s.nextParticipantID, Name: name})
	s.nextParticipantID++
	return s
}

// RenameParticipant changes a participant's name. Blank names and unknown IDs are ignored.
func (s State) RenameParticipant(id int, name string) State {
	name = strings.TrimSpace(name)
	idx := s.participantIndex(id)
	if name == "" || idx < 0 {
		return s
	}
	s.participants = slices.Clone(s.participants)
	s.participants[idx] = models.Participant{ID: id, Name: name}
	return s
}

// RemoveParticipant removes a participant and drops them from every item.
func (s State) RemoveParticipant(id int) State {
	return s.RemoveParticipants([]int{id})
}

// RemoveParticipants removes several participants at once and drops them from
// every item's consumers and weights.
func (s State) RemoveParticipants(ids []int) State {
	s.participants = slices.DeleteFunc(slices.Clone(s.participants), func(p models.Participant) bool {
		return slices.Contains(ids, p.ID)
	})

	items := make([]models.Item, len(s.items))
	for i, item := range s.items {
		for _, id := range ids {
			item = calculator.RemoveConsumer(item, id)
		}
		items[i] = item
	}
	s.items = items
	return s
}

// AddItem appends an unpriced item with no consumers. Blank names are ignored.
func (s State) AddItem(name string) State {
	name = strings.TrimSpace(name)
	if name == "" {
		return s
	}
	s.items = append(slices.Clip(s.items), models.Item{
		ID:    s.nextItemID,
		Name:  name,
		Split: models.EqualSplit{},
	})
	s.nextItemID++
	return s
}

// RenameItem changes an item's name. Blank names and unknown IDs are ignored.
func (s State) RenameItem(id int, name string) State {
	name = strings.TrimSpace(name)
	if name == "" {
		return s
	}
	return s.updateItem(id, func(item models.Item) models.Item {
		item.Name = name
		return item
	})
}

// RemoveItem removes one item.
func (s State) RemoveItem(id int) State {
	return s.RemoveItems([]int{id})
}

// RemoveItems removes several items at once.
func (s State) RemoveItems(ids []int) State {
	s.items = slices.DeleteFunc(slices.Clone(s.items), func(item models.Item) bool {
		return slices.Contains(ids, item.ID)
	})
	return s
}

// SetPrice sets an item's price. Negative, NaN and infinite prices become 0.
func (s State) SetPrice(id int, price float64) State {
	price = NormalizePrice(price)
	return s.updateItem(id, func(item models.Item) models.Item {
		item.Price = price
		return item
	})
}

// ToggleConsumer adds the participant to the item's consumers or removes them.
// Unknown participants are ignored.
func (s State) ToggleConsumer(itemID, participantID int) State {
	if s.participantIndex(participantID) < 0 {
		return s
	}
	return s.updateItem(itemID, func(item models.Item) models.Item {
		return calculator.ToggleConsumer(item, participantID)
	})
}

// SetTotalPortions changes the number of portions an item is cut into.
// Values below 1 are treated as 1 (equal split).
func (s State) SetTotalPortions(itemID, total int) State {
	return s.updateItem(itemID, func(item models.Item) models.Item {
		return calculator.Resize(item, total)
	})
}

// SetMemberPortion assigns a consumer's weight on a weighted item, taking
// any excess from the other consumers. It returns ErrUnsatisfiablePortions
// and the unchanged state when nobody else can give up a portion.
func (s State) SetMemberPortion(itemID, participantID, weight int) (State, error) {
	var err error
	next := s.updateItem(itemID, func(item models.Item) models.Item {
		var updated models.Item
		updated, err = calculator.SetMemberPortion(item, participantID, weight)
		return updated
	})
	if err != nil {
		return s, fmt.Errorf("item %d: %w: %w", itemID, ErrUnsatisfiablePortions, err)
	}
	return next, nil
}

// SetDiscountExempt flags an item to ignore the bill discount.
func (s State) SetDiscountExempt(itemID int, exempt bool) State {
	return s.updateItem(itemID, func(item models.Item) models.Item {
		item.DiscountExempt = exempt
		return item
	})
}

// SetDiscountPercent sets the bill-wide discount, clamped to [0, 100].
// NaN is treated as 0.
func (s State) SetDiscountPercent(percent float64) State {
	if math.IsNaN(percent) {
		percent = 0
	}
	s.discountPercent = min(max(percent, 0), 100)
	return s
}

// NormalizePrice maps negative, NaN and infinite prices to 0.
func NormalizePrice(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return price
}

// ParsePrice reads a price typed as text. Anything that is not a finite,
// non-negative number becomes 0.
func ParsePrice(text string) float64 {
	price, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return NormalizePrice(price)
}

func (s State) updateItem(id int, fn func(models.Item) models.Item) State {
	idx := s.itemIndex(id)
	if idx < 0 {
		return s
	}
	s.items = slices.Clone(s.items)
	s.items[idx] = fn(s.items[idx])
	return s
}

func (s State) participantIndex(id int) int {
	return slices.IndexFunc(s.participants, func(p models.Participant) bool { return p.ID == id })
}

func (s State) itemIndex(id int) int {
	return slices.IndexFunc(s.items, func(item models.Item) bool { return item.ID == id })
}
