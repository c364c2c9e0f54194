package ledger

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/tabsplit/internal/calculator"
	"github.com/mmynk/tabsplit/internal/metrics"
	"github.com/mmynk/tabsplit/internal/models"
)

// Snapshot is a read-only view of a bill together with its allocation.
// Callers must not modify the slices or maps it holds.
type Snapshot struct {
	Participants    []models.Participant
	Items           []models.Item
	DiscountPercent float64

	calculator.Allocation

	// Warnings lists weighted items whose weights do not add up to their total.
	Warnings []Warning
}

// Warning reports a weighted item that is under- or over-allocated.
type Warning struct {
	ItemID    int
	ItemName  string
	Allocated int
	Total     int
}

// Over reports whether more portions are allocated than the item has.
func (w Warning) Over() bool {
	return w.Allocated > w.Total
}

// NewSnapshot computes the allocation for a state.
func NewSnapshot(s State) Snapshot {
	snap := Snapshot{
		Participants:    s.participants,
		Items:           s.items,
		DiscountPercent: s.discountPercent,
		Allocation:      s.Compute(),
	}
	for _, item := range s.items {
		split, ok := item.Split.(models.WeightedSplit)
		if !ok {
			continue
		}
		if allocated := split.Weights.Sum(); allocated != split.Total {
			snap.Warnings = append(snap.Warnings, Warning{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Allocated: allocated,
				Total:     split.Total,
			})
		}
	}
	return snap
}

// Store is the single writer for one bill. Every command applies a State
// transition and recomputes the snapshot before the lock is released, so
// readers never observe a state whose allocation has not caught up.
type Store struct {
	mu       sync.RWMutex
	state    State
	snapshot Snapshot
	logger   *slog.Logger
}

// NewStore creates a store holding the given state.
func NewStore(initial State) *Store {
	return &Store{
		state:    initial,
		snapshot: NewSnapshot(initial),
		logger:   slog.Default(),
	}
}

// WithLogger replaces the store's logger and returns the store.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
	return s
}

// Snapshot returns the current bill and its allocation.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) AddParticipant(name string) Snapshot {
	return s.mustApply("add_participant", func(st State) State { return st.AddParticipant(name) })
}

func (s *Store) RenameParticipant(id int, name string) Snapshot {
	return s.mustApply("rename_participant", func(st State) State { return st.RenameParticipant(id, name) })
}

func (s *Store) RemoveParticipant(id int) Snapshot {
	return s.mustApply("remove_participant", func(st State) State { return st.RemoveParticipant(id) })
}

func (s *Store) RemoveParticipants(ids []int) Snapshot {
	return s.mustApply("remove_participants", func(st State) State { return st.RemoveParticipants(ids) })
}

func (s *Store) AddItem(name string) Snapshot {
	return s.mustApply("add_item", func(st State) State { return st.AddItem(name) })
}

func (s *Store) RenameItem(id int, name string) Snapshot {
	return s.mustApply("rename_item", func(st State) State { return st.RenameItem(id, name) })
}

func (s *Store) RemoveItem(id int) Snapshot {
	return s.mustApply("remove_item", func(st State) State { return st.RemoveItem(id) })
}

func (s *Store) RemoveItems(ids []int) Snapshot {
	return s.mustApply("remove_items", func(st State) State { return st.RemoveItems(ids) })
}

func (s *Store) SetPrice(id int, price float64) Snapshot {
	return s.mustApply("set_price", func(st State) State { return st.SetPrice(id, price) })
}

func (s *Store) ToggleConsumer(itemID, participantID int) Snapshot {
	return s.mustApply("toggle_consumer", func(st State) State { return st.ToggleConsumer(itemID, participantID) })
}

func (s *Store) SetTotalPortions(itemID, total int) Snapshot {
	return s.mustApply("set_total_portions", func(st State) State { return st.SetTotalPortions(itemID, total) })
}

// SetMemberPortion returns ErrUnsatisfiablePortions, and leaves the bill
// untouched, when the weight cannot be honored without breaking the item's total.
func (s *Store) SetMemberPortion(itemID, participantID, weight int) (Snapshot, error) {
	return s.apply("set_member_portion", func(st State) (State, error) {
		return st.SetMemberPortion(itemID, participantID, weight)
	})
}

func (s *Store) SetDiscountExempt(itemID int, exempt bool) Snapshot {
	return s.mustApply("set_discount_exempt", func(st State) State { return st.SetDiscountExempt(itemID, exempt) })
}

func (s *Store) SetDiscountPercent(percent float64) Snapshot {
	return s.mustApply("set_discount_percent", func(st State) State { return st.SetDiscountPercent(percent) })
}

func (s *Store) mustApply(op string, fn func(State) State) Snapshot {
	snap, _ := s.apply(op, func(st State) (State, error) { return fn(st), nil })
	return snap
}

func (s *Store) apply(op string, fn func(State) (State, error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state)
	if err != nil {
		if errors.Is(err, ErrUnsatisfiablePortions) {
			metrics.RebalanceFailures.Inc()
		}
		s.logger.Warn("Bill mutation rejected", "op", op, "error", err)
		return s.snapshot, err
	}

	start := time.Now()
	s.state = next
	s.snapshot = NewSnapshot(next)
	metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	metrics.Mutations.WithLabelValues(op).Inc()

	for _, w := range s.snapshot.Warnings {
		if w.Over() {
			s.logger.Warn("Item portions over-allocated",
				"op", op, "item_id", w.ItemID, "allocated", w.Allocated, "total", w.Total)
			continue
		}
		s.logger.Debug("Item portions under-allocated",
			"op", op, "item_id", w.ItemID, "allocated", w.Allocated, "total", w.Total)
	}
	s.logger.Debug("Bill recomputed",
		"op", op,
		"participants", len(next.participants),
		"items", len(next.items),
		"total_bill", s.snapshot.TotalBill,
		"total_discount", s.snapshot.TotalDiscount,
	)

	return s.snapshot, nil
}
