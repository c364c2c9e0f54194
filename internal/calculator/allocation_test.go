package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/tabsplit/internal/models"
)

const tolerance = 1e-9

func TestCompute(t *testing.T) {
	alice := models.Participant{ID: 1, Name: "Alice"}
	bob := models.Participant{ID: 2, Name: "Bob"}
	carol := models.Participant{ID: 3, Name: "Carol"}

	tests := []struct {
		name         string
		participants []models.Participant
		items        []models.Item
		discount     float64
		validateFunc func(t *testing.T, got Allocation)
	}{
		{
			name:         "equal split between two",
			participants: []models.Participant{alice, bob},
			items: []models.Item{
				{ID: 1, Name: "Pizza", Price: 100, Consumers: []int{1, 2}, Split: models.EqualSplit{}},
			},
			validateFunc: func(t *testing.T, got Allocation) {
				for _, id := range []int{1, 2} {
					if math.Abs(got.MemberTotals[id]-50) > tolerance {
						t.Errorf("member %d total = %v, want 50", id, got.MemberTotals[id])
					}
				}
				if math.Abs(got.TotalBill-100) > tolerance {
					t.Errorf("TotalBill = %v, want 100", got.TotalBill)
				}
				if got.TotalDiscount != 0 {
					t.Errorf("TotalDiscount = %v, want 0", got.TotalDiscount)
				}
			},
		},
		{
			name:         "ten percent discount",
			participants: []models.Participant{alice, bob},
			items: []models.Item{
				{ID: 1, Name: "Pizza", Price: 100, Consumers: []int{1, 2}},
			},
			discount: 10,
			validateFunc: func(t *testing.T, got Allocation) {
				for _, id := range []int{1, 2} {
					if math.Abs(got.MemberTotals[id]-45) > tolerance {
						t.Errorf("member %d total = %v, want 45", id, got.MemberTotals[id])
					}
					shares := got.MemberShares[id]
					if len(shares) != 1 || !shares[0].Discounted || shares[0].OriginalPrice != 100 {
						t.Errorf("member %d shares = %+v, want one discounted share of 100", id, shares)
					}
				}
				if math.Abs(got.TotalDiscount-10) > tolerance {
					t.Errorf("TotalDiscount = %v, want 10", got.TotalDiscount)
				}
				if math.Abs(got.TotalBill-90) > tolerance {
					t.Errorf("TotalBill = %v, want 90", got.TotalBill)
				}
			},
		},
		{
			name:         "weighted portions",
			participants: []models.Participant{alice, bob},
			items: []models.Item{
				{
					ID: 1, Name: "Cake", Price: 100, Consumers: []int{1, 2},
					Split: models.WeightedSplit{Total: 4, Weights: models.Portions{1: 3, 2: 1}},
				},
			},
			validateFunc: func(t *testing.T, got Allocation) {
				if math.Abs(got.MemberTotals[1]-75) > tolerance {
					t.Errorf("Alice total = %v, want 75", got.MemberTotals[1])
				}
				if math.Abs(got.MemberTotals[2]-25) > tolerance {
					t.Errorf("Bob total = %v, want 25", got.MemberTotals[2])
				}
				if got.MemberShares[1][0].Portions != 3 {
					t.Errorf("Alice portions = %d, want 3", got.MemberShares[1][0].Portions)
				}
			},
		},
		{
			name:         "zero weight gets no share",
			participants: []models.Participant{alice, bob, carol},
			items: []models.Item{
				{
					ID: 1, Name: "Wine", Price: 60, Consumers: []int{1, 2, 3},
					Split: models.WeightedSplit{Total: 3, Weights: models.Portions{1: 2, 2: 0}},
				},
			},
			validateFunc: func(t *testing.T, got Allocation) {
				if math.Abs(got.MemberTotals[1]-40) > tolerance {
					t.Errorf("Alice total = %v, want 40", got.MemberTotals[1])
				}
				for _, id := range []int{2, 3} {
					if got.MemberTotals[id] != 0 {
						t.Errorf("member %d total = %v, want 0", id, got.MemberTotals[id])
					}
					if len(got.MemberShares[id]) != 0 {
						t.Errorf("member %d has %d shares, want none", id, len(got.MemberShares[id]))
					}
				}
			},
		},
		{
			name:         "exempt item ignores discount",
			participants: []models.Participant{alice, bob},
			items: []models.Item{
				{ID: 1, Name: "Pizza", Price: 100, Consumers: []int{1}},
				{ID: 2, Name: "Tip", Price: 20, Consumers: []int{1, 2}, DiscountExempt: true},
			},
			discount: 50,
			validateFunc: func(t *testing.T, got Allocation) {
				if math.Abs(got.MemberTotals[1]-60) > tolerance {
					t.Errorf("Alice total = %v, want 60", got.MemberTotals[1])
				}
				if math.Abs(got.MemberTotals[2]-10) > tolerance {
					t.Errorf("Bob total = %v, want 10", got.MemberTotals[2])
				}
				if math.Abs(got.TotalDiscount-50) > tolerance {
					t.Errorf("TotalDiscount = %v, want 50", got.TotalDiscount)
				}
				if got.MemberShares[2][0].Discounted {
					t.Error("exempt share marked as discounted")
				}
			},
		},
		{
			name:         "unpriced and unconsumed items are skipped",
			participants: []models.Participant{alice, bob},
			items: []models.Item{
				{ID: 1, Name: "Water", Price: 0, Consumers: []int{1, 2}},
				{ID: 2, Name: "Bread", Price: 12, Consumers: nil},
			},
			discount: 25,
			validateFunc: func(t *testing.T, got Allocation) {
				if got.TotalBill != 0 || got.TotalDiscount != 0 {
					t.Errorf("TotalBill = %v, TotalDiscount = %v, want 0 and 0", got.TotalBill, got.TotalDiscount)
				}
				if len(got.MemberTotals) != 2 {
					t.Errorf("MemberTotals has %d entries, want every participant", len(got.MemberTotals))
				}
				if len(got.MemberShares) != 0 {
					t.Errorf("MemberShares = %v, want empty", got.MemberShares)
				}
			},
		},
		{
			name:         "three-way split keeps item total",
			participants: []models.Participant{alice, bob, carol},
			items: []models.Item{
				{ID: 1, Name: "Nachos", Price: 10, Consumers: []int{3, 1, 2}},
			},
			discount: 15,
			validateFunc: func(t *testing.T, got Allocation) {
				sum := 0.0
				for _, id := range []int{1, 2, 3} {
					sum += got.MemberShares[id][0].Amount
				}
				if math.Abs(sum-8.5) > tolerance {
					t.Errorf("sum of shares = %v, want 8.5", sum)
				}
				if math.Abs(got.TotalBill+got.TotalDiscount-10) > tolerance {
					t.Errorf("TotalBill + TotalDiscount = %v, want 10", got.TotalBill+got.TotalDiscount)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.participants, tt.items, tt.discount)
			tt.validateFunc(t, got)

			sum := 0.0
			for _, total := range got.MemberTotals {
				sum += total
			}
			if math.Abs(sum-got.TotalBill) > tolerance {
				t.Errorf("TotalBill = %v, sum of member totals = %v", got.TotalBill, sum)
			}
		})
	}
}

func TestComputeShareOrderFollowsItems(t *testing.T) {
	participants := []models.Participant{{ID: 1, Name: "Alice"}}
	items := []models.Item{
		{ID: 7, Name: "Soup", Price: 5, Consumers: []int{1}},
		{ID: 3, Name: "Salad", Price: 8, Consumers: []int{1}},
	}

	got := Compute(participants, items, 0)

	shares := got.MemberShares[1]
	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}
	if shares[0].ItemID != 7 || shares[1].ItemID != 3 {
		t.Errorf("share order = [%d %d], want [7 3]", shares[0].ItemID, shares[1].ItemID)
	}
	if shares[1].ItemName != "Salad" || shares[1].Portions != 1 {
		t.Errorf("second share = %+v, want Salad with 1 portion", shares[1])
	}
}
