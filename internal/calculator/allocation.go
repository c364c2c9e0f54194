package calculator

import (
	"github.com/mmynk/tabsplit/internal/models"
)

// Share represents one participant's part of one item.
type Share struct {
	ItemID        int
	ItemName      string
	Amount        float64 // This participant's share after discount
	Portions      int     // Weight in a weighted split, 1 in an equal split
	OriginalPrice float64 // Item price before discount
	Discounted    bool    // Whether the bill discount applied to the item
}

// Allocation is the calculated breakdown of a bill.
type Allocation struct {
	// MemberTotals maps participant ID to the amount they owe.
	// Every participant is present, even with a zero total.
	MemberTotals map[int]float64

	// MemberShares maps participant ID to their itemized shares, in item order.
	MemberShares map[int][]Share

	// TotalBill is the sum of MemberTotals.
	TotalBill float64

	// TotalDiscount is the amount removed from priced, consumed items by the discount.
	TotalDiscount float64
}

// Compute splits every item among its consumers and aggregates per-participant totals.
//
// Algorithm, per item (skipped when price <= 0 or nobody consumes it):
//   - effective_price = price × (1 - discount/100), unless the item is exempt
//   - weighted split: share = effective_price / total_portions × weight
//   - equal split:    share = effective_price / consumer_count
//
// No rounding is applied; that is left to presentation.
func Compute(participants []models.Participant, items []models.Item, discountPercent float64) Allocation {
	result := Allocation{
		MemberTotals: make(map[int]float64, len(participants)),
		MemberShares: make(map[int][]Share, len(participants)),
	}

	for _, p := range participants {
		result.MemberTotals[p.ID] = 0
	}

	for _, item := range items {
		if item.Price <= 0 || len(item.Consumers) == 0 {
			continue
		}

		applicable := discountPercent > 0 && !item.DiscountExempt
		effectivePrice := item.Price
		if applicable {
			effectivePrice = item.Price * (1 - discountPercent/100)
			result.TotalDiscount += item.Price - effectivePrice
		}

		record := func(consumer int, amount float64, portions int) {
			result.MemberShares[consumer] = append(result.MemberShares[consumer], Share{
				ItemID:        item.ID,
				ItemName:      item.Name,
				Amount:        amount,
				Portions:      portions,
				OriginalPrice: item.Price,
				Discounted:    applicable,
			})
			result.MemberTotals[consumer] += amount
		}

		switch split := item.Split.(type) {
		case models.WeightedSplit:
			pricePerPortion := effectivePrice / float64(split.Total)
			for _, consumer := range item.Consumers {
				weight := split.Weights[consumer]
				if weight <= 0 {
					continue
				}
				record(consumer, pricePerPortion*float64(weight), weight)
			}
		default:
			perPerson := effectivePrice / float64(len(item.Consumers))
			for _, consumer := range item.Consumers {
				record(consumer, perPerson, 1)
			}
		}
	}

	for _, total := range result.MemberTotals {
		result.TotalBill += total
	}

	return result
}
