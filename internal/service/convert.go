package service

import (
	"maps"

	"github.com/mmynk/tabsplit/internal/calculator"
	"github.com/mmynk/tabsplit/internal/ledger"
	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/pkg/api"
)

func toSnapshot(snap ledger.Snapshot) *api.Snapshot {
	out := &api.Snapshot{
		Participants:    make([]api.Participant, len(snap.Participants)),
		Items:           make([]api.Item, len(snap.Items)),
		DiscountPercent: snap.DiscountPercent,
		MemberTotals:    maps.Clone(snap.MemberTotals),
		MemberShares:    make(map[int][]api.Share, len(snap.MemberShares)),
		TotalBill:       snap.TotalBill,
		TotalDiscount:   snap.TotalDiscount,
	}

	for i, p := range snap.Participants {
		out.Participants[i] = api.Participant{ID: p.ID, Name: p.Name}
	}
	for i, item := range snap.Items {
		out.Items[i] = toItem(item)
	}
	for id, shares := range snap.MemberShares {
		out.MemberShares[id] = toShares(shares)
	}
	for _, w := range snap.Warnings {
		out.Warnings = append(out.Warnings, api.Warning{
			ItemID:    w.ItemID,
			ItemName:  w.ItemName,
			Allocated: w.Allocated,
			Total:     w.Total,
		})
	}

	return out
}

func toItem(item models.Item) api.Item {
	consumers := make([]int, len(item.Consumers))
	copy(consumers, item.Consumers)

	out := api.Item{
		ID:             item.ID,
		Name:           item.Name,
		Price:          item.Price,
		Consumers:      consumers,
		TotalPortions:  item.TotalPortions(),
		DiscountExempt: item.DiscountExempt,
	}
	if split, ok := item.Split.(models.WeightedSplit); ok {
		out.Portions = maps.Clone(map[int]int(split.Weights))
	}
	return out
}

func toShares(shares []calculator.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{
			ItemID:        s.ItemID,
			ItemName:      s.ItemName,
			Amount:        s.Amount,
			Portions:      s.Portions,
			OriginalPrice: s.OriginalPrice,
			Discounted:    s.Discounted,
		}
	}
	return out
}
