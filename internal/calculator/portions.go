package calculator

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/mmynk/tabsplit/internal/models"
)

// minPortion is the weight below which reductions never push a consumer.
const minPortion = 1

// ErrNoAdjustableConsumers is returned when a manual weight would overflow the
// item's total and no other consumer can give up a portion.
var ErrNoAdjustableConsumers = errors.New("no other consumer can give up portions")

// DistributeEvenly spreads total portions over consumers.
// Every consumer gets floor(total / n); the last consumer absorbs the remainder,
// so the weights always sum to total.
func DistributeEvenly(consumers []int, total int) models.Portions {
	weights := make(models.Portions, len(consumers))
	if len(consumers) == 0 {
		return weights
	}

	base := total / len(consumers)
	for _, id := range consumers {
		weights[id] = base
	}
	last := consumers[len(consumers)-1]
	weights[last] = total - base*(len(consumers)-1)
	return weights
}

// ToggleConsumer adds the participant to the item's consumers, or removes them
// if they already consume it, and returns the updated copy.
//
// Adding to a weighted item redistributes every weight from scratch over the new
// consumer order. Removing only drops the participant's weight; the rest are left
// as they are, so the item may end up under-allocated.
func ToggleConsumer(item models.Item, participantID int) models.Item {
	out := item.Clone()

	if idx := slices.Index(out.Consumers, participantID); idx >= 0 {
		out.Consumers = slices.Delete(out.Consumers, idx, idx+1)
		if w, ok := out.Split.(models.WeightedSplit); ok {
			delete(w.Weights, participantID)
		}
		return out
	}

	out.Consumers = append(out.Consumers, participantID)
	if w, ok := out.Split.(models.WeightedSplit); ok {
		out.Split = models.WeightedSplit{
			Total:   w.Total,
			Weights: DistributeEvenly(out.Consumers, w.Total),
		}
	}
	return out
}

// RemoveConsumer drops the participant from the item without touching the
// remaining weights. Items the participant does not consume are returned as is.
func RemoveConsumer(item models.Item, participantID int) models.Item {
	if !item.HasConsumer(participantID) {
		return item
	}
	return ToggleConsumer(item, participantID)
}

// Resize changes the number of portions an item is cut into.
//
//   - to 1: the item falls back to an equal split
//   - from an equal split: total is distributed evenly over consumers
//   - between weighted totals: over-allocated weights are scaled down
//     (floored, never below 1) and any shortfall is handed out one portion at a
//     time in ascending participant ID order
func Resize(item models.Item, total int) models.Item {
	total = max(1, total)
	out := item.Clone()

	current, weighted := out.Split.(models.WeightedSplit)
	switch {
	case total == 1:
		out.Split = models.EqualSplit{}
		return out
	case !weighted:
		out.Split = models.WeightedSplit{
			Total:   total,
			Weights: DistributeEvenly(out.Consumers, total),
		}
		return out
	case current.Total == total:
		return out
	}

	weights := current.Weights
	if weights == nil {
		weights = models.Portions{}
	}
	if allocated := weights.Sum(); allocated > total {
		scale := float64(total) / float64(allocated)
		for _, id := range weights.Keys() {
			weights[id] = max(minPortion, int(math.Floor(float64(weights[id])*scale)))
		}
	}
	fillShortfall(weights, total)

	out.Split = models.WeightedSplit{Total: total, Weights: weights}
	return out
}

// fillShortfall adds one portion at a time, cycling through participants in
// ascending ID order, until the weights sum to total.
func fillShortfall(weights models.Portions, total int) {
	keys := weights.Keys()
	if len(keys) == 0 {
		return
	}
	deficit := total - weights.Sum()
	for i := 0; i < deficit; i++ {
		weights[keys[i%len(keys)]]++
	}
}

// SetMemberPortion assigns weight portions of a weighted item to one consumer.
//
// The requested weight always wins for that consumer (clamped to [0, total]).
// If the item would then be over-allocated, the excess is taken from the other
// consumers with ReduceExcess. When no other consumer can give anything up the
// item is returned unchanged together with ErrNoAdjustableConsumers.
//
// Items in equal-split mode and participants that do not consume the item are
// returned unchanged.
func SetMemberPortion(item models.Item, participantID, weight int) (models.Item, error) {
	split, ok := item.Split.(models.WeightedSplit)
	if !ok || !item.HasConsumer(participantID) {
		return item, nil
	}

	weight = min(max(0, weight), split.Total)
	weights := split.Weights.Clone()
	weights[participantID] = weight

	if excess := weights.Sum() - split.Total; excess > 0 {
		reduced, _, err := ReduceExcess(weights, participantID, excess)
		if err != nil {
			return item, fmt.Errorf("set %d of %d portions for participant %d: %w",
				weight, split.Total, participantID, err)
		}
		weights = reduced
	}

	out := item.Clone()
	out.Split = models.WeightedSplit{Total: split.Total, Weights: weights}
	return out, nil
}

type adjustable struct {
	id     int
	weight int
}

// ReduceExcess removes excess portions from every consumer except the given one.
//
// Only consumers holding more than one portion can give anything up. They are
// visited largest first (ties by ascending ID):
//  1. proportional pass: each gives min(remaining, floor(weight / adjustable_total × excess))
//  2. greedy pass: one portion at a time, round-robin, while anyone is above 1
//
// No weight is pushed below 1, so the returned remainder may be non-zero.
// ErrNoAdjustableConsumers is returned if nobody can be reduced at all.
func ReduceExcess(weights models.Portions, except, excess int) (models.Portions, int, error) {
	out := weights.Clone()
	if excess <= 0 {
		return out, 0, nil
	}

	var candidates []adjustable
	totalAdjustable := 0
	for id, w := range weights {
		if id == except || w <= minPortion {
			continue
		}
		candidates = append(candidates, adjustable{id: id, weight: w})
		totalAdjustable += w
	}
	if len(candidates) == 0 {
		return out, excess, ErrNoAdjustableConsumers
	}

	slices.SortFunc(candidates, func(a, b adjustable) int {
		if a.weight != b.weight {
			return b.weight - a.weight
		}
		return a.id - b.id
	})

	remaining := excess
	for _, c := range candidates {
		if remaining <= 0 {
			break
		}
		reduce := min(remaining, c.weight*excess/totalAdjustable, out[c.id]-minPortion)
		if reduce > 0 {
			out[c.id] -= reduce
			remaining -= reduce
		}
	}

	for remaining > 0 {
		progressed := false
		for _, c := range candidates {
			if remaining <= 0 {
				break
			}
			if out[c.id] > minPortion {
				out[c.id]--
				remaining--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	return out, remaining, nil
}
