package settlement

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"
)

var (
	ErrNoParticipants     = errors.New("must have at least one participant")
	ErrSplitMismatch      = errors.New("split amounts must add up to the total")
	ErrZeroWeight         = errors.New("weights must not all be zero")
	ErrUnknownParticipant = errors.New("item assigned to someone who is not a participant")
	ErrTotalBelowItems    = errors.New("total is less than the sum of items")
	ErrWeightTooLarge     = errors.New("weights add up to more than the maximum")
)

// SplitEqually divides total into n parts that differ by at most one unit.
// The first total mod n parts receive the extra unit, so the parts always
// add up to total. Returns an empty slice when n <= 0.
func SplitEqually(total int64, n int) []int64 {
	if n <= 0 {
		return []int64{}
	}

	count := int64(n)
	base := total / count
	if total%count != 0 && total < 0 {
		base--
	}
	remainder := total - base*count

	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
		if int64(i) < remainder {
			parts[i]++
		}
	}
	return parts
}

// SplitByWeights apportions total in proportion to weights using the largest
// remainder method. Parts add up to total exactly; leftover units go to the
// largest fractional remainders, earlier entries first on ties.
func SplitByWeights(total int64, weights []int64) ([]int64, error) {
	if len(weights) == 0 {
		return nil, ErrNoParticipants
	}
	if total < 0 {
		return nil, fmt.Errorf("total %d: %w", total, ErrNegativeAmount)
	}

	var sum int64
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("weight %d: %w", i, ErrNegativeAmount)
		}
		if w > math.MaxInt64-sum {
			return nil, ErrWeightTooLarge
		}
		sum += w
	}
	if sum == 0 {
		if total == 0 {
			return make([]int64, len(weights)), nil
		}
		return nil, ErrZeroWeight
	}

	parts := make([]int64, len(weights))
	remainders := make([]int64, len(weights))
	var assigned int64
	for i, w := range weights {
		// total*w needs 128 bits; the quotient is at most total since w <= sum.
		hi, lo := bits.Mul64(uint64(total), uint64(w))
		quo, rem := bits.Div64(hi, lo, uint64(sum))
		parts[i] = int64(quo)
		remainders[i] = int64(rem)
		assigned += parts[i]
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	for k := int64(0); k < total-assigned; k++ {
		parts[order[k]]++
	}
	return parts, nil
}

// ValidateExact checks caller-provided split amounts against the total.
func ValidateExact(total int64, amounts []int64) error {
	if len(amounts) == 0 {
		return ErrNoParticipants
	}
	for i, a := range amounts {
		if a < 0 {
			return fmt.Errorf("split %d: %w", i, ErrNegativeAmount)
		}
	}
	var sum int64
	for _, a := range amounts {
		if a > total-sum {
			return fmt.Errorf("%w: splits exceed total %d", ErrSplitMismatch, total)
		}
		sum += a
	}
	if sum != total {
		return fmt.Errorf("%w: splits add up to %d, total is %d", ErrSplitMismatch, sum, total)
	}
	return nil
}

// Item is a line item assigned to one or more participants.
// An item with no assignees is shared by every participant.
type Item struct {
	Description string
	Amount      int64
	AssignedTo  []string
}

// PersonItem is one person's share of an item.
type PersonItem struct {
	Description string
	Amount      int64
}

// PersonSplit is the calculated itemized share for one person.
type PersonSplit struct {
	Subtotal int64
	Tax      int64
	Total    int64
	Items    []PersonItem
}

// SplitItemized computes how much each participant owes for an itemized bill.
//
// Each item is split equally among its assignees. Whatever the total carries
// above the item subtotal (tax, tip, fees) is shared in proportion to each
// person's item subtotal. With no items the total is split equally.
// The per-person totals always add up to total.
func SplitItemized(items []Item, total int64, participants []string) (map[string]*PersonSplit, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if total < 0 {
		return nil, fmt.Errorf("total %d: %w", total, ErrNegativeAmount)
	}

	splits := make(map[string]*PersonSplit, len(participants))
	for _, p := range participants {
		splits[p] = &PersonSplit{}
	}

	if len(items) == 0 {
		for i, share := range SplitEqually(total, len(participants)) {
			split := splits[participants[i]]
			split.Subtotal = share
			split.Total = share
		}
		return splits, nil
	}

	var subtotal int64
	for _, item := range items {
		if item.Amount < 0 {
			return nil, fmt.Errorf("item %q: %w", item.Description, ErrNegativeAmount)
		}
		if item.Amount > total-subtotal {
			return nil, fmt.Errorf("%w: total %d, items exceed it at %q", ErrTotalBelowItems, total, item.Description)
		}

		assignees := item.AssignedTo
		if len(assignees) == 0 {
			assignees = participants
		}

		for i, share := range SplitEqually(item.Amount, len(assignees)) {
			split, ok := splits[assignees[i]]
			if !ok {
				return nil, fmt.Errorf("item %q, %s: %w", item.Description, assignees[i], ErrUnknownParticipant)
			}
			split.Subtotal += share
			split.Items = append(split.Items, PersonItem{Description: item.Description, Amount: share})
		}
		subtotal += item.Amount
	}

	extra := total - subtotal

	weights := make([]int64, len(participants))
	for i, p := range participants {
		weights[i] = splits[p].Subtotal
	}
	taxes, err := SplitByWeights(extra, weights)
	if err != nil {
		return nil, fmt.Errorf("failed to distribute tax: %w", err)
	}

	for i, p := range participants {
		split := splits[p]
		split.Tax = taxes[i]
		split.Total = split.Subtotal + split.Tax
	}

	return splits, nil
}
