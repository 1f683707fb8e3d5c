package service

import (
	"fmt"
	"strings"

	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/settlement"
)

// resolvedSplit is the outcome of dividing a transaction total.
type resolvedSplit struct {
	Mode      string
	Total     int64
	Splits    []models.Split
	Breakdown []api.PersonBreakdown
}

// resolveSplit divides the total of in according to its split mode.
func resolveSplit(in api.SplitInput) (*resolvedSplit, error) {
	total, err := money.Parse(in.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}

	mode := in.SplitMode
	if mode == "" {
		mode = models.SplitModeEqual
	}
	out := &resolvedSplit{Mode: mode, Total: total}

	switch mode {
	case models.SplitModeEqual:
		participants, err := uniqueIDs(in.Participants)
		if err != nil {
			return nil, err
		}
		if len(participants) == 0 {
			return nil, settlement.ErrNoParticipants
		}
		for i, amount := range settlement.SplitEqually(total, len(participants)) {
			out.Splits = append(out.Splits, models.Split{UserID: participants[i], Amount: amount})
		}

	case models.SplitModeExact:
		ids := make([]string, len(in.Splits))
		amounts := make([]int64, len(in.Splits))
		for i, s := range in.Splits {
			ids[i] = s.UserID
			if amounts[i], err = money.Parse(s.Amount); err != nil {
				return nil, fmt.Errorf("split for %s: %w", s.UserID, err)
			}
		}
		if ids, err = uniqueIDs(ids); err != nil {
			return nil, err
		}
		if err := settlement.ValidateExact(total, amounts); err != nil {
			return nil, err
		}
		for i, id := range ids {
			out.Splits = append(out.Splits, models.Split{UserID: id, Amount: amounts[i]})
		}

	case models.SplitModeShares:
		ids := make([]string, len(in.Shares))
		weights := make([]int64, len(in.Shares))
		for i, s := range in.Shares {
			ids[i] = s.UserID
			weights[i] = s.Weight
		}
		if ids, err = uniqueIDs(ids); err != nil {
			return nil, err
		}
		amounts, err := settlement.SplitByWeights(total, weights)
		if err != nil {
			return nil, err
		}
		for i, id := range ids {
			out.Splits = append(out.Splits, models.Split{UserID: id, Amount: amounts[i]})
		}

	case models.SplitModeItemized:
		if err := resolveItemized(in, out); err != nil {
			return nil, err
		}

	default:
		return nil, invalidArgument("unknown split mode %q", mode)
	}

	return out, nil
}

func resolveItemized(in api.SplitInput, out *resolvedSplit) error {
	items := make([]settlement.Item, len(in.Items))
	for i, item := range in.Items {
		amount, err := money.Parse(item.Amount)
		if err != nil {
			return fmt.Errorf("item %q: %w", item.Description, err)
		}
		items[i] = settlement.Item{Description: item.Description, Amount: amount, AssignedTo: item.AssignedTo}
	}

	// Without an explicit list, participants are everyone an item names.
	names := in.Participants
	if len(names) == 0 {
		seen := make(map[string]bool)
		for _, item := range in.Items {
			for _, id := range item.AssignedTo {
				if !seen[id] {
					seen[id] = true
					names = append(names, id)
				}
			}
		}
	}
	participants, err := uniqueIDs(names)
	if err != nil {
		return err
	}

	splits, err := settlement.SplitItemized(items, out.Total, participants)
	if err != nil {
		return err
	}

	for _, id := range participants {
		ps := splits[id]
		out.Splits = append(out.Splits, models.Split{UserID: id, Amount: ps.Total})

		shares := make([]api.ItemShare, len(ps.Items))
		for i, item := range ps.Items {
			shares[i] = api.ItemShare{Description: item.Description, Amount: money.Decimal(item.Amount)}
		}
		out.Breakdown = append(out.Breakdown, api.PersonBreakdown{
			UserID:   id,
			Subtotal: money.Decimal(ps.Subtotal),
			Tax:      money.Decimal(ps.Tax),
			Total:    money.Decimal(ps.Total),
			Items:    shares,
		})
	}
	return nil
}

// uniqueIDs trims ids and rejects empty or repeated ones.
func uniqueIDs(ids []string) ([]string, error) {
	out := make([]string, len(ids))
	seen := make(map[string]bool, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, invalidArgument("participant user_id required")
		}
		if seen[id] {
			return nil, invalidArgument("duplicate participant %s", id)
		}
		seen[id] = true
		out[i] = id
	}
	return out, nil
}

// describe generates a description for an itemized transaction without one.
func describe(items []api.Item) string {
	switch len(items) {
	case 0:
		return "Expense"
	case 1:
		return items[0].Description
	default:
		return fmt.Sprintf("%s + %d more", items[0].Description, len(items)-1)
	}
}
