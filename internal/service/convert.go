package service

import (
	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/settlement"
)

func toAPIUser(user *models.User) *api.User {
	return &api.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

func toAPIGroup(group *models.Group) *api.Group {
	members := make([]api.Member, len(group.Members))
	for i, m := range group.Members {
		members[i] = api.Member{UserID: m.UserID, Name: m.Name}
	}
	return &api.Group{
		ID:        group.ID,
		Name:      group.Name,
		Kind:      group.Kind,
		Members:   members,
		CreatedAt: group.CreatedAt,
	}
}

func toAPITransaction(txn *models.Transaction, group *models.Group) *api.Transaction {
	splits := make([]api.Split, len(txn.Splits))
	for i, s := range txn.Splits {
		splits[i] = api.Split{
			UserID: s.UserID,
			Name:   group.MemberName(s.UserID),
			Amount: money.Decimal(s.Amount),
		}
	}
	return &api.Transaction{
		ID:          txn.ID,
		GroupID:     txn.GroupID,
		Description: txn.Description,
		PayerID:     txn.PayerID,
		PayerName:   group.MemberName(txn.PayerID),
		Amount:      money.Decimal(txn.Amount),
		SplitMode:   txn.SplitMode,
		Splits:      splits,
		CreatedAt:   txn.CreatedAt,
		CreatedBy:   txn.CreatedBy,
		Deleted:     txn.DeletedAt != 0,
	}
}

func toAPISettlement(s *models.Settlement, group *models.Group) *api.Settlement {
	return &api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		FromName:   group.MemberName(s.FromUserID),
		ToUserID:   s.ToUserID,
		ToName:     group.MemberName(s.ToUserID),
		Amount:     money.Decimal(s.Amount),
		Note:       s.Note,
		CreatedAt:  s.CreatedAt,
		CreatedBy:  s.CreatedBy,
	}
}

func toAPIBalances(balances []settlement.Balance) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{
			UserID:  b.UserID,
			Name:    b.Name,
			Paid:    money.Decimal(b.Paid),
			Owes:    money.Decimal(b.Owes),
			Balance: money.Decimal(b.Balance),
		}
	}
	return out
}

func toAPITransfers(transfers []settlement.Transfer) []api.Transfer {
	out := make([]api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = api.Transfer{
			FromID:   t.FromID,
			FromName: t.FromName,
			ToID:     t.ToID,
			ToName:   t.ToName,
			Amount:   money.Decimal(t.Amount),
		}
	}
	return out
}

// engineTransactions converts stored transactions into engine input with
// display names taken from group membership.
func engineTransactions(txns []*models.Transaction, group *models.Group) []settlement.Transaction {
	out := make([]settlement.Transaction, len(txns))
	for i, txn := range txns {
		splits := make([]settlement.Split, len(txn.Splits))
		for j, s := range txn.Splits {
			splits[j] = settlement.Split{
				UserID:   s.UserID,
				UserName: group.MemberName(s.UserID),
				Amount:   s.Amount,
			}
		}
		out[i] = settlement.Transaction{
			PayerID:   txn.PayerID,
			PayerName: group.MemberName(txn.PayerID),
			Splits:    splits,
		}
	}
	return out
}
