// Package settlement computes net balances and a transfer plan for a set of
// shared-expense transactions.
//
// All amounts are int64 minor currency units (e.g. paise). Every function in
// this package is pure: results depend only on the arguments, so callers may
// run computations for different scopes concurrently.
package settlement

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNegativeAmount is returned when a split carries a negative amount.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrUnbalanced is returned when balances do not sum to zero, which means
	// the transactions handed to the engine were inconsistent.
	ErrUnbalanced = errors.New("balances do not sum to zero")
)

// Split is one user's owed share of a transaction.
type Split struct {
	UserID   string
	UserName string
	Amount   int64
}

// Transaction is an expense paid by one user and owed by the split users.
type Transaction struct {
	PayerID   string
	PayerName string
	Splits    []Split
}

// Account holds the running totals for one participant.
type Account struct {
	UserID string
	Name   string
	Paid   int64
	Owes   int64
}

// Balance is a participant's net position. Positive = owed money, negative = owes money.
type Balance struct {
	UserID  string
	Name    string
	Paid    int64
	Owes    int64
	Balance int64
}

// Transfer is a payment instruction from a debtor to a creditor.
type Transfer struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Amount   int64
}

// Result is the full settlement for one scope.
type Result struct {
	Balances     []Balance
	Transfers    []Transfer
	TotalSpent   int64
	PerPersonAvg int64
}

// Accumulate totals what each participant paid and owes.
//
// The payer is credited with the sum of the transaction's splits; a separately
// stored transaction amount is never consulted. Accounts are returned in order
// of first appearance, the payer of a transaction before its split users.
func Accumulate(txns []Transaction) ([]Account, error) {
	index := make(map[string]int)
	var accounts []Account

	account := func(id, name string) *Account {
		if i, ok := index[id]; ok {
			return &accounts[i]
		}
		index[id] = len(accounts)
		accounts = append(accounts, Account{UserID: id, Name: name})
		return &accounts[len(accounts)-1]
	}

	for i, txn := range txns {
		var total int64
		for _, s := range txn.Splits {
			if s.Amount < 0 {
				return nil, fmt.Errorf("transaction %d, user %s: %w", i, s.UserID, ErrNegativeAmount)
			}
			total += s.Amount
		}

		account(txn.PayerID, txn.PayerName).Paid += total

		for _, s := range txn.Splits {
			account(s.UserID, s.UserName).Owes += s.Amount
		}
	}

	return accounts, nil
}

// DeriveBalances computes net balances sorted largest creditor first.
// Ties keep the order of accounts.
func DeriveBalances(accounts []Account) []Balance {
	balances := make([]Balance, len(accounts))
	for i, a := range accounts {
		balances[i] = Balance{
			UserID:  a.UserID,
			Name:    a.Name,
			Paid:    a.Paid,
			Owes:    a.Owes,
			Balance: a.Paid - a.Owes,
		}
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Balance > balances[j].Balance
	})
	return balances
}

// TotalSpent sums what every participant paid.
func TotalSpent(balances []Balance) int64 {
	var total int64
	for _, b := range balances {
		total += b.Paid
	}
	return total
}

// position is a creditor or debtor with the amount still to be settled.
type position struct {
	id        string
	name      string
	remaining int64
}

// MinimizeTransfers matches debtors with creditors, largest first.
//
// This is a greedy heuristic; it does not guarantee the minimum number of
// transfers. If one side runs out while the other still has an amount left,
// the balances did not sum to zero and ErrUnbalanced is returned.
func MinimizeTransfers(balances []Balance) ([]Transfer, error) {
	var creditors, debtors []position
	for _, b := range balances {
		switch {
		case b.Balance > 0:
			creditors = append(creditors, position{id: b.UserID, name: b.Name, remaining: b.Balance})
		case b.Balance < 0:
			debtors = append(debtors, position{id: b.UserID, name: b.Name, remaining: -b.Balance})
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].remaining > creditors[j].remaining })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].remaining > debtors[j].remaining })

	transfers := []Transfer{}
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		creditor := &creditors[ci]
		debtor := &debtors[di]

		amount := min(creditor.remaining, debtor.remaining)
		if amount > 0 {
			transfers = append(transfers, Transfer{
				FromID:   debtor.id,
				FromName: debtor.name,
				ToID:     creditor.id,
				ToName:   creditor.name,
				Amount:   amount,
			})
		}

		creditor.remaining -= amount
		debtor.remaining -= amount

		if creditor.remaining == 0 {
			ci++
		}
		if debtor.remaining == 0 {
			di++
		}
	}

	if ci < len(creditors) || di < len(debtors) {
		return nil, fmt.Errorf("%w: %d credit and %d debt left unmatched",
			ErrUnbalanced, leftover(creditors[ci:]), leftover(debtors[di:]))
	}

	return transfers, nil
}

func leftover(positions []position) int64 {
	var total int64
	for _, p := range positions {
		total += p.remaining
	}
	return total
}

// Compute runs the full pipeline: accumulate, derive balances, minimize transfers.
func Compute(txns []Transaction) (Result, error) {
	accounts, err := Accumulate(txns)
	if err != nil {
		return Result{}, err
	}

	balances := DeriveBalances(accounts)

	transfers, err := MinimizeTransfers(balances)
	if err != nil {
		return Result{}, err
	}

	total := TotalSpent(balances)
	return Result{
		Balances:     balances,
		Transfers:    transfers,
		TotalSpent:   total,
		PerPersonAvg: roundDiv(total, int64(len(balances))),
	}, nil
}

// roundDiv divides rounding half away from zero. Returns 0 when n is 0.
func roundDiv(total, n int64) int64 {
	if n <= 0 {
		return 0
	}
	if total < 0 {
		return -((-total*2 + n) / (2 * n))
	}
	return (total*2 + n) / (2 * n)
}
