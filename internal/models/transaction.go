package models

// Split modes for a transaction.
const (
	SplitModeEqual    = "equal"
	SplitModeExact    = "exact"
	SplitModeShares   = "shares"
	SplitModeItemized = "itemized"
)

// Transaction is an expense paid by one member and owed by the split members.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GroupID is the group this transaction belongs to.
	GroupID string

	// Description is what the money was spent on.
	Description string

	// PayerID is the member who paid.
	PayerID string

	// Amount is what the payer spent, in minor units. Settlement uses the
	// sum of Splits instead; Amount is kept for display.
	Amount int64

	// SplitMode records how Splits were derived (equal, exact, shares, itemized).
	SplitMode string

	// Splits are the per-member owed amounts.
	Splits []Split

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this transaction.
	CreatedBy string

	// DeletedAt is the Unix timestamp of soft deletion, 0 if live.
	DeletedAt int64
}

// Split is one member's owed share of a transaction.
type Split struct {
	UserID string
	Amount int64
}
