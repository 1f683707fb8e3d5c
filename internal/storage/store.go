// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for settleup storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	TransactionStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their members.
type GroupStore interface {
	// CreateGroup persists a new group. ID and CreatedAt are filled in if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns every group, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsByMember returns the groups userID belongs to, newest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup replaces name, kind and members of an existing group.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group along with its transactions and settlements.
	DeleteGroup(ctx context.Context, groupID string) error
}

// TransactionStore persists expenses and their splits.
type TransactionStore interface {
	// CreateTransaction persists a transaction and its splits atomically.
	// newMembers are added to the transaction's group in the same write,
	// ignoring ones already present.
	CreateTransaction(ctx context.Context, txn *models.Transaction, newMembers ...models.Member) error

	// GetTransaction retrieves a transaction, including soft-deleted ones.
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)

	// ListTransactionsByGroup returns live transactions of a group in the
	// order they were recorded.
	ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error)

	// DeleteTransaction soft-deletes a transaction.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// SettlementStore persists recorded payments.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
}
