package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

const transactionColumns = "id, group_id, description, payer_id, amount, split_mode, created_at, created_by, deleted_at"

// CreateTransaction persists a new transaction and its splits. newMembers
// join the group in the same database transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction, newMembers ...models.Member) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)",
		txn.ID, txn.GroupID, txn.Description, txn.PayerID, txn.Amount, txn.SplitMode, txn.CreatedAt, txn.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := addMembers(ctx, tx, txn.GroupID, newMembers); err != nil {
		return err
	}

	for _, split := range txn.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_splits (transaction_id, user_id, amount) VALUES (?, ?, ?)",
			txn.ID, split.UserID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction with its splits. Soft-deleted
// transactions are returned with DeletedAt set.
func (s *SQLiteStore) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	txn, err := scanTransaction(s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("transaction", transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount FROM transaction_splits WHERE transaction_id = ? ORDER BY rowid",
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		txn.Splits = append(txn.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return txn, nil
}

// ListTransactionsByGroup retrieves live transactions of a group, oldest
// first, each with its splits.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE group_id = ? AND deleted_at = 0
		 ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by group: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	byID := make(map[string]*models.Transaction)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
		byID[txn.ID] = txn
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	rows.Close()

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT s.transaction_id, s.user_id, s.amount FROM transaction_splits s
		 JOIN transactions t ON t.id = s.transaction_id
		 WHERE t.group_id = ? AND t.deleted_at = 0
		 ORDER BY s.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by group: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var transactionID string
		var split models.Split
		if err := splitRows.Scan(&transactionID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if txn, ok := byID[transactionID]; ok {
			txn.Splits = append(txn.Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return txns, nil
}

// DeleteTransaction marks a transaction as deleted. It stays in the
// database but no longer counts towards balances.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET deleted_at = ? WHERE id = ? AND deleted_at = 0",
		time.Now().Unix(), transactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return notFound("transaction", transactionID)
	}
	return nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := row.Scan(
		&txn.ID,
		&txn.GroupID,
		&txn.Description,
		&txn.PayerID,
		&txn.Amount,
		&txn.SplitMode,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return txn, nil
}
