package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// TransactionService implements the Connect TransactionService.
type TransactionService struct {
	store  storage.Store
	logger *slog.Logger
}

var _ api.TransactionServiceHandler = (*TransactionService)(nil)

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Store, logger *slog.Logger) *TransactionService {
	return &TransactionService{store: store, logger: logger}
}

// CreateTransaction records an expense. The payer defaults to the caller.
// Payer and split members missing from the group are added to it.
func (s *TransactionService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	s.logger.Info("CreateTransaction request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"split_mode", req.Msg.SplitMode,
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		s.logger.Warn("CreateTransaction rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	split, err := resolveSplit(req.Msg.SplitInput)
	if err != nil {
		s.logger.Warn("CreateTransaction invalid split", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	payerID := strings.TrimSpace(req.Msg.PayerID)
	if payerID == "" {
		payerID = userID
	}

	description := strings.TrimSpace(req.Msg.Description)
	if description == "" {
		description = describe(req.Msg.Items)
	}

	txn := &models.Transaction{
		GroupID:     group.ID,
		Description: description,
		PayerID:     payerID,
		Amount:      split.Total,
		SplitMode:   split.Mode,
		Splits:      split.Splits,
		CreatedBy:   userID,
	}

	newMembers, err := s.missingMembers(ctx, group, txn)
	if err != nil {
		s.logger.Error("CreateTransaction failed to resolve members", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateTransaction(ctx, txn, newMembers...); err != nil {
		s.logger.Error("CreateTransaction failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if len(newMembers) > 0 {
		s.logger.Info("Added members to group", "group_id", group.ID, "members_count", len(newMembers))
		group.Members = append(group.Members, newMembers...)
	}

	s.logger.Info("Transaction created",
		"transaction_id", txn.ID,
		"group_id", group.ID,
		"splits_count", len(txn.Splits),
	)
	return connect.NewResponse(&api.CreateTransactionResponse{Transaction: toAPITransaction(txn, group)}), nil
}

// GetTransaction returns a transaction, including soft-deleted ones.
func (s *TransactionService) GetTransaction(ctx context.Context, req *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	s.logger.Info("GetTransaction request received", "transaction_id", req.Msg.TransactionID)

	txn, group, err := s.transactionForCaller(ctx, req.Msg.TransactionID)
	if err != nil {
		s.logger.Warn("GetTransaction failed", "transaction_id", req.Msg.TransactionID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetTransactionResponse{Transaction: toAPITransaction(txn, group)}), nil
}

// ListTransactions returns the live transactions of a group in recorded order.
func (s *TransactionService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	s.logger.Info("ListTransactions request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	txns, err := s.store.ListTransactionsByGroup(ctx, group.ID)
	if err != nil {
		s.logger.Error("ListTransactions failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Transaction, len(txns))
	for i, txn := range txns {
		out[i] = toAPITransaction(txn, group)
	}

	s.logger.Info("ListTransactions successful", "group_id", group.ID, "count", len(out))
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: out}), nil
}

// DeleteTransaction soft-deletes a transaction so it no longer counts
// towards balances.
func (s *TransactionService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	s.logger.Info("DeleteTransaction request received", "transaction_id", req.Msg.TransactionID)

	txn, _, err := s.transactionForCaller(ctx, req.Msg.TransactionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.DeleteTransaction(ctx, txn.ID); err != nil {
		s.logger.Warn("DeleteTransaction failed", "transaction_id", txn.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Transaction deleted", "transaction_id", txn.ID, "group_id", txn.GroupID)
	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}

// PreviewSplit computes splits without storing anything.
func (s *TransactionService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	s.logger.Debug("PreviewSplit request received",
		"amount", req.Msg.Amount,
		"split_mode", req.Msg.SplitMode,
	)

	split, err := resolveSplit(req.Msg.SplitInput)
	if err != nil {
		return nil, toConnectError(err)
	}

	splits := make([]api.Split, len(split.Splits))
	for i, sp := range split.Splits {
		splits[i] = api.Split{UserID: sp.UserID, Amount: money.Decimal(sp.Amount)}
	}
	return connect.NewResponse(&api.PreviewSplitResponse{Splits: splits, Breakdown: split.Breakdown}), nil
}

func (s *TransactionService) transactionForCaller(ctx context.Context, transactionID string) (*models.Transaction, *models.Group, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, nil, err
	}
	if transactionID == "" {
		return nil, nil, invalidArgument("transaction_id required")
	}

	txn, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, nil, err
	}
	group, err := groupForMember(ctx, s.store, txn.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return txn, group, nil
}

// missingMembers returns the payer and split members of txn that are not
// in the group yet, with names resolved from registered users.
func (s *TransactionService) missingMembers(ctx context.Context, group *models.Group, txn *models.Transaction) ([]models.Member, error) {
	var missing []api.Member
	seen := make(map[string]bool)
	check := func(id string) {
		if !group.HasMember(id) && !seen[id] {
			seen[id] = true
			missing = append(missing, api.Member{UserID: id})
		}
	}
	check(txn.PayerID)
	for _, split := range txn.Splits {
		check(split.UserID)
	}
	if len(missing) == 0 {
		return nil, nil
	}

	return resolveMembers(ctx, s.store, missing[0].UserID, missing)
}
