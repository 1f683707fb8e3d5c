package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/internal/storage"
)

// Summary is the settlement state of a group: the computed balances and
// transfers plus the payments members have recorded so far.
type Summary struct {
	Group    *models.Group
	Result   settlement.Result
	Recorded []*models.Settlement
}

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store   storage.Store
	metrics *metrics.Recorder
	logger  *slog.Logger
}

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a new SettlementService. recorder may be nil.
func NewSettlementService(store storage.Store, recorder *metrics.Recorder, logger *slog.Logger) *SettlementService {
	return &SettlementService{store: store, metrics: recorder, logger: logger}
}

// Summarize computes the settlement of a group from its live transactions.
func (s *SettlementService) Summarize(ctx context.Context, groupID string) (*Summary, error) {
	start := time.Now()
	summary, err := s.summarize(ctx, groupID)

	result := metrics.ResultSuccess
	transfers := 0
	switch {
	case errors.Is(err, settlement.ErrUnbalanced):
		result = metrics.ResultUnbalanced
	case err != nil:
		result = metrics.ResultError
	default:
		transfers = len(summary.Result.Transfers)
	}
	s.metrics.ObserveCompute(result, transfers, time.Since(start))

	return summary, err
}

// SummarizeForMember checks that userID belongs to the group before
// computing its settlement.
func (s *SettlementService) SummarizeForMember(ctx context.Context, groupID, userID string) (*Summary, error) {
	if _, err := groupForMember(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}
	return s.Summarize(ctx, groupID)
}

func (s *SettlementService) summarize(ctx context.Context, groupID string) (*Summary, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	txns, err := s.store.ListTransactionsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	result, err := settlement.Compute(engineTransactions(txns, group))
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", groupID, err)
	}

	recorded, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &Summary{Group: group, Result: result, Recorded: recorded}, nil
}

// GetSettlement returns balances, suggested transfers and recorded
// settlements of a group the caller belongs to.
func (s *SettlementService) GetSettlement(ctx context.Context, req *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	s.logger.Info("GetSettlement request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	summary, err := s.SummarizeForMember(ctx, req.Msg.GroupID, userID)
	if err != nil {
		s.logger.Warn("GetSettlement failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	recorded := make([]*api.Settlement, len(summary.Recorded))
	for i, r := range summary.Recorded {
		recorded[i] = toAPISettlement(r, summary.Group)
	}

	s.logger.Info("GetSettlement successful",
		"group_id", req.Msg.GroupID,
		"members_count", len(summary.Result.Balances),
		"transfers_count", len(summary.Result.Transfers),
	)
	return connect.NewResponse(&api.GetSettlementResponse{
		GroupID:      summary.Group.ID,
		Balances:     toAPIBalances(summary.Result.Balances),
		Transfers:    toAPITransfers(summary.Result.Transfers),
		TotalSpent:   money.Decimal(summary.Result.TotalSpent),
		PerPersonAvg: money.Decimal(summary.Result.PerPersonAvg),
		Recorded:     recorded,
	}), nil
}

// RecordSettlement stores a payment from one member to another.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	s.logger.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromUserID,
		"to", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	record, err := newSettlement(group, req.Msg, userID)
	if err != nil {
		s.logger.Warn("RecordSettlement rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateSettlement(ctx, record); err != nil {
		s.logger.Error("RecordSettlement failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ObserveSettlement(record.Amount)

	s.logger.Info("Settlement recorded", "settlement_id", record.ID, "group_id", group.ID)
	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(record, group)}), nil
}

// DeleteSettlement removes a recorded settlement.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	s.logger.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if req.Msg.SettlementID == "" {
		return nil, toConnectError(invalidArgument("settlement_id required"))
	}

	record, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := groupForMember(ctx, s.store, record.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.DeleteSettlement(ctx, record.ID); err != nil {
		s.logger.Error("DeleteSettlement failed", "settlement_id", record.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Settlement deleted", "settlement_id", record.ID, "group_id", record.GroupID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

func newSettlement(group *models.Group, req *api.RecordSettlementRequest, createdBy string) (*models.Settlement, error) {
	from := strings.TrimSpace(req.FromUserID)
	to := strings.TrimSpace(req.ToUserID)
	if from == "" || to == "" {
		return nil, invalidArgument("from and to required")
	}
	if from == to {
		return nil, invalidArgument("cannot settle with yourself")
	}
	for _, id := range []string{from, to} {
		if !group.HasMember(id) {
			return nil, invalidArgument("%s is not a member of the group", id)
		}
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	if amount == 0 {
		return nil, invalidArgument("amount must be positive")
	}

	return &models.Settlement{
		GroupID:    group.ID,
		FromUserID: from,
		ToUserID:   to,
		Amount:     amount,
		CreatedBy:  createdBy,
		Note:       strings.TrimSpace(req.Note),
	}, nil
}
