package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/internal/storage"
)

func TestGetSettlement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "a", "b", "c", "d")

	env.addExpense(t, group.ID, "a", "90.00", "a", "b", "c")
	_, err := env.transactions.CreateTransaction(ctx, as("b", &api.CreateTransactionRequest{
		GroupID:     group.ID,
		Description: "Fuel",
		SplitInput: api.SplitInput{
			Amount:    "30.00",
			SplitMode: "exact",
			Splits:    []api.Split{{UserID: "d", Amount: "30.00"}},
		},
	}))
	require.NoError(t, err)

	resp, err := env.settlements.GetSettlement(ctx, as("c", &api.GetSettlementRequest{GroupID: group.ID}))
	require.NoError(t, err)

	assert.Equal(t, []api.Balance{
		{UserID: "a", Name: "a", Paid: "90.00", Owes: "30.00", Balance: "60.00"},
		{UserID: "b", Name: "b", Paid: "30.00", Owes: "30.00", Balance: "0.00"},
		{UserID: "c", Name: "c", Paid: "0.00", Owes: "30.00", Balance: "-30.00"},
		{UserID: "d", Name: "d", Paid: "0.00", Owes: "30.00", Balance: "-30.00"},
	}, resp.Msg.Balances)
	assert.Equal(t, []api.Transfer{
		{FromID: "c", FromName: "c", ToID: "a", ToName: "a", Amount: "30.00"},
		{FromID: "d", FromName: "d", ToID: "a", ToName: "a", Amount: "30.00"},
	}, resp.Msg.Transfers)
	assert.Equal(t, "120.00", resp.Msg.TotalSpent)
	assert.Equal(t, "30.00", resp.Msg.PerPersonAvg)
	assert.Empty(t, resp.Msg.Recorded)

	count, err := testutil.GatherAndCount(env.recorder.Registry(), "settleup_settlement_compute_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	t.Run("outsider", func(t *testing.T) {
		_, err := env.settlements.GetSettlement(ctx, as("mallory", &api.GetSettlementRequest{GroupID: group.ID}))
		requireCode(t, connect.CodePermissionDenied, err)
	})

	t.Run("deleted transactions drop out", func(t *testing.T) {
		list, err := env.transactions.ListTransactions(ctx, as("a", &api.ListTransactionsRequest{GroupID: group.ID}))
		require.NoError(t, err)
		_, err = env.transactions.DeleteTransaction(ctx, as("a", &api.DeleteTransactionRequest{TransactionID: list.Msg.Transactions[0].ID}))
		require.NoError(t, err)

		resp, err := env.settlements.GetSettlement(ctx, as("a", &api.GetSettlementRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Equal(t, []api.Transfer{
			{FromID: "d", FromName: "d", ToID: "b", ToName: "b", Amount: "30.00"},
		}, resp.Msg.Transfers)
		assert.Equal(t, "30.00", resp.Msg.TotalSpent)
		assert.Equal(t, "15.00", resp.Msg.PerPersonAvg)
	})
}

func TestGetSettlement_EmptyGroup(t *testing.T) {
	env := setupTestServer(t)
	group := env.createGroup(t, "a", "b")

	resp, err := env.settlements.GetSettlement(context.Background(), as("a", &api.GetSettlementRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Balances)
	assert.Empty(t, resp.Msg.Transfers)
	assert.Equal(t, "0.00", resp.Msg.TotalSpent)
	assert.Equal(t, "0.00", resp.Msg.PerPersonAvg)
}

func TestRecordSettlement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "a", "b")
	env.addExpense(t, group.ID, "a", "100", "a", "b")

	recorded, err := env.settlements.RecordSettlement(ctx, as("b", &api.RecordSettlementRequest{
		GroupID:    group.ID,
		FromUserID: "b",
		ToUserID:   "a",
		Amount:     "50.00",
		Note:       " upi ",
	}))
	require.NoError(t, err)

	record := recorded.Msg.Settlement
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "50.00", record.Amount)
	assert.Equal(t, "upi", record.Note)
	assert.Equal(t, "b", record.CreatedBy)

	resp, err := env.settlements.GetSettlement(ctx, as("a", &api.GetSettlementRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Recorded, 1)
	assert.Equal(t, record, resp.Msg.Recorded[0])
	require.Len(t, resp.Msg.Transfers, 1, "recorded payments do not change the computed plan")

	t.Run("validation", func(t *testing.T) {
		tests := map[string]*api.RecordSettlementRequest{
			"self":        {GroupID: group.ID, FromUserID: "a", ToUserID: "a", Amount: "1"},
			"zero":        {GroupID: group.ID, FromUserID: "b", ToUserID: "a", Amount: "0"},
			"negative":    {GroupID: group.ID, FromUserID: "b", ToUserID: "a", Amount: "-1"},
			"non-member":  {GroupID: group.ID, FromUserID: "b", ToUserID: "zed", Amount: "1"},
			"missing to":  {GroupID: group.ID, FromUserID: "b", Amount: "1"},
			"wraps int64": {GroupID: group.ID, FromUserID: "b", ToUserID: "a", Amount: "92233720368547758.08"},
		}
		for name, req := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := env.settlements.RecordSettlement(ctx, as("a", req))
				requireCode(t, connect.CodeInvalidArgument, err)
			})
		}
	})

	t.Run("delete", func(t *testing.T) {
		_, err := env.settlements.DeleteSettlement(ctx, as("mallory", &api.DeleteSettlementRequest{SettlementID: record.ID}))
		requireCode(t, connect.CodePermissionDenied, err)

		_, err = env.settlements.DeleteSettlement(ctx, as("a", &api.DeleteSettlementRequest{SettlementID: record.ID}))
		require.NoError(t, err)

		_, err = env.settlements.DeleteSettlement(ctx, as("a", &api.DeleteSettlementRequest{SettlementID: record.ID}))
		requireCode(t, connect.CodeNotFound, err)
	})
}

func TestSummarize(t *testing.T) {
	env := setupTestServer(t)
	group := env.createGroup(t, "a", "b")
	env.addExpense(t, group.ID, "b", "10", "a", "b")

	summary, err := env.settlementSv.Summarize(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, summary.Group.ID)
	assert.Equal(t, int64(1000), summary.Result.TotalSpent)
	require.Len(t, summary.Result.Transfers, 1)
	assert.Equal(t, settlement.Transfer{FromID: "a", FromName: "a", ToID: "b", ToName: "b", Amount: 500}, summary.Result.Transfers[0])

	_, err = env.settlementSv.Summarize(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{fmt.Errorf("group x: %w", storage.ErrNotFound), connect.CodeNotFound},
		{fmt.Errorf("group x: %w", ErrNotMember), connect.CodePermissionDenied},
		{auth.ErrMissingToken, connect.CodeUnauthenticated},
		{fmt.Errorf("group x: %w", settlement.ErrUnbalanced), connect.CodeDataLoss},
		{fmt.Errorf("amount: %w", money.ErrTooPrecise), connect.CodeInvalidArgument},
		{settlement.ErrSplitMismatch, connect.CodeInvalidArgument},
		{invalidArgument("bad"), connect.CodeInvalidArgument},
		{connect.NewError(connect.CodeAlreadyExists, errors.New("dup")), connect.CodeAlreadyExists},
		{errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, connect.CodeOf(toConnectError(tt.err)))
		})
	}
}
