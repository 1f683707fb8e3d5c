package service

import (
	"context"
	"math"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/api"
)

func splitAmounts(splits []api.Split) map[string]string {
	out := make(map[string]string, len(splits))
	for _, s := range splits {
		out[s.UserID] = s.Amount
	}
	return out
}

func TestPreviewSplit(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   api.SplitInput
		want map[string]string
		code connect.Code
	}{
		{
			name: "equal with remainder",
			in:   api.SplitInput{Amount: "100", SplitMode: "equal", Participants: []string{"a", "b", "c"}},
			want: map[string]string{"a": "33.34", "b": "33.33", "c": "33.33"},
		},
		{
			name: "mode defaults to equal",
			in:   api.SplitInput{Amount: "10.00", Participants: []string{"a", "b"}},
			want: map[string]string{"a": "5.00", "b": "5.00"},
		},
		{
			name: "exact",
			in: api.SplitInput{Amount: "50", SplitMode: "exact", Splits: []api.Split{
				{UserID: "a", Amount: "20.50"}, {UserID: "b", Amount: "29.50"},
			}},
			want: map[string]string{"a": "20.50", "b": "29.50"},
		},
		{
			name: "shares",
			in: api.SplitInput{Amount: "100", SplitMode: "shares", Shares: []api.Share{
				{UserID: "a", Weight: 1}, {UserID: "b", Weight: 2},
			}},
			want: map[string]string{"a": "33.33", "b": "66.67"},
		},
		{
			name: "exact mismatch",
			in: api.SplitInput{Amount: "50", SplitMode: "exact", Splits: []api.Split{
				{UserID: "a", Amount: "20"},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "negative amount",
			in:   api.SplitInput{Amount: "-5", Participants: []string{"a"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "too precise",
			in:   api.SplitInput{Amount: "1.001", Participants: []string{"a"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "no participants",
			in:   api.SplitInput{Amount: "10", SplitMode: "equal"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "duplicate participant",
			in:   api.SplitInput{Amount: "10", Participants: []string{"a", "a"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "all zero shares",
			in:   api.SplitInput{Amount: "10", SplitMode: "shares", Shares: []api.Share{{UserID: "a"}}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "huge shares",
			in: api.SplitInput{Amount: "1.00", SplitMode: "shares", Shares: []api.Share{
				{UserID: "a", Weight: 4_000_000_000_000_000_000}, {UserID: "b", Weight: 1},
			}},
			want: map[string]string{"a": "1.00", "b": "0.00"},
		},
		{
			name: "shares overflowing",
			in: api.SplitInput{Amount: "1.00", SplitMode: "shares", Shares: []api.Share{
				{UserID: "a", Weight: math.MaxInt64}, {UserID: "b", Weight: 1},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "amount beyond int64",
			in:   api.SplitInput{Amount: "92233720368547758.08", Participants: []string{"a"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "amount wrapping to one",
			in:   api.SplitInput{Amount: "184467440737095516.17", Participants: []string{"a"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "exponent amount",
			in:   api.SplitInput{Amount: "1e30", Participants: []string{"a"}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown mode",
			in:   api.SplitInput{Amount: "10", SplitMode: "vibes", Participants: []string{"a"}},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.transactions.PreviewSplit(ctx, as("alice", &api.PreviewSplitRequest{SplitInput: tt.in}))
			if tt.code != 0 {
				requireCode(t, tt.code, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, splitAmounts(resp.Msg.Splits))
			assert.Empty(t, resp.Msg.Breakdown)
		})
	}
}

func TestPreviewSplit_Itemized(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.transactions.PreviewSplit(context.Background(), as("alice", &api.PreviewSplitRequest{
		SplitInput: api.SplitInput{
			Amount:    "44.00",
			SplitMode: "itemized",
			Items: []api.Item{
				{Description: "Pizza", Amount: "30.00", AssignedTo: []string{"a", "b"}},
				{Description: "Beer", Amount: "10.00", AssignedTo: []string{"b"}},
			},
		},
	}))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a": "16.50", "b": "27.50"}, splitAmounts(resp.Msg.Splits))
	require.Len(t, resp.Msg.Breakdown, 2)

	b := resp.Msg.Breakdown[1]
	assert.Equal(t, "b", b.UserID)
	assert.Equal(t, "25.00", b.Subtotal)
	assert.Equal(t, "2.50", b.Tax)
	assert.Equal(t, "27.50", b.Total)
	assert.Equal(t, []api.ItemShare{
		{Description: "Pizza", Amount: "15.00"},
		{Description: "Beer", Amount: "10.00"},
	}, b.Items)

	_, err = env.transactions.PreviewSplit(context.Background(), as("alice", &api.PreviewSplitRequest{
		SplitInput: api.SplitInput{
			Amount:    "5.00",
			SplitMode: "itemized",
			Items:     []api.Item{{Description: "Pizza", Amount: "30.00", AssignedTo: []string{"a"}}},
		},
	}))
	requireCode(t, connect.CodeInvalidArgument, err)
}

func TestTransactionLifecycle(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "alice", "bob")

	created, err := env.transactions.CreateTransaction(ctx, as("alice", &api.CreateTransactionRequest{
		GroupID: group.ID,
		SplitInput: api.SplitInput{
			Amount:       "90.00",
			Participants: []string{"alice", "bob", "dave"},
		},
	}))
	require.NoError(t, err)

	txn := created.Msg.Transaction
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, "alice", txn.PayerID, "payer defaults to caller")
	assert.Equal(t, "Expense", txn.Description)
	assert.Equal(t, "90.00", txn.Amount)
	assert.Equal(t, "equal", txn.SplitMode)
	assert.Equal(t, "alice", txn.CreatedBy)
	assert.Equal(t, map[string]string{"alice": "30.00", "bob": "30.00", "dave": "30.00"}, splitAmounts(txn.Splits))

	t.Run("unknown participants join the group", func(t *testing.T) {
		resp, err := env.groups.GetGroup(ctx, as("dave", &api.GetGroupRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Group.Members, 3)
	})

	t.Run("get and list", func(t *testing.T) {
		got, err := env.transactions.GetTransaction(ctx, as("bob", &api.GetTransactionRequest{TransactionID: txn.ID}))
		require.NoError(t, err)
		assert.Equal(t, txn, got.Msg.Transaction)

		list, err := env.transactions.ListTransactions(ctx, as("bob", &api.ListTransactionsRequest{GroupID: group.ID}))
		require.NoError(t, err)
		require.Len(t, list.Msg.Transactions, 1)
		assert.Equal(t, txn.ID, list.Msg.Transactions[0].ID)
	})

	t.Run("outsiders are rejected", func(t *testing.T) {
		_, err := env.transactions.GetTransaction(ctx, as("mallory", &api.GetTransactionRequest{TransactionID: txn.ID}))
		requireCode(t, connect.CodePermissionDenied, err)

		_, err = env.transactions.CreateTransaction(ctx, as("mallory", &api.CreateTransactionRequest{
			GroupID:    group.ID,
			SplitInput: api.SplitInput{Amount: "1", Participants: []string{"mallory"}},
		}))
		requireCode(t, connect.CodePermissionDenied, err)
	})

	t.Run("delete is soft", func(t *testing.T) {
		_, err := env.transactions.DeleteTransaction(ctx, as("bob", &api.DeleteTransactionRequest{TransactionID: txn.ID}))
		require.NoError(t, err)

		list, err := env.transactions.ListTransactions(ctx, as("bob", &api.ListTransactionsRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Empty(t, list.Msg.Transactions)

		got, err := env.transactions.GetTransaction(ctx, as("bob", &api.GetTransactionRequest{TransactionID: txn.ID}))
		require.NoError(t, err)
		assert.True(t, got.Msg.Transaction.Deleted)

		_, err = env.transactions.DeleteTransaction(ctx, as("bob", &api.DeleteTransactionRequest{TransactionID: txn.ID}))
		requireCode(t, connect.CodeNotFound, err)
	})
}

func TestCreateTransaction_ItemizedDescription(t *testing.T) {
	env := setupTestServer(t)
	group := env.createGroup(t, "alice", "bob")

	resp, err := env.transactions.CreateTransaction(context.Background(), as("alice", &api.CreateTransactionRequest{
		GroupID: group.ID,
		PayerID: "bob",
		SplitInput: api.SplitInput{
			Amount:    "40",
			SplitMode: "itemized",
			Items: []api.Item{
				{Description: "Pizza", Amount: "30", AssignedTo: []string{"alice", "bob"}},
				{Description: "Beer", Amount: "10", AssignedTo: []string{"bob"}},
			},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Pizza + 1 more", resp.Msg.Transaction.Description)
	assert.Equal(t, "bob", resp.Msg.Transaction.PayerName)
	assert.Equal(t, map[string]string{"alice": "15.00", "bob": "25.00"}, splitAmounts(resp.Msg.Transaction.Splits))
}

func TestCreateTransaction_AmountOutOfRange(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "a", "b")

	_, err := env.transactions.CreateTransaction(ctx, as("a", &api.CreateTransactionRequest{
		GroupID:    group.ID,
		SplitInput: api.SplitInput{Amount: "92233720368547758.08", Participants: []string{"a", "b"}},
	}))
	requireCode(t, connect.CodeInvalidArgument, err)

	_, err = env.transactions.CreateTransaction(ctx, as("a", &api.CreateTransactionRequest{
		GroupID: group.ID,
		SplitInput: api.SplitInput{Amount: "10", SplitMode: "exact", Splits: []api.Split{
			{UserID: "a", Amount: "92233720368547758.08"}, {UserID: "b", Amount: "10"},
		}},
	}))
	requireCode(t, connect.CodeInvalidArgument, err)

	list, err := env.transactions.ListTransactions(ctx, as("a", &api.ListTransactionsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Transactions)

	resp, err := env.settlements.GetSettlement(ctx, as("b", &api.GetSettlementRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Transfers)
}
