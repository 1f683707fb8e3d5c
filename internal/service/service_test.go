package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

// testUserHeader names the user a test request acts as.
const testUserHeader = "X-Test-User"

// testAuthInterceptor puts the user named by testUserHeader into the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if userID := req.Header().Get(testUserHeader); userID != "" {
				ctx = middleware.WithUser(ctx, userID, userID+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

// as builds a request made by userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if userID != "" {
		req.Header().Set(testUserHeader, userID)
	}
	return req
}

type testEnv struct {
	store        *sqlite.SQLiteStore
	recorder     *metrics.Recorder
	settlementSv *SettlementService
	groups       api.GroupServiceClient
	transactions api.TransactionServiceClient
	settlements  api.SettlementServiceClient
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	logger := discardLogger()
	recorder := metrics.New()
	settlementSvc := NewSettlementService(store, recorder, logger)
	interceptors := connect.WithInterceptors(testAuthInterceptor())

	mux := http.NewServeMux()
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, logger), interceptors))
	mux.Handle(api.NewTransactionServiceHandler(NewTransactionService(store, logger), interceptors))
	mux.Handle(api.NewSettlementServiceHandler(settlementSvc, interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:        store,
		recorder:     recorder,
		settlementSv: settlementSvc,
		groups:       api.NewGroupServiceClient(server.Client(), server.URL),
		transactions: api.NewTransactionServiceClient(server.Client(), server.URL),
		settlements:  api.NewSettlementServiceClient(server.Client(), server.URL),
	}
}

// createGroup creates a trip owned by owner with the other members.
func (e *testEnv) createGroup(t *testing.T, owner string, members ...string) *api.Group {
	t.Helper()
	req := &api.CreateGroupRequest{Name: "Goa", Kind: "trip"}
	for _, m := range members {
		req.Members = append(req.Members, api.Member{UserID: m})
	}
	resp, err := e.groups.CreateGroup(context.Background(), as(owner, req))
	require.NoError(t, err)
	return resp.Msg.Group
}

// addExpense records an equal split paid by payer.
func (e *testEnv) addExpense(t *testing.T, groupID, payer, amount string, participants ...string) *api.Transaction {
	t.Helper()
	resp, err := e.transactions.CreateTransaction(context.Background(), as(payer, &api.CreateTransactionRequest{
		GroupID:     groupID,
		Description: "Expense",
		PayerID:     payer,
		SplitInput: api.SplitInput{
			Amount:       amount,
			SplitMode:    "equal",
			Participants: participants,
		},
	}))
	require.NoError(t, err)
	return resp.Msg.Transaction
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}
