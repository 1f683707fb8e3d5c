package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// TransactionServiceName is the fully-qualified name of the TransactionService.
const TransactionServiceName = "settleup.v1.TransactionService"

const (
	TransactionServiceCreateTransactionProcedure = "/settleup.v1.TransactionService/CreateTransaction"
	TransactionServiceGetTransactionProcedure    = "/settleup.v1.TransactionService/GetTransaction"
	TransactionServiceListTransactionsProcedure  = "/settleup.v1.TransactionService/ListTransactions"
	TransactionServiceDeleteTransactionProcedure = "/settleup.v1.TransactionService/DeleteTransaction"
	TransactionServicePreviewSplitProcedure      = "/settleup.v1.TransactionService/PreviewSplit"
)

type CreateTransactionRequest struct {
	GroupID     string `json:"groupId"`
	Description string `json:"description"`
	PayerID     string `json:"payerId"`
	SplitInput
}

type CreateTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type GetTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

type GetTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ListTransactionsRequest struct {
	GroupID string `json:"groupId"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type DeleteTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

type DeleteTransactionResponse struct{}

type PreviewSplitRequest struct {
	SplitInput
}

// PreviewSplitResponse carries the computed splits. Breakdown is only set
// for itemized splits.
type PreviewSplitResponse struct {
	Splits    []Split           `json:"splits"`
	Breakdown []PersonBreakdown `json:"breakdown,omitempty"`
}

// TransactionServiceHandler is implemented by the server side of the TransactionService.
type TransactionServiceHandler interface {
	CreateTransaction(context.Context, *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[GetTransactionRequest]) (*connect.Response[GetTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error)
	PreviewSplit(context.Context, *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error)
}

// NewTransactionServiceHandler builds an HTTP handler from the service implementation.
func NewTransactionServiceHandler(svc TransactionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createTransaction := connect.NewUnaryHandler(TransactionServiceCreateTransactionProcedure, svc.CreateTransaction, opts...)
	getTransaction := connect.NewUnaryHandler(TransactionServiceGetTransactionProcedure, svc.GetTransaction, opts...)
	listTransactions := connect.NewUnaryHandler(TransactionServiceListTransactionsProcedure, svc.ListTransactions, opts...)
	deleteTransaction := connect.NewUnaryHandler(TransactionServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...)
	previewSplit := connect.NewUnaryHandler(TransactionServicePreviewSplitProcedure, svc.PreviewSplit, opts...)

	return "/" + TransactionServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TransactionServiceCreateTransactionProcedure:
			createTransaction.ServeHTTP(w, r)
		case TransactionServiceGetTransactionProcedure:
			getTransaction.ServeHTTP(w, r)
		case TransactionServiceListTransactionsProcedure:
			listTransactions.ServeHTTP(w, r)
		case TransactionServiceDeleteTransactionProcedure:
			deleteTransaction.ServeHTTP(w, r)
		case TransactionServicePreviewSplitProcedure:
			previewSplit.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// TransactionServiceClient is a client for the TransactionService.
type TransactionServiceClient interface {
	CreateTransaction(context.Context, *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[GetTransactionRequest]) (*connect.Response[GetTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error)
	PreviewSplit(context.Context, *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error)
}

// NewTransactionServiceClient constructs a client for the TransactionService at baseURL.
func NewTransactionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TransactionServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &transactionServiceClient{
		createTransaction: connect.NewClient[CreateTransactionRequest, CreateTransactionResponse](httpClient, baseURL+TransactionServiceCreateTransactionProcedure, opts...),
		getTransaction:    connect.NewClient[GetTransactionRequest, GetTransactionResponse](httpClient, baseURL+TransactionServiceGetTransactionProcedure, opts...),
		listTransactions:  connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+TransactionServiceListTransactionsProcedure, opts...),
		deleteTransaction: connect.NewClient[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL+TransactionServiceDeleteTransactionProcedure, opts...),
		previewSplit:      connect.NewClient[PreviewSplitRequest, PreviewSplitResponse](httpClient, baseURL+TransactionServicePreviewSplitProcedure, opts...),
	}
}

type transactionServiceClient struct {
	createTransaction *connect.Client[CreateTransactionRequest, CreateTransactionResponse]
	getTransaction    *connect.Client[GetTransactionRequest, GetTransactionResponse]
	listTransactions  *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	deleteTransaction *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
	previewSplit      *connect.Client[PreviewSplitRequest, PreviewSplitResponse]
}

func (c *transactionServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *transactionServiceClient) GetTransaction(ctx context.Context, req *connect.Request[GetTransactionRequest]) (*connect.Response[GetTransactionResponse], error) {
	return c.getTransaction.CallUnary(ctx, req)
}

func (c *transactionServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *transactionServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *transactionServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}
