package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "settleup.v1.SettlementService"

const (
	SettlementServiceGetSettlementProcedure    = "/settleup.v1.SettlementService/GetSettlement"
	SettlementServiceRecordSettlementProcedure = "/settleup.v1.SettlementService/RecordSettlement"
	SettlementServiceDeleteSettlementProcedure = "/settleup.v1.SettlementService/DeleteSettlement"
)

type GetSettlementRequest struct {
	GroupID string `json:"groupId"`
}

// GetSettlementResponse is the computed settlement of a group together
// with the payments already recorded against it.
type GetSettlementResponse struct {
	GroupID      string        `json:"groupId"`
	Balances     []Balance     `json:"balances"`
	Transfers    []Transfer    `json:"transfers"`
	TotalSpent   string        `json:"totalSpent"`
	PerPersonAvg string        `json:"perPersonAvg"`
	Recorded     []*Settlement `json:"recorded"`
}

type RecordSettlementRequest struct {
	GroupID    string `json:"groupId"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}

// SettlementServiceHandler is implemented by the server side of the SettlementService.
type SettlementServiceHandler interface {
	GetSettlement(context.Context, *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error)
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getSettlement := connect.NewUnaryHandler(SettlementServiceGetSettlementProcedure, svc.GetSettlement, opts...)
	recordSettlement := connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, opts...)
	deleteSettlement := connect.NewUnaryHandler(SettlementServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...)

	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceGetSettlementProcedure:
			getSettlement.ServeHTTP(w, r)
		case SettlementServiceRecordSettlementProcedure:
			recordSettlement.ServeHTTP(w, r)
		case SettlementServiceDeleteSettlementProcedure:
			deleteSettlement.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient interface {
	GetSettlement(context.Context, *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error)
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error)
}

// NewSettlementServiceClient constructs a client for the SettlementService at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &settlementServiceClient{
		getSettlement:    connect.NewClient[GetSettlementRequest, GetSettlementResponse](httpClient, baseURL+SettlementServiceGetSettlementProcedure, opts...),
		recordSettlement: connect.NewClient[RecordSettlementRequest, RecordSettlementResponse](httpClient, baseURL+SettlementServiceRecordSettlementProcedure, opts...),
		deleteSettlement: connect.NewClient[DeleteSettlementRequest, DeleteSettlementResponse](httpClient, baseURL+SettlementServiceDeleteSettlementProcedure, opts...),
	}
}

type settlementServiceClient struct {
	getSettlement    *connect.Client[GetSettlementRequest, GetSettlementResponse]
	recordSettlement *connect.Client[RecordSettlementRequest, RecordSettlementResponse]
	deleteSettlement *connect.Client[DeleteSettlementRequest, DeleteSettlementResponse]
}

func (c *settlementServiceClient) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}
