package export

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/internal/storage"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// Summarizer computes the settlement of a group for one of its members.
// It fails with storage.ErrNotFound or service.ErrNotMember before doing
// any computation.
type Summarizer interface {
	SummarizeForMember(ctx context.Context, groupID, userID string) (*service.Summary, error)
}

// Handler serves GET /export/{group_id}.{xlsx|pdf} to group members. It
// expects the authenticated user in the request context. Unknown groups and
// groups the user is not in both get 404.
type Handler struct {
	summarizer Summarizer
	symbol     string
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewHandler creates an export handler. recorder may be nil.
func NewHandler(summarizer Summarizer, symbol string, recorder *metrics.Recorder, logger *slog.Logger) *Handler {
	return &Handler{summarizer: summarizer, symbol: symbol, metrics: recorder, logger: logger}
}

// Pattern is the ServeMux pattern the handler is meant to be mounted on.
const Pattern = "GET /export/{file}"

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	format := strings.TrimPrefix(path.Ext(file), ".")
	groupID := strings.TrimSuffix(file, path.Ext(file))
	if groupID == "" || (format != "xlsx" && format != "pdf") {
		http.Error(w, "expected /export/{group_id}.xlsx or .pdf", http.StatusNotFound)
		return
	}

	result := metrics.ResultSuccess
	defer func() { h.metrics.ObserveExport(format, result) }()

	userID := middleware.GetUserID(r.Context())
	summary, err := h.summarizer.SummarizeForMember(r.Context(), groupID, userID)
	if err != nil {
		result = metrics.ResultError
		h.logger.Warn("Export failed", "group_id", groupID, "format", format, "user_id", userID, "error", err)
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, service.ErrNotMember):
			http.Error(w, "group not found", http.StatusNotFound)
		case errors.Is(err, settlement.ErrUnbalanced):
			result = metrics.ResultUnbalanced
			http.Error(w, "group balances do not add up", http.StatusConflict)
		default:
			http.Error(w, "export error", http.StatusInternalServerError)
		}
		return
	}

	var data []byte
	contentType := contentTypePDF
	if format == "xlsx" {
		contentType = contentTypeXLSX
		data, err = BuildSettlementXLSX(summary, h.symbol)
	} else {
		data, err = BuildSettlementPDF(summary)
	}
	if err != nil {
		result = metrics.ResultError
		h.logger.Error("Export render failed", "group_id", groupID, "format", format, "error", err)
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Settlement exported", "group_id", groupID, "format", format, "user_id", userID)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="settlement-`+groupID+`.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
