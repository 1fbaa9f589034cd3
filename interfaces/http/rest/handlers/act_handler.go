package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"titlechain/application/queries"
	querybus "titlechain/application/queries/bus"
	"titlechain/domain/core/entities"
	"titlechain/pkg/common"
	pkgerrors "titlechain/pkg/errors"
)

// ActHandler serves the available-acts list
type ActHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewActHandler creates a new act handler
func NewActHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ActHandler {
	return &ActHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// ListActs handles GET /acts?q=&page=&page_size=. Matches are sorted by
// numero_acte and paginated.
func (h *ActHandler) ListActs(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPaginationParams(r)

	result, err := h.queryBus.Ask(r.Context(), queries.ListActsQuery{Query: r.URL.Query().Get("q")})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	acts, ok := result.([]entities.Act)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected query result"))
		return
	}

	if acts == nil {
		acts = []entities.Act{}
	}
	start, end := page.Bounds(len(acts))
	common.RespondWithMeta(w, http.StatusOK, acts[start:end], &common.MetaInfo{
		RequestID:  middleware.GetReqID(r.Context()),
		Pagination: common.BuildPaginationMeta(page.Page, page.PageSize, len(acts)),
	})
}

// GetAct handles GET /acts/{numero}
func (h *ActHandler) GetAct(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetActQuery{NumeroActe: chi.URLParam(r, "numero")})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
