package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fundwallet/fundwallet-backend/internal/api/request"
	"github.com/fundwallet/fundwallet-backend/internal/api/response"
	"github.com/fundwallet/fundwallet-backend/internal/export"
	"github.com/fundwallet/fundwallet-backend/internal/filter"
	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/service"
	"github.com/fundwallet/fundwallet-backend/internal/validation"
)

// Default number of search results.
const defaultSearchLimit = 20

// FundHandler handles HTTP requests for fund endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the fundService.
type FundHandler struct {
	fundService *service.FundService
	logger      zerolog.Logger
}

// NewFundHandler creates a new FundHandler with the provided service dependency.
func NewFundHandler(fundService *service.FundService, logger zerolog.Logger) *FundHandler {
	return &FundHandler{
		fundService: fundService,
		logger:      logger.With().Str("component", "fund_handler").Logger(),
	}
}

// Funds handles GET requests to filter, sort and page the fund list.
//
// Endpoint: GET /api/fund
// Query: FundFilters fields (see request.ParseFundFilters), offset, limit
// Response: 200 OK with model.FundPage; a filter that matches nothing is 200 with total 0
// Error: 400 Bad Request for invalid filters
// Error: 503 Service Unavailable if fund data could not be loaded
func (h *FundHandler) Funds(w http.ResponseWriter, r *http.Request) {
	filters, offset, limit, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	page, err := h.fundService.Query(r.Context(), filters, offset, limit)
	if err != nil {
		respondServiceError(w, r, "failed to retrieve funds", err)
		return
	}
	response.RespondJSON(w, r, http.StatusOK, page)
}

// FilterOptions handles GET requests for the distinct values per filter dimension.
//
// Endpoint: GET /api/fund/filter-options
// Response: 200 OK with model.FilterOptions
func (h *FundHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.fundService.FilterOptions(r.Context())
	if err != nil {
		respondServiceError(w, r, "failed to retrieve filter options", err)
		return
	}
	response.RespondJSON(w, r, http.StatusOK, opts)
}

// Ranges handles GET requests for the numeric bounds per range filter.
//
// Endpoint: GET /api/fund/ranges
// Response: 200 OK with model.RangeValues
func (h *FundHandler) Ranges(w http.ResponseWriter, r *http.Request) {
	ranges, err := h.fundService.RangeValues(r.Context())
	if err != nil {
		respondServiceError(w, r, "failed to retrieve ranges", err)
		return
	}
	response.RespondJSON(w, r, http.StatusOK, ranges)
}

// Search handles ranked free-text search.
//
// Endpoint: GET /api/fund/search?q=&limit=
// Response: 200 OK with an array of model.FundData, best match first
// Error: 400 Bad Request if q is missing or limit is out of range
func (h *FundHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query(), defaultSearchLimit)
	if err != nil {
		response.RespondError(w, r, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}
	req := validation.SearchRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if err := validation.ValidateSearch(req); err != nil {
		respondServiceError(w, r, "invalid search", err)
		return
	}

	funds, err := h.fundService.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondServiceError(w, r, "search failed", err)
		return
	}
	response.RespondJSON(w, r, http.StatusOK, funds)
}

// Export writes the filtered, sorted fund list as a spreadsheet. Paging
// parameters are ignored; every match is exported.
//
// Endpoint: GET /api/fund/export.xlsx
// Response: 200 OK with an xlsx attachment
func (h *FundHandler) Export(w http.ResponseWriter, r *http.Request) {
	filters, _, _, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	funds, err := h.fundService.Funds(r.Context())
	if err != nil {
		respondServiceError(w, r, "failed to export funds", err)
		return
	}
	matched := filter.Apply(funds, filters)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="funds.xlsx"`)
	if err := export.WriteXLSX(w, matched); err != nil {
		// Headers may already be sent.
		h.logger.Error().Err(err).Int("funds", len(matched)).Msg("failed to write export")
	}
}

// Fund handles GET requests for a single fund by slug.
//
// Endpoint: GET /api/fund/{slug}
// Response: 200 OK with model.FundData
// Error: 404 Not Found if no fund has the slug
func (h *FundHandler) Fund(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	fund, err := h.fundService.FundBySlug(r.Context(), slug)
	if err != nil {
		respondServiceError(w, r, "failed to retrieve fund", err)
		return
	}
	response.RespondJSON(w, r, http.StatusOK, fund)
}

func (h *FundHandler) parseQuery(w http.ResponseWriter, r *http.Request) (model.FundFilters, int, int, bool) {
	q := r.URL.Query()
	filters, err := request.ParseFundFilters(q)
	if err != nil {
		response.RespondError(w, r, http.StatusBadRequest, "invalid query parameters", err.Error())
		return filters, 0, 0, false
	}
	offset, limit, err := request.ParsePage(q)
	if err != nil {
		response.RespondError(w, r, http.StatusBadRequest, "invalid query parameters", err.Error())
		return filters, 0, 0, false
	}
	if err := validation.ValidateFundFilters(filters); err != nil {
		respondServiceError(w, r, "invalid filters", err)
		return filters, 0, 0, false
	}
	if err := validation.ValidatePage(offset, limit); err != nil {
		respondServiceError(w, r, "invalid page", err)
		return filters, 0, 0, false
	}
	return filters, offset, limit, true
}
