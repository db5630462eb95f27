package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/fundwallet/fundwallet-backend/internal/api/response"
	"github.com/fundwallet/fundwallet-backend/internal/service"
	"github.com/fundwallet/fundwallet-backend/internal/validation"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
	fundService   *service.FundService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService, fundService *service.FundService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		fundService:   fundService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	// Check database health
	if err := h.systemService.CheckHealth(); err != nil {
		resp := HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		}
		response.RespondJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}

	// System is healthy
	resp := HealthResponse{
		Status:   "healthy",
		Database: "connected",
	}
	response.RespondJSON(w, r, http.StatusOK, resp)
}

// Version handles GET requests to retrieve version information and feature availability.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with model.VersionInfo
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, r, http.StatusOK, h.systemService.CheckVersion())
}

// Status reports the pipeline state.
//
// Endpoint: GET /api/system/status
// Response: 200 OK with model.PipelineStatus
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, r, http.StatusOK, h.systemService.Status(r.Context()))
}

// RefreshResponse identifies the refresh task started or joined.
type RefreshResponse struct {
	TaskID string `json:"task_id"`
}

// Refresh starts a background refresh from the network.
//
// Endpoint: POST /api/system/refresh
// Response: 202 Accepted with RefreshResponse
// Error: 503 Service Unavailable once the server is shutting down
func (h *SystemHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, err := h.systemService.Refresh(r.Context())
	if err != nil {
		respondServiceError(w, r, "failed to start refresh", err)
		return
	}
	response.RespondJSON(w, r, http.StatusAccepted, RefreshResponse{TaskID: id})
}

// ClearCache drops the payload, the persistent cache entry and every derived result.
//
// Endpoint: POST /api/system/cache/clear
// Response: 204 No Content
func (h *SystemHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.fundService.ClearCache(r.Context()); err != nil {
		respondServiceError(w, r, "failed to clear cache", err)
		return
	}
	response.RespondJSON(w, r, http.StatusNoContent, nil)
}

// DataURLResponse carries the data URL loads fetch from.
type DataURLResponse struct {
	URL string `json:"url"`
}

// DataURL returns the current data URL.
//
// Endpoint: GET /api/system/settings/data-url
// Response: 200 OK with DataURLResponse
func (h *SystemHandler) DataURL(w http.ResponseWriter, r *http.Request) {
	u, err := h.systemService.DataURL(r.Context())
	if err != nil {
		respondServiceError(w, r, "failed to read data url", err)
		return
	}
	response.RespondJSON(w, r, http.StatusOK, DataURLResponse{URL: u})
}

// UpdateDataURL stores a new data URL and refreshes from it. An empty url
// restores the configured one.
//
// Endpoint: PUT /api/system/settings/data-url
// Request body: validation.DataURLRequest
// Response: 200 OK with DataURLResponse
// Error: 400 Bad Request for malformed bodies or URLs
func (h *SystemHandler) UpdateDataURL(w http.ResponseWriter, r *http.Request) {
	var req validation.DataURLRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.RespondError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateDataURL(req); err != nil {
		respondServiceError(w, r, "invalid data url", err)
		return
	}

	u, err := h.systemService.SetDataURL(r.Context(), req.URL)
	if err != nil {
		respondServiceError(w, r, "invalid data url", err)
		return
	}
	response.RespondJSON(w, r, http.StatusOK, DataURLResponse{URL: u})
}
