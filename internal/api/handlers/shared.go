package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/fundwallet/fundwallet-backend/internal/api/response"
	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/pipeline"
	"github.com/fundwallet/fundwallet-backend/internal/validation"
)

// respondServiceError maps a service error to a status code and writes it.
//
//   - validation errors: 400 with the rejected fields as details
//   - unknown fund: 404
//   - no fund data (download, decode or parse failure): 503
//   - anything else: 500
func respondServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.RespondError(w, r, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrInvalidSetting):
		response.RespondError(w, r, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, apperrors.ErrFundNotFound):
		response.RespondError(w, r, http.StatusNotFound, "fund not found", err.Error())
	case isUnavailable(err):
		response.RespondError(w, r, http.StatusServiceUnavailable, "fund data unavailable", err.Error())
	default:
		response.RespondError(w, r, http.StatusInternalServerError, message, err.Error())
	}
}

func isUnavailable(err error) bool {
	for _, target := range []error{
		apperrors.ErrDataUnavailable,
		apperrors.ErrNetwork,
		apperrors.ErrMalformedArtifact,
		apperrors.ErrDecryption,
		apperrors.ErrDecompression,
		apperrors.ErrParse,
		pipeline.ErrClosed,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
