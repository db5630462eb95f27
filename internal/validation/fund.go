package validation

import (
	"github.com/fundwallet/fundwallet-backend/internal/model"
)

// Page and search bounds.
const (
	MaxPageLimit    = 500
	MaxSearchLimit  = 100
	MaxSearchLength = 200
)

// ValidateFundFilters checks the sort key and that every range has min <= max.
func ValidateFundFilters(f model.FundFilters) error {
	return Struct(f)
}

// ValidatePage checks a page window. A zero limit means "no limit".
func ValidatePage(offset, limit int) error {
	errors := make(map[string]string)
	if offset < 0 {
		errors["offset"] = "must be at least 0"
	}
	if limit < 0 {
		errors["limit"] = "must be at least 0"
	} else if limit > MaxPageLimit {
		errors["limit"] = "must be at most 500"
	}
	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// SearchRequest is a free-text search.
type SearchRequest struct {
	Query string `json:"q" validate:"required,max=200"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

// ValidateSearch checks a search request.
func ValidateSearch(req SearchRequest) error {
	return Struct(req)
}

// DataURLRequest updates the stored data URL. An empty URL restores the configured one.
type DataURLRequest struct {
	URL string `json:"url" validate:"omitempty,url,max=2048"`
}

// ValidateDataURL checks a data URL update.
func ValidateDataURL(req DataURLRequest) error {
	return Struct(req)
}
