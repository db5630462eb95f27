package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/repository"
)

// SettingsSource resolves the data URL from the settings table, falling back to
// the configured URL when none has been stored.
type SettingsSource struct {
	settings *repository.SettingsRepository
	fallback string
}

// NewSettingsSource creates a SettingsSource.
func NewSettingsSource(settings *repository.SettingsRepository, fallback string) *SettingsSource {
	return &SettingsSource{settings: settings, fallback: fallback}
}

// DataURL implements pipeline.SourceResolver.
func (s *SettingsSource) DataURL(ctx context.Context) (string, error) {
	v, err := s.settings.GetSetting(ctx, repository.SettingDataURL)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return s.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve data url: %w", err)
	}
	return v, nil
}

// Fallback returns the configured URL.
func (s *SettingsSource) Fallback() string {
	return s.fallback
}

// ValidateDataURL checks that raw is an absolute http(s) URL naming a .b64 artifact.
func ValidateDataURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: data url must be an absolute URL", apperrors.ErrInvalidSetting)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: data url scheme must be http or https", apperrors.ErrInvalidSetting)
	}
	if !strings.HasSuffix(u.Path, ".b64") {
		return "", fmt.Errorf("%w: data url must point at a .b64 artifact", apperrors.ErrInvalidSetting)
	}
	return raw, nil
}
