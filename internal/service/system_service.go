package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fundwallet/fundwallet-backend/internal/database"
	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/pipeline"
	"github.com/fundwallet/fundwallet-backend/internal/repository"
	"github.com/fundwallet/fundwallet-backend/internal/version"
)

// PipelineControl is the part of the pipeline the system endpoints drive.
type PipelineControl interface {
	Status() pipeline.Status
	Refresh(ctx context.Context) (*pipeline.Task, error)
}

// SystemService handles system-related operations
type SystemService struct {
	db           *sql.DB
	pipeline     PipelineControl
	settings     *repository.SettingsRepository
	source       *SettingsSource
	cacheVersion string
	features     map[string]bool
	logger       zerolog.Logger
}

// NewSystemService creates a new SystemService
func NewSystemService(
	db *sql.DB,
	control PipelineControl,
	settings *repository.SettingsRepository,
	source *SettingsSource,
	cacheVersion string,
	features map[string]bool,
	logger zerolog.Logger,
) *SystemService {
	return &SystemService{
		db:           db,
		pipeline:     control,
		settings:     settings,
		source:       source,
		cacheVersion: cacheVersion,
		features:     features,
		logger:       logger.With().Str("component", "system_service").Logger(),
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version, the cache format version and
// the enabled optional features.
func (s *SystemService) CheckVersion() model.VersionInfo {
	features := make(map[string]bool, len(s.features))
	for k, v := range s.features {
		features[k] = v
	}
	return model.VersionInfo{
		AppVersion:   version.Version,
		CacheVersion: s.cacheVersion,
		Features:     features,
	}
}

// Status reports the pipeline state and the data URL the next load will use.
func (s *SystemService) Status(ctx context.Context) model.PipelineStatus {
	st := s.pipeline.Status()
	out := model.PipelineStatus{
		State:      st.State.String(),
		Source:     st.Source,
		Generation: st.Generation,
	}
	if !st.UpdatedAt.IsZero() {
		t := st.UpdatedAt.UTC()
		out.UpdatedAt = &t
	}
	if st.LastError != nil {
		out.LastError = st.LastError.Error()
	}
	if u, err := s.source.DataURL(ctx); err == nil {
		out.DataURL = u
	} else {
		out.DataURL = s.source.Fallback()
	}
	return out
}

// Refresh starts a network refresh, or joins the one running, and returns its task id.
func (s *SystemService) Refresh(ctx context.Context) (string, error) {
	task, err := s.pipeline.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to start refresh: %w", err)
	}
	s.logger.Info().Str("task_id", task.ID).Msg("refresh requested")
	return task.ID, nil
}

// DataURL returns the URL the next load will fetch.
func (s *SystemService) DataURL(ctx context.Context) (string, error) {
	return s.source.DataURL(ctx)
}

// SetDataURL validates and stores a new data URL, then refreshes from it.
// An empty value removes the stored URL so the configured one applies again.
//
// Returns apperrors.ErrInvalidSetting when raw is not an http(s) .b64 URL.
func (s *SystemService) SetDataURL(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		if err := s.settings.DeleteSetting(ctx, repository.SettingDataURL); err != nil {
			return "", err
		}
	} else {
		u, err := ValidateDataURL(raw)
		if err != nil {
			return "", err
		}
		if err := s.settings.SetSetting(ctx, repository.SettingDataURL, u); err != nil {
			return "", err
		}
	}

	current, err := s.source.DataURL(ctx)
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("data_url", current).Msg("data url updated")

	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("refresh after data url change failed to start")
	}
	return current, nil
}
