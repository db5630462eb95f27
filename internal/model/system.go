package model

import "time"

// VersionInfo contains version and feature information for the application.
type VersionInfo struct {
	AppVersion   string          `json:"app_version"`
	CacheVersion string          `json:"cache_version"`
	Features     map[string]bool `json:"features"`
}

// PipelineStatus describes the state of the fund data pipeline.
type PipelineStatus struct {
	State      string     `json:"state"`
	Source     string     `json:"source,omitempty"`
	Generation uint64     `json:"generation"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	DataURL    string     `json:"data_url"`
}

// BuildReport summarizes the last record build.
type BuildReport struct {
	Records          int `json:"records"`
	SkippedDaily     int `json:"skipped_daily"`
	SkippedMeta      int `json:"skipped_meta"`
	SkippedFactsheet int `json:"skipped_factsheet"`
	Unmatched        int `json:"unmatched"`
}
