package model

import "encoding/json"

// Payload is the decoded document carried by the data artifact.
// Rows stay positional until the record builder parses them.
type Payload struct {
	Daily DailySection `json:"u"`
	Meta  MetaSection  `json:"s"`
}

// DailySection holds daily rows and the optional factsheet table.
type DailySection struct {
	Rows      []json.RawMessage `json:"n9"`
	Factsheet []json.RawMessage `json:"FC,omitempty"`
}

// MetaSection holds fund metadata rows.
type MetaSection struct {
	Rows []json.RawMessage `json:"n9"`
}
