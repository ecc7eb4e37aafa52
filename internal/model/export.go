package model

import "time"

// ProgressExport is the top-level JSON structure written by `quest export`.
type ProgressExport struct {
	ExportedAt time.Time           `json:"exportedAt"`
	Subjects   []SubjectProgress   `json:"subjects"`
	History    []HistoryEntry      `json:"history"`
	Overview   Overview            `json:"overview"`
	Grades     map[Subject]float64 `json:"grades"`
}

// SubjectProgress is one dashboard card.
type SubjectProgress struct {
	Subject         Subject `json:"subject"`
	Grade           float64 `json:"grade"`
	Level           string  `json:"level"`
	ProgressPercent int     `json:"progressPercent"`
	Accuracy        int     `json:"accuracy30d"`
	Answered        int     `json:"answered"`
}

// Overview aggregates the whole history log.
type Overview struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Percent int `json:"percent"`
}
