package model

import "time"

// HistoryEntry is one past analysis. Timestamp is zero when the service sent
// no parseable time; RawTimestamp keeps whatever was sent.
type HistoryEntry struct {
	ID           string
	Title        string
	Symptoms     string
	Timestamp    time.Time
	RawTimestamp string
	ImageURL     string
	Result       AnalysisResult
	// RawResult is the undecoded result payload, kept for export.
	RawResult any
}
