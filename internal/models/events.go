// Package models defines the data structures for published analysis events.
package models

import "github.com/venture-data/Call-Analysis-Demo/internal/service/analysis"

// Event type discriminators.
const (
	EventAnalysisCompleted = "call.analysis.completed"
	EventBookedTrigger     = "call.trigger.booked"
)

// AnalysisCompleted is published after every successfully parsed analysis.
type AnalysisCompleted struct {
	EventType   string            `json:"eventType"`
	SessionID   string            `json:"sessionId"`
	Timestamp   int64             `json:"timestamp"`
	Provider    string            `json:"sttProvider"`
	Model       string            `json:"model"`
	Class       string            `json:"class"`
	Explanation string            `json:"explanation"`
	Summary     string            `json:"summary"`
	Entities    []analysis.Entity `json:"entities"`
}

// BookedTrigger is published when a call is classified as Booked, for
// downstream systems that act on new bookings.
type BookedTrigger struct {
	EventType   string `json:"eventType"`
	SessionID   string `json:"sessionId"`
	Timestamp   int64  `json:"timestamp"`
	Explanation string `json:"explanation"`
}
