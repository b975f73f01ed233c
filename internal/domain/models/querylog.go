package models

import "time"

// QueryLog records how one user message was routed.
type QueryLog struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Query     string    `json:"query"`
	Intent    string    `json:"intent"`
	Tier      Tier      `json:"tier"`
	Ticker    string    `json:"ticker,omitempty"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}
