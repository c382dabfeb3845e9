package model

import "time"

// AnalysisRequest is an asynchronous request to analyze one content item.
type AnalysisRequest struct {
	RequestID   string     `json:"request_id"`
	Ref         ContentRef `json:"content"`
	SubmittedAt time.Time  `json:"submitted_at"`
}
