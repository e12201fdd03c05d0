package model

import "time"

// ReviewStatus is the moderation state of a price submission.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// Submission is one crowdsourced price report (or new-station suggestion).
// StationID is null for suggestions; the name/address snapshot carries the
// station identity in that case. Price is stored in mills (thousandths of a
// dollar); the column keeps the historical price_cents name.
type Submission struct {
	ID             int64        `json:"id"`
	StationID      *int64       `json:"station_id,omitempty"`
	StationName    *string      `json:"station_name,omitempty"`
	StationAddress *string      `json:"station_address,omitempty"`
	Grade          *string      `json:"grade,omitempty"`
	PriceCents     *int64       `json:"price_cents,omitempty"`
	Notes          *string      `json:"notes,omitempty"`
	SubmittedBy    *string      `json:"submitted_by,omitempty"`
	SubmittedFrom  *string      `json:"submitted_from,omitempty"`
	Status         ReviewStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	ReviewedAt     *time.Time   `json:"reviewed_at,omitempty"`
}
