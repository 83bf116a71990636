package capture

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindPost    Kind = "post"
	KindProfile Kind = "profile"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Capture is one collection request: a LinkedIn URL submitted by a profile
// owner, processed asynchronously by the collector.
type Capture struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	TargetURL   string     `json:"target_url"`
	Kind        Kind       `json:"kind"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	RemoteRunID string     `json:"remote_run_id,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// PostSnapshot is the structured record collected for a post capture.
type PostSnapshot struct {
	ID             uuid.UUID  `json:"id"`
	CaptureID      uuid.UUID  `json:"capture_id"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	AuthorName     string     `json:"author_name"`
	AuthorHeadline string     `json:"author_headline"`
	AuthorURL      string     `json:"author_url"`
	Content        string     `json:"content"`
	Reactions      int        `json:"reactions"`
	Comments       int        `json:"comments"`
	Reposts        int        `json:"reposts"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	CapturedAt     time.Time  `json:"captured_at"`
}

// ProfileSnapshot is the structured record collected for a profile capture.
type ProfileSnapshot struct {
	ID              uuid.UUID `json:"id"`
	CaptureID       uuid.UUID `json:"capture_id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	FullName        string    `json:"full_name"`
	Headline        string    `json:"headline"`
	Location        string    `json:"location"`
	About           string    `json:"about"`
	CurrentCompany  string    `json:"current_company"`
	FollowerCount   int       `json:"follower_count"`
	ConnectionCount int       `json:"connection_count"`
	ProfileURL      string    `json:"profile_url"`
	CapturedAt      time.Time `json:"captured_at"`
}
