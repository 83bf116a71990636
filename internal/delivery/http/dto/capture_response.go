package dto

import (
	"time"

	"linklens/internal/domain/capture"
	"linklens/internal/usecase"
)

type CaptureResponse struct {
	ID          string     `json:"id"`
	TargetURL   string     `json:"target_url"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

type CaptureDetailResponse struct {
	Capture          CaptureResponse           `json:"capture"`
	PostSnapshots    []capture.PostSnapshot    `json:"post_snapshots,omitempty"`
	ProfileSnapshots []capture.ProfileSnapshot `json:"profile_snapshots,omitempty"`
}

func NewCaptureResponse(c capture.Capture) CaptureResponse {
	return CaptureResponse{
		ID:          c.ID.String(),
		TargetURL:   c.TargetURL,
		Kind:        string(c.Kind),
		Status:      string(c.Status),
		Error:       c.Error,
		RequestedAt: c.RequestedAt,
		StartedAt:   c.StartedAt,
		FinishedAt:  c.FinishedAt,
	}
}

func NewCaptureListResponse(items []capture.Capture) []CaptureResponse {
	out := make([]CaptureResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewCaptureResponse(c))
	}
	return out
}

func NewCaptureDetailResponse(d usecase.CaptureDetail) CaptureDetailResponse {
	return CaptureDetailResponse{
		Capture:          NewCaptureResponse(d.Capture),
		PostSnapshots:    d.PostSnapshots,
		ProfileSnapshots: d.ProfileSnapshots,
	}
}
