package ws

import (
	"encoding/json"
	"strings"
	"sync/atomic"
)

var defaultHub atomic.Pointer[Hub]

// SetDefaultHub installs the hub used by NotifyCaptureFinished. Safe to call
// once during bootstrap; notifications before that are dropped.
func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

type captureFinishedEvent struct {
	Type      string `json:"type"`
	CaptureID string `json:"capture_id"`
	Status    string `json:"status"`
	Kind      string `json:"kind"`
}

// NotifyCaptureFinished broadcasts a terminal capture transition to every
// connection subscribed to the owning profile.
func NotifyCaptureFinished(ownerProfileID, captureID, status, kind string) {
	h := defaultHub.Load()
	if h == nil {
		return
	}

	b, err := json.Marshal(captureFinishedEvent{
		Type:      "capture_finished",
		CaptureID: captureID,
		Status:    status,
		Kind:      kind,
	})
	if err != nil {
		return
	}
	h.Broadcast(strings.ToLower(ownerProfileID), b)
}
