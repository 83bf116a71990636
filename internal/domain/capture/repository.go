package capture

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("capture not found")

type ListFilter struct {
	OwnerID uuid.UUID
	Limit   int
	Offset  int
}

type Repository interface {
	Create(ctx context.Context, c Capture) (Capture, error)
	// GetForOwner returns the capture only when it belongs to the owner;
	// anything else is ErrNotFound. Ownership scoping is enforced in SQL,
	// never in the handler.
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Capture, error)
	ListForOwner(ctx context.Context, f ListFilter) ([]Capture, error)

	// ClaimQueued atomically flips up to limit queued captures to running
	// and returns them. Safe to call from multiple collector instances.
	ClaimQueued(ctx context.Context, limit int) ([]Capture, error)
	Finish(ctx context.Context, id uuid.UUID, status Status, errMsg string, remoteRunID string) error

	InsertPostSnapshots(ctx context.Context, snaps []PostSnapshot) error
	InsertProfileSnapshots(ctx context.Context, snaps []ProfileSnapshot) error
	PostSnapshotsForCapture(ctx context.Context, ownerID, captureID uuid.UUID) ([]PostSnapshot, error)
	ProfileSnapshotsForCapture(ctx context.Context, ownerID, captureID uuid.UUID) ([]ProfileSnapshot, error)

	AppendLog(ctx context.Context, captureID uuid.UUID, level, message string) error
}
