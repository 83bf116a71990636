package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"linklens/internal/domain/capture"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrCaptureNotFound   = errors.New("capture not found")
	ErrDuplicateCapture  = errors.New("capture for this url was just submitted")
	ErrUnsupportedTarget = errors.New("unsupported capture target")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	submitLockTTL = 2 * time.Minute
)

type CaptureDetail struct {
	Capture          capture.Capture           `json:"capture"`
	PostSnapshots    []capture.PostSnapshot    `json:"post_snapshots,omitempty"`
	ProfileSnapshots []capture.ProfileSnapshot `json:"profile_snapshots,omitempty"`
}

type CaptureUsecase interface {
	Submit(ctx context.Context, ownerID uuid.UUID, rawURL string) (capture.Capture, error)
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]capture.Capture, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (CaptureDetail, error)
}

type Captures struct {
	repo  capture.Repository
	cache SessionCache
}

func NewCaptureUsecase(repo capture.Repository, cache SessionCache) *Captures {
	return &Captures{repo: repo, cache: cache}
}

func (u *Captures) Submit(ctx context.Context, ownerID uuid.UUID, rawURL string) (capture.Capture, error) {
	if ownerID == uuid.Nil {
		return capture.Capture{}, ErrInvalidInput
	}

	normalized, kind, err := capture.ClassifyURL(rawURL)
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrInvalidURL):
			return capture.Capture{}, ErrInvalidInput
		default:
			return capture.Capture{}, ErrUnsupportedTarget
		}
	}

	// best-effort dedupe: a second submit of the same url inside the lock
	// window is rejected instead of queueing twice
	if u.cache != nil {
		ok, err := u.cache.SetIfNotExists(ctx, submitLockKey(ownerID.String(), normalized), "1", submitLockTTL)
		if err == nil && !ok {
			return capture.Capture{}, ErrDuplicateCapture
		}
	}

	c := capture.Capture{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		TargetURL: normalized,
		Kind:      kind,
	}
	created, err := u.repo.Create(ctx, c)
	if err != nil {
		return capture.Capture{}, err
	}
	return created, nil
}

func (u *Captures) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]capture.Capture, error) {
	if ownerID == uuid.Nil || limit < 0 || offset < 0 {
		return nil, ErrInvalidInput
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return u.repo.ListForOwner(ctx, capture.ListFilter{OwnerID: ownerID, Limit: limit, Offset: offset})
}

func (u *Captures) Get(ctx context.Context, ownerID, id uuid.UUID) (CaptureDetail, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return CaptureDetail{}, ErrInvalidInput
	}

	c, err := u.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, capture.ErrNotFound) {
			return CaptureDetail{}, ErrCaptureNotFound
		}
		return CaptureDetail{}, err
	}

	detail := CaptureDetail{Capture: c}
	switch c.Kind {
	case capture.KindPost:
		detail.PostSnapshots, err = u.repo.PostSnapshotsForCapture(ctx, ownerID, id)
	case capture.KindProfile:
		detail.ProfileSnapshots, err = u.repo.ProfileSnapshotsForCapture(ctx, ownerID, id)
	}
	if err != nil {
		return CaptureDetail{}, err
	}
	return detail, nil
}
