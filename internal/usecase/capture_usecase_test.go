package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"linklens/internal/domain/capture"
)

type mockCaptureRepo struct {
	created  []capture.Capture
	byID     map[uuid.UUID]capture.Capture
	posts    map[uuid.UUID][]capture.PostSnapshot
	profiles map[uuid.UUID][]capture.ProfileSnapshot
	err      error
}

func newMockCaptureRepo() *mockCaptureRepo {
	return &mockCaptureRepo{
		byID:     map[uuid.UUID]capture.Capture{},
		posts:    map[uuid.UUID][]capture.PostSnapshot{},
		profiles: map[uuid.UUID][]capture.ProfileSnapshot{},
	}
}

func (m *mockCaptureRepo) Create(_ context.Context, c capture.Capture) (capture.Capture, error) {
	if m.err != nil {
		return capture.Capture{}, m.err
	}
	c.Status = capture.StatusQueued
	c.RequestedAt = time.Now().UTC()
	m.created = append(m.created, c)
	m.byID[c.ID] = c
	return c, nil
}

func (m *mockCaptureRepo) GetForOwner(_ context.Context, ownerID, id uuid.UUID) (capture.Capture, error) {
	c, ok := m.byID[id]
	if !ok || c.OwnerID != ownerID {
		return capture.Capture{}, capture.ErrNotFound
	}
	return c, nil
}

func (m *mockCaptureRepo) ListForOwner(_ context.Context, f capture.ListFilter) ([]capture.Capture, error) {
	var out []capture.Capture
	for _, c := range m.byID {
		if c.OwnerID == f.OwnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCaptureRepo) ClaimQueued(_ context.Context, _ int) ([]capture.Capture, error) {
	return nil, nil
}

func (m *mockCaptureRepo) Finish(_ context.Context, _ uuid.UUID, _ capture.Status, _ string, _ string) error {
	return nil
}

func (m *mockCaptureRepo) InsertPostSnapshots(_ context.Context, _ []capture.PostSnapshot) error {
	return nil
}

func (m *mockCaptureRepo) InsertProfileSnapshots(_ context.Context, _ []capture.ProfileSnapshot) error {
	return nil
}

func (m *mockCaptureRepo) PostSnapshotsForCapture(_ context.Context, _, captureID uuid.UUID) ([]capture.PostSnapshot, error) {
	return m.posts[captureID], nil
}

func (m *mockCaptureRepo) ProfileSnapshotsForCapture(_ context.Context, _, captureID uuid.UUID) ([]capture.ProfileSnapshot, error) {
	return m.profiles[captureID], nil
}

func (m *mockCaptureRepo) AppendLog(_ context.Context, _ uuid.UUID, _, _ string) error {
	return nil
}

type mockCache struct {
	store map[string]string
	nxHit bool
}

func (m *mockCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (m *mockCache) SetJSON(context.Context, string, any, time.Duration) error {
	return nil
}
func (m *mockCache) Delete(context.Context, string) error { return nil }
func (m *mockCache) SetIfNotExists(_ context.Context, key string, value string, _ time.Duration) (bool, error) {
	if m.store == nil {
		m.store = map[string]string{}
	}
	if _, ok := m.store[key]; ok {
		m.nxHit = true
		return false, nil
	}
	m.store[key] = value
	return true, nil
}

func TestCaptureSubmit_ClassifiesAndQueues(t *testing.T) {
	repo := newMockCaptureRepo()
	uc := NewCaptureUsecase(repo, &mockCache{})
	owner := uuid.New()

	c, err := uc.Submit(context.Background(), owner, "https://www.linkedin.com/in/jane-doe/?trk=share")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.Kind != capture.KindProfile {
		t.Fatalf("expected profile kind, got %q", c.Kind)
	}
	if c.TargetURL != "https://www.linkedin.com/in/jane-doe" {
		t.Fatalf("unexpected normalized url %q", c.TargetURL)
	}
	if c.Status != capture.StatusQueued {
		t.Fatalf("expected queued, got %q", c.Status)
	}
	if c.OwnerID != owner {
		t.Fatalf("capture not scoped to owner")
	}
}

func TestCaptureSubmit_RejectsForeignURL(t *testing.T) {
	uc := NewCaptureUsecase(newMockCaptureRepo(), &mockCache{})

	_, err := uc.Submit(context.Background(), uuid.New(), "https://example.com/in/jane")
	if !errors.Is(err, ErrUnsupportedTarget) {
		t.Fatalf("expected ErrUnsupportedTarget, got %v", err)
	}
}

func TestCaptureSubmit_DuplicateWithinLockWindow(t *testing.T) {
	cache := &mockCache{}
	uc := NewCaptureUsecase(newMockCaptureRepo(), cache)
	owner := uuid.New()

	if _, err := uc.Submit(context.Background(), owner, "linkedin.com/posts/jane_activity-1"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := uc.Submit(context.Background(), owner, "linkedin.com/posts/jane_activity-1")
	if !errors.Is(err, ErrDuplicateCapture) {
		t.Fatalf("expected ErrDuplicateCapture, got %v", err)
	}
	if !cache.nxHit {
		t.Fatalf("expected dedupe lock to be consulted")
	}
}

func TestCaptureGet_OwnerScoping(t *testing.T) {
	repo := newMockCaptureRepo()
	uc := NewCaptureUsecase(repo, &mockCache{})
	owner := uuid.New()

	c, err := uc.Submit(context.Background(), owner, "linkedin.com/in/jane")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := uc.Get(context.Background(), uuid.New(), c.ID); !errors.Is(err, ErrCaptureNotFound) {
		t.Fatalf("expected foreign owner to see not found, got %v", err)
	}

	detail, err := uc.Get(context.Background(), owner, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Capture.ID != c.ID {
		t.Fatalf("unexpected capture returned")
	}
}

func TestCaptureGet_LoadsSnapshotsByKind(t *testing.T) {
	repo := newMockCaptureRepo()
	uc := NewCaptureUsecase(repo, &mockCache{})
	owner := uuid.New()

	c, err := uc.Submit(context.Background(), owner, "linkedin.com/posts/jane_act-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	repo.posts[c.ID] = []capture.PostSnapshot{{ID: uuid.New(), CaptureID: c.ID, OwnerID: owner, AuthorName: "Jane Doe"}}

	detail, err := uc.Get(context.Background(), owner, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.PostSnapshots) != 1 || detail.PostSnapshots[0].AuthorName != "Jane Doe" {
		t.Fatalf("expected post snapshot, got %+v", detail.PostSnapshots)
	}
	if detail.ProfileSnapshots != nil {
		t.Fatalf("expected no profile snapshots for a post capture")
	}
}
