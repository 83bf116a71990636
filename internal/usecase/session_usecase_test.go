package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"linklens/internal/domain/profile"
	"linklens/internal/pkg/jwt"
	"linklens/internal/usecase/provision"
)

type memProfileRepo struct {
	mu         sync.Mutex
	bySubject  map[string]profile.Profile
	byUsername map[string]struct{}
	byEmail    map[string]struct{}
	lookups    int
	creates    int
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{
		bySubject:  map[string]profile.Profile{},
		byUsername: map[string]struct{}{},
		byEmail:    map[string]struct{}{},
	}
}

func (r *memProfileRepo) GetBySubject(_ context.Context, subjectID string) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	p, ok := r.bySubject[subjectID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (r *memProfileRepo) Create(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if _, ok := r.bySubject[p.SubjectID]; ok {
		return profile.Profile{}, profile.ErrSubjectTaken
	}
	if _, ok := r.byUsername[p.Username]; ok {
		return profile.Profile{}, profile.ErrUsernameTaken
	}
	if _, ok := r.byEmail[p.Email]; ok {
		return profile.Profile{}, profile.ErrEmailTaken
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.bySubject[p.SubjectID] = p
	r.byUsername[p.Username] = struct{}{}
	r.byEmail[p.Email] = struct{}{}
	return p, nil
}

type jsonCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *jsonCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *jsonCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *jsonCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *jsonCache) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}

func TestSessionBootstrap_ProvisionsAndCaches(t *testing.T) {
	repo := newMemProfileRepo()
	cache := &jsonCache{}
	uc := NewSessionUsecase(provision.NewService(repo), cache)

	claims := jwt.Claims{Subject: "local-1", Email: "jane@x.com", FullName: "Jane Doe"}

	first, err := uc.Bootstrap(context.Background(), claims)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if first.DisplayName != "Jane Doe" || first.Username != "jane" {
		t.Fatalf("unexpected profile %+v", first)
	}

	lookupsAfterFirst := repo.lookups
	second, err := uc.Bootstrap(context.Background(), claims)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same profile from cache")
	}
	if repo.lookups != lookupsAfterFirst {
		t.Fatalf("expected second bootstrap to be served from cache")
	}
}

func TestSessionBootstrap_CacheMissFallsThrough(t *testing.T) {
	repo := newMemProfileRepo()
	uc := NewSessionUsecase(provision.NewService(repo), nil)

	claims := jwt.Claims{Subject: "local-2", Email: "bob@x.com"}
	p1, err := uc.Bootstrap(context.Background(), claims)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	p2, err := uc.Bootstrap(context.Background(), claims)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if p1.ID != p2.ID {
		t.Fatalf("expected idempotent bootstrap without cache")
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 create, got %d", repo.creates)
	}
}
