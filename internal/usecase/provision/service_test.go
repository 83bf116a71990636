package provision

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"linklens/internal/domain/profile"
)

// memRepo enforces the same uniqueness rules the profiles table does, so
// the retry loop and the concurrency property can be exercised in-process.
type memRepo struct {
	mu         sync.Mutex
	bySubject  map[string]profile.Profile
	byUsername map[string]struct{}
	byEmail    map[string]struct{}

	createErr error
	creates   int
}

func newMemRepo() *memRepo {
	return &memRepo{
		bySubject:  map[string]profile.Profile{},
		byUsername: map[string]struct{}{},
		byEmail:    map[string]struct{}{},
	}
}

func (r *memRepo) GetBySubject(_ context.Context, subjectID string) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.bySubject[subjectID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) Create(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return profile.Profile{}, r.createErr
	}
	if _, ok := r.bySubject[p.SubjectID]; ok {
		return profile.Profile{}, profile.ErrSubjectTaken
	}
	if _, ok := r.byUsername[p.Username]; ok {
		return profile.Profile{}, profile.ErrUsernameTaken
	}
	if _, ok := r.byEmail[p.Email]; ok {
		return profile.Profile{}, profile.ErrEmailTaken
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.bySubject[p.SubjectID] = p
	r.byUsername[p.Username] = struct{}{}
	r.byEmail[p.Email] = struct{}{}
	return p, nil
}

func (r *memRepo) seed(subjectID, username, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := profile.Profile{ID: uuid.New(), SubjectID: subjectID, Username: username, Email: email}
	r.bySubject[subjectID] = p
	r.byUsername[username] = struct{}{}
	r.byEmail[email] = struct{}{}
}

func TestGetOrCreate_EmptySubject(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.GetOrCreate(context.Background(), "   ", profile.Claims{})
	if !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "sub_abc", profile.Claims{Email: "jane@x.com"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := svc.GetOrCreate(ctx, "sub_abc", profile.Claims{Email: "jane@x.com"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same profile id, got %s and %s", first.ID, second.ID)
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 create, got %d", repo.creates)
	}
}

func TestGetOrCreate_FullClaims(t *testing.T) {
	svc := NewService(newMemRepo())

	p, err := svc.GetOrCreate(context.Background(), "sub_1", profile.Claims{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.DisplayName != "Jane Doe" {
		t.Fatalf("expected display name Jane Doe, got %q", p.DisplayName)
	}
	if p.Username != "jane" {
		t.Fatalf("expected username jane, got %q", p.Username)
	}
	if p.Email != "jane@x.com" {
		t.Fatalf("expected email jane@x.com, got %q", p.Email)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
}

func TestGetOrCreate_EmptyClaims(t *testing.T) {
	svc := NewService(newMemRepo())

	p, err := svc.GetOrCreate(context.Background(), "sub_123", profile.Claims{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(p.Email, "sub_123") {
		t.Fatalf("expected placeholder email containing sub_123, got %q", p.Email)
	}
	if p.DisplayName != profile.EmailLocalPart(p.Email) {
		t.Fatalf("expected display name %q, got %q", profile.EmailLocalPart(p.Email), p.DisplayName)
	}
	if p.Username == "" {
		t.Fatalf("expected non-empty username")
	}
}

func TestGetOrCreate_NamePrecedence(t *testing.T) {
	cases := []struct {
		name   string
		claims profile.Claims
		want   string
	}{
		{"full name wins", profile.Claims{FullName: "A B", FirstName: "X", LastName: "Y", Email: "z@x.com"}, "A B"},
		{"first and last", profile.Claims{FirstName: "Jane", LastName: "Doe", Email: "z@x.com"}, "Jane Doe"},
		{"first alone", profile.Claims{FirstName: "Jane", Email: "z@x.com"}, "Jane"},
		{"last alone", profile.Claims{LastName: "Doe", Email: "z@x.com"}, "Doe"},
		{"whitespace is absent", profile.Claims{FullName: "  ", FirstName: " ", Email: "z@x.com"}, "z"},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(newMemRepo())
			p, err := svc.GetOrCreate(context.Background(), "sub_"+strings.Repeat("a", i+1), tc.claims)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if p.DisplayName != tc.want {
				t.Fatalf("expected display name %q, got %q", tc.want, p.DisplayName)
			}
		})
	}
}

func TestGetOrCreate_UsernameCollisionRetries(t *testing.T) {
	repo := newMemRepo()
	repo.seed("other_subject", "alice", "alice@elsewhere.com")
	svc := NewService(repo)

	p, err := svc.GetOrCreate(context.Background(), "sub_alice", profile.Claims{
		Username: "alice",
		Email:    "alice@x.com",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Username == "alice" {
		t.Fatalf("expected suffixed username, got bare %q", p.Username)
	}
	if !strings.HasPrefix(p.Username, "alice-") {
		t.Fatalf("expected username with alice- prefix, got %q", p.Username)
	}
	parts := strings.Split(p.Username, "-")
	if len(parts) != 3 || len(parts[1]) != 8 || parts[2] != "1" {
		t.Fatalf("expected seed-<8 id chars>-1, got %q", p.Username)
	}
}

// collideRepo forces a username violation on every seeded attempt so the
// final fallback path runs.
type collideRepo struct {
	*memRepo
	failures int
	maxFails int
}

func (r *collideRepo) Create(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	if r.failures < r.maxFails {
		r.failures++
		return profile.Profile{}, profile.ErrUsernameTaken
	}
	return r.memRepo.Create(ctx, p)
}

func TestGetOrCreate_FallbackAfterExhaustedAttempts(t *testing.T) {
	repo := &collideRepo{memRepo: newMemRepo(), maxFails: maxUsernameAttempts}
	svc := NewService(repo)

	p, err := svc.GetOrCreate(context.Background(), "sub|900-17", profile.Claims{Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Username != "bobsub90017" {
		t.Fatalf("expected fallback username bobsub90017, got %q", p.Username)
	}
	if repo.failures != maxUsernameAttempts {
		t.Fatalf("expected %d collisions before fallback, got %d", maxUsernameAttempts, repo.failures)
	}
}

func TestGetOrCreate_FallbackCollisionSurfaces(t *testing.T) {
	repo := &collideRepo{memRepo: newMemRepo(), maxFails: maxUsernameAttempts + 1}
	svc := NewService(repo)

	_, err := svc.GetOrCreate(context.Background(), "sub_x", profile.Claims{Email: "bob@x.com"})
	if !errors.Is(err, ErrUsernameExhausted) {
		t.Fatalf("expected ErrUsernameExhausted, got %v", err)
	}
}

func TestGetOrCreate_EmailConflictNotRetried(t *testing.T) {
	repo := newMemRepo()
	repo.seed("other_subject", "taken", "jane@x.com")
	svc := NewService(repo)

	_, err := svc.GetOrCreate(context.Background(), "sub_new", profile.Claims{Email: "jane@x.com"})
	var conflict *IdentityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected IdentityConflictError, got %v", err)
	}
	if conflict.SubjectID != "sub_new" {
		t.Fatalf("expected conflict to carry subject id, got %q", conflict.SubjectID)
	}
	if !errors.Is(err, profile.ErrEmailTaken) {
		t.Fatalf("expected cause ErrEmailTaken, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly 1 create attempt, got %d", repo.creates)
	}
}

func TestGetOrCreate_StoreFailureWrapsSubject(t *testing.T) {
	repo := newMemRepo()
	repo.createErr = errors.New("connection reset")
	svc := NewService(repo)

	_, err := svc.GetOrCreate(context.Background(), "sub_down", profile.Claims{Email: "a@b.com"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "sub_down") {
		t.Fatalf("expected error to carry subject id, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected no retry on store failure, got %d attempts", repo.creates)
	}
}

func TestGetOrCreate_ConcurrentFirstProvisioning(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	const callers = 16
	var wg sync.WaitGroup
	ids := make(chan uuid.UUID, callers)
	conflicts := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.GetOrCreate(context.Background(), "sub_race", profile.Claims{Email: "race@x.com"})
			if err != nil {
				var conflict *IdentityConflictError
				if !errors.As(err, &conflict) {
					t.Errorf("unexpected error kind: %v", err)
					return
				}
				conflicts <- err
				return
			}
			ids <- p.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(conflicts)

	durable, err := repo.GetBySubject(context.Background(), "sub_race")
	if err != nil {
		t.Fatalf("expected durable row: %v", err)
	}
	for id := range ids {
		if id != durable.ID {
			t.Fatalf("caller observed a different profile id")
		}
	}

	// losers of the race surface IdentityConflict; a follow-up call lands
	// on the read path
	for range conflicts {
		p, err := svc.GetOrCreate(context.Background(), "sub_race", profile.Claims{Email: "race@x.com"})
		if err != nil {
			t.Fatalf("re-read after conflict failed: %v", err)
		}
		if p.ID != durable.ID {
			t.Fatalf("re-read returned a different profile")
		}
	}
}
