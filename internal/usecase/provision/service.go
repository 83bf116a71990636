package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"linklens/internal/domain/profile"
)

// maxUsernameAttempts bounds the seeded-username insert loop. After it is
// exhausted one final insert runs with a collision-proof fallback handle.
const maxUsernameAttempts = 10

var (
	ErrInvalidSubject = errors.New("empty subject id")

	// ErrUsernameExhausted means every bounded attempt and the final
	// fallback handle collided. Not retried further.
	ErrUsernameExhausted = errors.New("username attempts exhausted")
)

// IdentityConflictError reports a unique violation on the subject id or
// email during creation: a genuinely conflicting identity, typically the
// loser of a concurrent first-time provisioning race. Callers resolve it by
// re-reading, not by retrying the insert.
type IdentityConflictError struct {
	SubjectID string
	Cause     error
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("identity conflict for subject %s: %v", e.SubjectID, e.Cause)
}

func (e *IdentityConflictError) Unwrap() error {
	return e.Cause
}

type Service struct {
	profiles profile.Repository
}

func NewService(profiles profile.Repository) *Service {
	return &Service{profiles: profiles}
}

// GetOrCreate returns the profile for the subject, creating it on first
// use. Repeated calls after the first successful creation always land on
// the read path. All mutual exclusion comes from the store's unique
// constraints; concurrent callers for the same subject leave exactly one
// durable row.
func (s *Service) GetOrCreate(ctx context.Context, subjectID string, claims profile.Claims) (profile.Profile, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return profile.Profile{}, ErrInvalidSubject
	}

	existing, err := s.profiles.GetBySubject(ctx, subjectID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, profile.ErrNotFound) {
		return profile.Profile{}, fmt.Errorf("lookup profile for subject %s: %w", subjectID, err)
	}

	email := claims.ResolveEmail(subjectID)
	displayName := claims.ResolveDisplayName(email)
	seed := claims.ResolveUsernameSeed(email)

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		id := uuid.New()
		username := seed
		if attempt > 0 {
			// Suffix from this attempt's own id: fresh and collision
			// resistant without a pre-check round trip.
			username = fmt.Sprintf("%s-%s-%d", seed, id.String()[:8], attempt)
		}

		created, err := s.create(ctx, subjectID, profile.Profile{
			ID:          id,
			SubjectID:   subjectID,
			Username:    username,
			Email:       email,
			DisplayName: displayName,
		})
		if err == nil {
			return created, nil
		}
		if errors.Is(err, profile.ErrUsernameTaken) {
			continue
		}
		return profile.Profile{}, err
	}

	// Final unconditional attempt with a handle that is astronomically
	// unlikely to collide. A collision here is surfaced, not retried.
	fallback := strings.ToLower(profile.EmailLocalPart(email)) + stripSeparators(subjectID)
	created, err := s.create(ctx, subjectID, profile.Profile{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		Username:    fallback,
		Email:       email,
		DisplayName: displayName,
	})
	if err == nil {
		return created, nil
	}
	if errors.Is(err, profile.ErrUsernameTaken) {
		return profile.Profile{}, fmt.Errorf("%w: subject %s", ErrUsernameExhausted, subjectID)
	}
	return profile.Profile{}, err
}

func (s *Service) create(ctx context.Context, subjectID string, p profile.Profile) (profile.Profile, error) {
	created, err := s.profiles.Create(ctx, p)
	if err == nil {
		return created, nil
	}
	switch {
	case errors.Is(err, profile.ErrUsernameTaken):
		return profile.Profile{}, err
	case errors.Is(err, profile.ErrSubjectTaken), errors.Is(err, profile.ErrEmailTaken):
		return profile.Profile{}, &IdentityConflictError{SubjectID: subjectID, Cause: err}
	default:
		return profile.Profile{}, fmt.Errorf("create profile for subject %s: %w", subjectID, err)
	}
}

func stripSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}
