package usecase

import (
	"context"
	"errors"
	"time"

	"linklens/internal/domain/profile"
	"linklens/internal/pkg/jwt"
	"linklens/internal/usecase/provision"
)

const profileCacheTTL = 10 * time.Minute

// SessionUsecase bootstraps a session: it turns a verified token's subject
// and claim hints into a provisioned profile, cached for the session's
// lifetime.
type SessionUsecase interface {
	Bootstrap(ctx context.Context, tokenClaims jwt.Claims) (profile.Profile, error)
}

type Session struct {
	provisioner *provision.Service
	cache       SessionCache
}

func NewSessionUsecase(provisioner *provision.Service, cache SessionCache) *Session {
	return &Session{provisioner: provisioner, cache: cache}
}

func (s *Session) Bootstrap(ctx context.Context, tokenClaims jwt.Claims) (profile.Profile, error) {
	subjectID := tokenClaims.Subject

	var cached profile.Profile
	if s.cache != nil {
		if ok, err := s.cache.GetJSON(ctx, profileCacheKey(subjectID), &cached); err == nil && ok {
			return cached, nil
		}
	}

	claims := profile.Claims{
		Username:  tokenClaims.Username,
		Email:     tokenClaims.Email,
		FirstName: tokenClaims.GivenName,
		LastName:  tokenClaims.FamilyName,
		FullName:  tokenClaims.FullName,
	}

	p, err := s.provisioner.GetOrCreate(ctx, subjectID, claims)
	if err != nil {
		// the loser of a concurrent first-provisioning race re-reads; the
		// second call lands on the read fast path
		var conflict *provision.IdentityConflictError
		if errors.As(err, &conflict) && errors.Is(err, profile.ErrSubjectTaken) {
			p, err = s.provisioner.GetOrCreate(ctx, subjectID, claims)
		}
		if err != nil {
			return profile.Profile{}, err
		}
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, profileCacheKey(subjectID), p, profileCacheTTL)
	}
	return p, nil
}
