package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"linklens/internal/domain/credential"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
)

// subjectPrefix marks subjects issued by the built-in provider; external
// identity providers use their own opaque formats.
const subjectPrefix = "local-"

type RegisterInput struct {
	Email    string
	Password string

	// optional hints that seed profile provisioning later
	Username  string
	FirstName string
	LastName  string
	FullName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type Service struct {
	credentials credential.Repository
}

func NewService(credentials credential.Repository) *Service {
	return &Service{credentials: credentials}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (credential.Credential, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return credential.Credential{}, ErrInvalidInput
	}
	if !isValidPassword(in.Password) {
		return credential.Credential{}, ErrInvalidInput
	}

	exists, err := s.credentials.ExistsByEmail(ctx, email)
	if err != nil {
		return credential.Credential{}, ErrInternal
	}
	if exists {
		return credential.Credential{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return credential.Credential{}, ErrInternal
	}

	id := uuid.New()
	c := credential.Credential{
		ID:           id,
		SubjectID:    subjectPrefix + id.String(),
		Email:        email,
		PasswordHash: string(hash),
		UsernameHint: strings.TrimSpace(in.Username),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		FullName:     strings.TrimSpace(in.FullName),
	}

	if err := s.credentials.Create(ctx, c); err != nil {
		// either we lost a concurrent registration race or the store is
		// down; re-check to report the former precisely
		exists, exErr := s.credentials.ExistsByEmail(ctx, email)
		if exErr == nil && exists {
			return credential.Credential{}, ErrEmailAlreadyRegistered
		}
		return credential.Credential{}, ErrInternal
	}

	created, err := s.credentials.GetBySubject(ctx, c.SubjectID)
	if err != nil {
		return credential.Credential{}, ErrInternal
	}
	return sanitize(created), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (credential.Credential, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return credential.Credential{}, ErrInvalidCredentials
	}
	if in.Password == "" {
		return credential.Credential{}, ErrInvalidCredentials
	}

	c, err := s.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return credential.Credential{}, ErrInvalidCredentials
		}
		return credential.Credential{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(in.Password)); err != nil {
		return credential.Credential{}, ErrInvalidCredentials
	}

	return sanitize(c), nil
}

func (s *Service) GetBySubject(ctx context.Context, subjectID string) (credential.Credential, error) {
	c, err := s.credentials.GetBySubject(ctx, strings.TrimSpace(subjectID))
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return credential.Credential{}, ErrInvalidCredentials
		}
		return credential.Credential{}, ErrInternal
	}
	return sanitize(c), nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= 8
}

func sanitize(c credential.Credential) credential.Credential {
	c.PasswordHash = ""
	return c
}
