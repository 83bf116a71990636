package profile

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("profile not found")

	// Unique-constraint violations, distinguished by column. Only a username
	// collision is retryable; subject-id and email collisions signal a
	// genuinely conflicting identity.
	ErrUsernameTaken = errors.New("username already taken")
	ErrSubjectTaken  = errors.New("subject id already provisioned")
	ErrEmailTaken    = errors.New("email already taken")
)

type Repository interface {
	GetBySubject(ctx context.Context, subjectID string) (Profile, error)
	// Create inserts the profile and returns the stored row with its
	// database-assigned timestamps.
	Create(ctx context.Context, p Profile) (Profile, error)
}
