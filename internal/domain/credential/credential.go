package credential

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("credential not found")

// Credential is an account in the built-in identity provider. The name and
// username fields are optional hints captured at registration; they travel
// inside issued tokens and feed profile provisioning.
type Credential struct {
	ID           uuid.UUID
	SubjectID    string
	Email        string
	PasswordHash string
	UsernameHint string
	FirstName    string
	LastName     string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, c Credential) error
	GetByEmail(ctx context.Context, email string) (Credential, error)
	GetBySubject(ctx context.Context, subjectID string) (Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
