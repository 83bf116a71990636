package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the one row that exists per authenticated identity. SubjectID
// is the opaque identifier the identity provider assigned; Username is the
// derived display handle, unique across all profiles.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
