package postgres

import (
	"context"

	"linklens/internal/database"
	"linklens/internal/domain/profile"
)

type ProfileRepository struct {
	db database.DB
}

func NewProfileRepository(db database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, subject_id, username, email, display_name, created_at, updated_at`

func (r *ProfileRepository) GetBySubject(ctx context.Context, subjectID string) (profile.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE subject_id = $1`,
		subjectID,
	)
	return scanProfile(row)
}

func (r *ProfileRepository) Create(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO profiles (id, subject_id, username, email, display_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+profileColumns,
		p.ID, p.SubjectID, p.Username, p.Email, p.DisplayName,
	)
	created, err := scanProfile(row)
	if err != nil {
		return profile.Profile{}, mapProfileConstraint(err)
	}
	return created, nil
}

// mapProfileConstraint translates a unique violation into the sentinel for
// the column that collided; the provisioner's retry policy depends on the
// distinction.
func mapProfileConstraint(err error) error {
	name, ok := uniqueConstraint(err)
	if !ok {
		return err
	}
	switch name {
	case "profiles_username_key":
		return profile.ErrUsernameTaken
	case "profiles_subject_id_key":
		return profile.ErrSubjectTaken
	case "profiles_email_key":
		return profile.ErrEmailTaken
	default:
		return err
	}
}

func scanProfile(row database.Row) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(&p.ID, &p.SubjectID, &p.Username, &p.Email, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}
