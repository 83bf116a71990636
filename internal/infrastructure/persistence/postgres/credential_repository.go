package postgres

import (
	"context"

	"linklens/internal/database"
	"linklens/internal/domain/credential"
)

type CredentialRepository struct {
	db database.DB
}

func NewCredentialRepository(db database.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = `id, subject_id, email, password_hash, username_hint, first_name, last_name, full_name, created_at, updated_at`

func (r *CredentialRepository) Create(ctx context.Context, c credential.Credential) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO credentials (id, subject_id, email, password_hash, username_hint, first_name, last_name, full_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.SubjectID, c.Email, c.PasswordHash, c.UsernameHint, c.FirstName, c.LastName, c.FullName,
	)
	return err
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (credential.Credential, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE email = $1`,
		email,
	)
	return scanCredential(row)
}

func (r *CredentialRepository) GetBySubject(ctx context.Context, subjectID string) (credential.Credential, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE subject_id = $1`,
		subjectID,
	)
	return scanCredential(row)
}

func (r *CredentialRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	row := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM credentials WHERE email = $1)`, email)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanCredential(row database.Row) (credential.Credential, error) {
	var c credential.Credential
	err := row.Scan(
		&c.ID, &c.SubjectID, &c.Email, &c.PasswordHash,
		&c.UsernameHint, &c.FirstName, &c.LastName, &c.FullName,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return credential.Credential{}, credential.ErrNotFound
		}
		return credential.Credential{}, err
	}
	return c, nil
}
