package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"linklens/internal/database"
	"linklens/internal/domain/capture"
)

type CaptureRepository struct {
	db database.DB
}

func NewCaptureRepository(db database.DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

const captureColumns = `id, owner_id, target_url, kind, status, error, remote_run_id, requested_at, started_at, finished_at`

func (r *CaptureRepository) Create(ctx context.Context, c capture.Capture) (capture.Capture, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO captures (id, owner_id, target_url, kind, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+captureColumns,
		c.ID, c.OwnerID, c.TargetURL, string(c.Kind), string(capture.StatusQueued),
	)
	return scanCapture(row)
}

func (r *CaptureRepository) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (capture.Capture, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+captureColumns+` FROM captures WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	return scanCapture(row)
}

func (r *CaptureRepository) ListForOwner(ctx context.Context, f capture.ListFilter) ([]capture.Capture, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+captureColumns+` FROM captures
		 WHERE owner_id = $1
		 ORDER BY requested_at DESC
		 LIMIT $2 OFFSET $3`,
		f.OwnerID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]capture.Capture, 0, f.Limit)
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CaptureRepository) ClaimQueued(ctx context.Context, limit int) ([]capture.Capture, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := r.db.Query(ctx,
		`UPDATE captures SET status = 'running', started_at = now()
		 WHERE id IN (
			SELECT id FROM captures
			WHERE status = 'queued'
			ORDER BY requested_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+captureColumns,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]capture.Capture, 0, limit)
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CaptureRepository) Finish(ctx context.Context, id uuid.UUID, status capture.Status, errMsg string, remoteRunID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE captures SET status = $2, error = $3, remote_run_id = $4, finished_at = now() WHERE id = $1`,
		id, string(status), strings.TrimSpace(errMsg), strings.TrimSpace(remoteRunID),
	)
	return err
}

func (r *CaptureRepository) InsertPostSnapshots(ctx context.Context, snaps []capture.PostSnapshot) error {
	for _, s := range snaps {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO post_snapshots
			 (id, capture_id, owner_id, author_name, author_headline, author_url, content, reactions, comments, reposts, posted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			s.ID, s.CaptureID, s.OwnerID, s.AuthorName, s.AuthorHeadline, s.AuthorURL,
			s.Content, s.Reactions, s.Comments, s.Reposts, s.PostedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CaptureRepository) InsertProfileSnapshots(ctx context.Context, snaps []capture.ProfileSnapshot) error {
	for _, s := range snaps {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO profile_snapshots
			 (id, capture_id, owner_id, full_name, headline, location, about, current_company, follower_count, connection_count, profile_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			s.ID, s.CaptureID, s.OwnerID, s.FullName, s.Headline, s.Location, s.About,
			s.CurrentCompany, s.FollowerCount, s.ConnectionCount, s.ProfileURL,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CaptureRepository) PostSnapshotsForCapture(ctx context.Context, ownerID, captureID uuid.UUID) ([]capture.PostSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, capture_id, owner_id, author_name, author_headline, author_url, content, reactions, comments, reposts, posted_at, captured_at
		 FROM post_snapshots
		 WHERE capture_id = $1 AND owner_id = $2
		 ORDER BY captured_at`,
		captureID, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []capture.PostSnapshot
	for rows.Next() {
		var s capture.PostSnapshot
		err := rows.Scan(
			&s.ID, &s.CaptureID, &s.OwnerID, &s.AuthorName, &s.AuthorHeadline, &s.AuthorURL,
			&s.Content, &s.Reactions, &s.Comments, &s.Reposts, &s.PostedAt, &s.CapturedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CaptureRepository) ProfileSnapshotsForCapture(ctx context.Context, ownerID, captureID uuid.UUID) ([]capture.ProfileSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, capture_id, owner_id, full_name, headline, location, about, current_company, follower_count, connection_count, profile_url, captured_at
		 FROM profile_snapshots
		 WHERE capture_id = $1 AND owner_id = $2
		 ORDER BY captured_at`,
		captureID, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []capture.ProfileSnapshot
	for rows.Next() {
		var s capture.ProfileSnapshot
		err := rows.Scan(
			&s.ID, &s.CaptureID, &s.OwnerID, &s.FullName, &s.Headline, &s.Location, &s.About,
			&s.CurrentCompany, &s.FollowerCount, &s.ConnectionCount, &s.ProfileURL, &s.CapturedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CaptureRepository) AppendLog(ctx context.Context, captureID uuid.UUID, level, message string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO capture_logs (id, capture_id, level, message) VALUES ($1, $2, $3, $4)`,
		uuid.New(), captureID, level, message,
	)
	return err
}

func scanCapture(row database.Row) (capture.Capture, error) {
	var (
		c          capture.Capture
		kind       string
		status     string
		startedAt  *time.Time
		finishedAt *time.Time
	)
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.TargetURL, &kind, &status, &c.Error, &c.RemoteRunID,
		&c.RequestedAt, &startedAt, &finishedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return capture.Capture{}, capture.ErrNotFound
		}
		return capture.Capture{}, err
	}
	c.Kind = capture.Kind(kind)
	c.Status = capture.Status(status)
	c.StartedAt = startedAt
	c.FinishedAt = finishedAt
	return c, nil
}
