package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"linklens/internal/domain/capture"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

type ExportResult struct {
	ContentType string
	Filename    string
	Body        []byte
}

type ExportUsecase interface {
	Export(ctx context.Context, ownerID, captureID uuid.UUID, format string) (ExportResult, error)
}

type Export struct {
	captures CaptureUsecase
}

func NewExportUsecase(captures CaptureUsecase) *Export {
	return &Export{captures: captures}
}

func (u *Export) Export(ctx context.Context, ownerID, captureID uuid.UUID, format string) (ExportResult, error) {
	switch format {
	case ExportFormatCSV, ExportFormatJSON:
	default:
		return ExportResult{}, ErrUnsupportedFormat
	}

	detail, err := u.captures.Get(ctx, ownerID, captureID)
	if err != nil {
		return ExportResult{}, err
	}

	base := "capture-" + captureID.String()
	if format == ExportFormatJSON {
		body, err := json.MarshalIndent(detail, "", "  ")
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{
			ContentType: "application/json",
			Filename:    base + ".json",
			Body:        body,
		}, nil
	}

	var body []byte
	switch detail.Capture.Kind {
	case capture.KindPost:
		body, err = postsCSV(detail.PostSnapshots)
	case capture.KindProfile:
		body, err = profilesCSV(detail.ProfileSnapshots)
	default:
		return ExportResult{}, ErrUnsupportedFormat
	}
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{
		ContentType: "text/csv",
		Filename:    base + ".csv",
		Body:        body,
	}, nil
}

func postsCSV(snaps []capture.PostSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"author_name", "author_headline", "author_url", "content", "reactions", "comments", "reposts", "posted_at", "captured_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, s := range snaps {
		rec := []string{
			s.AuthorName,
			s.AuthorHeadline,
			s.AuthorURL,
			s.Content,
			strconv.Itoa(s.Reactions),
			strconv.Itoa(s.Comments),
			strconv.Itoa(s.Reposts),
			formatTimePtr(s.PostedAt),
			s.CapturedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func profilesCSV(snaps []capture.ProfileSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"full_name", "headline", "location", "about", "current_company", "follower_count", "connection_count", "profile_url", "captured_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, s := range snaps {
		rec := []string{
			s.FullName,
			s.Headline,
			s.Location,
			s.About,
			s.CurrentCompany,
			strconv.Itoa(s.FollowerCount),
			strconv.Itoa(s.ConnectionCount),
			s.ProfileURL,
			s.CapturedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
