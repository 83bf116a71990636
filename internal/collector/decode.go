package collector

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"linklens/internal/domain/capture"
)

// Dataset item shapes produced by the LinkedIn actors. Field names vary a
// little across actor versions, so the popular aliases are decoded too and
// merged with pickNonEmpty / pickPositive.
type apifyPostItem struct {
	AuthorName       string  `json:"authorName"`
	AuthorFullName   string  `json:"authorFullName"`
	AuthorHeadline   string  `json:"authorHeadline"`
	AuthorProfileURL string  `json:"authorProfileUrl"`
	Text             string  `json:"text"`
	Content          string  `json:"content"`
	NumLikes         int     `json:"numLikes"`
	LikesCount       int     `json:"likesCount"`
	NumComments      int     `json:"numComments"`
	CommentsCount    int     `json:"commentsCount"`
	NumShares        int     `json:"numShares"`
	RepostsCount     int     `json:"repostsCount"`
	PostedAtISO      *string `json:"postedAtISO"`
	Date             *string `json:"date"`
}

type apifyProfileItem struct {
	FullName       string `json:"fullName"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Headline       string `json:"headline"`
	Location       string `json:"addressWithCountry"`
	Geo            string `json:"location"`
	About          string `json:"about"`
	Summary        string `json:"summary"`
	CompanyName    string `json:"companyName"`
	Followers      int    `json:"followers"`
	FollowerCount  int    `json:"followersCount"`
	Connections    int    `json:"connections"`
	ConnectionsAlt int    `json:"connectionsCount"`
	LinkedinURL    string `json:"linkedinUrl"`
	URL            string `json:"url"`
}

func decodePostItems(c capture.Capture, items []json.RawMessage) []capture.PostSnapshot {
	now := time.Now().UTC()
	out := make([]capture.PostSnapshot, 0, len(items))
	for _, raw := range items {
		var it apifyPostItem
		if err := json.Unmarshal(raw, &it); err != nil {
			continue
		}
		content := pickNonEmpty(it.Text, it.Content)
		author := pickNonEmpty(it.AuthorName, it.AuthorFullName)
		if content == "" && author == "" {
			continue
		}
		out = append(out, capture.PostSnapshot{
			ID:             uuid.New(),
			CaptureID:      c.ID,
			OwnerID:        c.OwnerID,
			AuthorName:     author,
			AuthorHeadline: strings.TrimSpace(it.AuthorHeadline),
			AuthorURL:      strings.TrimSpace(it.AuthorProfileURL),
			Content:        content,
			Reactions:      pickPositive(it.NumLikes, it.LikesCount),
			Comments:       pickPositive(it.NumComments, it.CommentsCount),
			Reposts:        pickPositive(it.NumShares, it.RepostsCount),
			PostedAt:       parseRFC3339OrNil(firstNonNil(it.PostedAtISO, it.Date)),
			CapturedAt:     now,
		})
	}
	return out
}

func decodeProfileItems(c capture.Capture, items []json.RawMessage) []capture.ProfileSnapshot {
	now := time.Now().UTC()
	out := make([]capture.ProfileSnapshot, 0, len(items))
	for _, raw := range items {
		var it apifyProfileItem
		if err := json.Unmarshal(raw, &it); err != nil {
			continue
		}
		name := pickNonEmpty(it.FullName, strings.TrimSpace(it.FirstName+" "+it.LastName))
		if name == "" && strings.TrimSpace(it.Headline) == "" {
			continue
		}
		out = append(out, capture.ProfileSnapshot{
			ID:              uuid.New(),
			CaptureID:       c.ID,
			OwnerID:         c.OwnerID,
			FullName:        name,
			Headline:        strings.TrimSpace(it.Headline),
			Location:        pickNonEmpty(it.Location, it.Geo),
			About:           pickNonEmpty(it.About, it.Summary),
			CurrentCompany:  strings.TrimSpace(it.CompanyName),
			FollowerCount:   pickPositive(it.Followers, it.FollowerCount),
			ConnectionCount: pickPositive(it.Connections, it.ConnectionsAlt),
			ProfileURL:      pickNonEmpty(it.LinkedinURL, pickNonEmpty(it.URL, c.TargetURL)),
			CapturedAt:      now,
		})
	}
	return out
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

func pickPositive(a, b int) int {
	if a > 0 {
		return a
	}
	if b > 0 {
		return b
	}
	return 0
}

func firstNonNil(a, b *string) *string {
	if a != nil && strings.TrimSpace(*a) != "" {
		return a
	}
	return b
}

func parseRFC3339OrNil(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	tm, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	tm = tm.UTC()
	return &tm
}
