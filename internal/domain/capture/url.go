package capture

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrNotLinkedInURL = errors.New("not a linkedin url")
	ErrUnknownTarget  = errors.New("url is neither a post nor a profile")
)

// ClassifyURL validates a submitted LinkedIn URL and decides what kind of
// capture it is. Returns the normalized URL (https, host lowered, query and
// fragment dropped) and the kind.
func ClassifyURL(raw string) (string, Kind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return "", "", ErrNotLinkedInURL
	}

	path := strings.Trim(u.EscapedPath(), "/")
	segs := strings.Split(path, "/")

	var kind Kind
	switch {
	case len(segs) >= 2 && segs[0] == "in" && segs[1] != "":
		kind = KindProfile
		segs = segs[:2]
	case len(segs) >= 2 && segs[0] == "posts" && segs[1] != "":
		kind = KindPost
		segs = segs[:2]
	case len(segs) >= 3 && segs[0] == "feed" && segs[1] == "update" && segs[2] != "":
		kind = KindPost
		segs = segs[:3]
	case len(segs) >= 2 && segs[0] == "pulse" && segs[1] != "":
		kind = KindPost
		segs = segs[:2]
	default:
		return "", "", ErrUnknownTarget
	}

	normalized := "https://www.linkedin.com/" + strings.Join(segs, "/")
	return normalized, kind, nil
}
