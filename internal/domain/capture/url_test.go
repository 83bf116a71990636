package capture

import (
	"errors"
	"testing"
)

func TestClassifyURL(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		wantURL  string
		wantKind Kind
		wantErr  error
	}{
		{
			name:     "profile url",
			in:       "https://www.linkedin.com/in/jane-doe-123/",
			wantURL:  "https://www.linkedin.com/in/jane-doe-123",
			wantKind: KindProfile,
		},
		{
			name:     "profile without scheme",
			in:       "linkedin.com/in/jane",
			wantURL:  "https://www.linkedin.com/in/jane",
			wantKind: KindProfile,
		},
		{
			name:     "post url with query stripped",
			in:       "https://www.linkedin.com/posts/jane-doe_something-activity-7123?utm_source=share",
			wantURL:  "https://www.linkedin.com/posts/jane-doe_something-activity-7123",
			wantKind: KindPost,
		},
		{
			name:     "feed update url",
			in:       "https://www.linkedin.com/feed/update/urn:li:activity:7123456789/",
			wantURL:  "https://www.linkedin.com/feed/update/urn:li:activity:7123456789",
			wantKind: KindPost,
		},
		{
			name:     "pulse article",
			in:       "https://www.linkedin.com/pulse/some-article-title-jane-doe",
			wantURL:  "https://www.linkedin.com/pulse/some-article-title-jane-doe",
			wantKind: KindPost,
		},
		{
			name:    "empty",
			in:      "   ",
			wantErr: ErrInvalidURL,
		},
		{
			name:    "not linkedin",
			in:      "https://example.com/in/jane",
			wantErr: ErrNotLinkedInURL,
		},
		{
			name:    "lookalike host rejected",
			in:      "https://evillinkedin.com/in/jane",
			wantErr: ErrNotLinkedInURL,
		},
		{
			name:    "company page unsupported",
			in:      "https://www.linkedin.com/company/acme",
			wantErr: ErrUnknownTarget,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, kind, err := ClassifyURL(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.wantURL {
				t.Fatalf("expected url %q, got %q", tc.wantURL, got)
			}
			if kind != tc.wantKind {
				t.Fatalf("expected kind %q, got %q", tc.wantKind, kind)
			}
		})
	}
}
