package collector

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"linklens/internal/domain/capture"
)

// PostScraper is the fallback collection path for post captures when no
// Apify token is configured. Public LinkedIn post pages expose the author
// and body through og: meta tags, which survive without a logged-in session.
type PostScraper struct{}

func NewPostScraper() *PostScraper {
	return &PostScraper{}
}

var reactionCountRe = regexp.MustCompile(`([\d.,]+)\s*(?:reactions?|likes?)`)
var commentCountRe = regexp.MustCompile(`([\d.,]+)\s*comments?`)

func (s *PostScraper) Scrape(ctx context.Context, c capture.Capture) ([]capture.PostSnapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scraper")
	}

	allowed := hostFromURL(c.TargetURL)
	var col *colly.Collector
	if allowed == "" {
		col = colly.NewCollector()
	} else {
		col = colly.NewCollector(colly.AllowedDomains(allowed))
	}
	_ = col.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, RandomDelay: 900 * time.Millisecond, Delay: 500 * time.Millisecond})

	var (
		author   string
		headline string
		content  string
		counters string
	)

	col.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	col.OnHTML(`meta[property="og:title"]`, func(e *colly.HTMLElement) {
		if author != "" {
			return
		}
		// og:title is "Author Name on LinkedIn: <first words of the post>".
		title := strings.TrimSpace(e.Attr("content"))
		if idx := strings.Index(title, " on LinkedIn"); idx > 0 {
			author = strings.TrimSpace(title[:idx])
		} else {
			author = title
		}
	})

	col.OnHTML(`meta[property="og:description"]`, func(e *colly.HTMLElement) {
		if content == "" {
			content = strings.TrimSpace(e.Attr("content"))
		}
	})

	col.OnHTML(`.attributed-text-segment-list__content`, func(e *colly.HTMLElement) {
		body := strings.TrimSpace(e.Text)
		if len(body) > len(content) {
			content = body
		}
	})

	col.OnHTML(`a[data-tracking-control-name*="actor"]`, func(e *colly.HTMLElement) {
		if headline == "" {
			headline = strings.TrimSpace(e.DOM.Find("p").First().Text())
		}
	})

	col.OnHTML(`[data-test-id="social-actions"]`, func(e *colly.HTMLElement) {
		if counters == "" {
			counters = strings.ToLower(strings.TrimSpace(e.Text))
		}
	})

	var reqErr error
	col.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := col.Visit(c.TargetURL); err != nil {
		return nil, err
	}
	col.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	if author == "" && content == "" {
		return nil, fmt.Errorf("post page yielded no content")
	}

	return []capture.PostSnapshot{{
		ID:             uuid.New(),
		CaptureID:      c.ID,
		OwnerID:        c.OwnerID,
		AuthorName:     author,
		AuthorHeadline: headline,
		Content:        content,
		Reactions:      countFrom(reactionCountRe, counters),
		Comments:       countFrom(commentCountRe, counters),
		CapturedAt:     time.Now().UTC(),
	}}, nil
}

func countFrom(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func hostFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Host
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Accept-Language": "en-US,en;q=0.9",
	}
}
