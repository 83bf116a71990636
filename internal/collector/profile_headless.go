package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"linklens/internal/domain/capture"
)

// ProfileScraper is the fallback collection path for profile captures.
// Public profile pages render the top card client-side, so a headless
// browser is required to see it.
type ProfileScraper struct{}

func NewProfileScraper() *ProfileScraper {
	return &ProfileScraper{}
}

func (s *ProfileScraper) Scrape(ctx context.Context, c capture.Capture) ([]capture.ProfileSnapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scraper")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer reqCancel()

	var card struct {
		Name     string `json:"name"`
		Headline string `json:"headline"`
		Location string `json:"location"`
		About    string `json:"about"`
	}
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(c.TargetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(`(() => {
			const text = sel => {
				const el = document.querySelector(sel);
				return el ? el.textContent.trim() : '';
			};
			return {
				name: text('h1'),
				headline: text('.top-card-layout__headline') || text('h2'),
				location: text('.top-card-layout__first-subline .top-card__subline-item') || text('.top-card-layout__first-subline'),
				about: text('[data-section="summary"] p') || text('.core-section-container__content p'),
			};
		})()`, &card),
	)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(card.Name)
	if name == "" {
		return nil, fmt.Errorf("profile page yielded no top card")
	}

	return []capture.ProfileSnapshot{{
		ID:         uuid.New(),
		CaptureID:  c.ID,
		OwnerID:    c.OwnerID,
		FullName:   name,
		Headline:   strings.TrimSpace(card.Headline),
		Location:   strings.TrimSpace(card.Location),
		About:      strings.TrimSpace(card.About),
		ProfileURL: c.TargetURL,
		CapturedAt: time.Now().UTC(),
	}}, nil
}
