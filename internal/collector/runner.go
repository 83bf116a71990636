package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"linklens/internal/config"
	"linklens/internal/domain/capture"
	apify "linklens/internal/infrastructure/collector"
	"linklens/internal/ws"
)

type actorAPI interface {
	StartRun(ctx context.Context, actorID string, targetURL string) (apify.Run, error)
	WaitForRun(ctx context.Context, runID string, pollEvery time.Duration) (apify.Run, error)
	DatasetItems(ctx context.Context, datasetID string) ([]json.RawMessage, error)
}

type postCollector interface {
	Scrape(ctx context.Context, c capture.Capture) ([]capture.PostSnapshot, error)
}

type profileCollector interface {
	Scrape(ctx context.Context, c capture.Capture) ([]capture.ProfileSnapshot, error)
}

// Runner drains the capture queue: it claims queued captures, collects data
// for each through the Apify actors when a token is configured (falling back
// to direct scraping otherwise), stores the snapshots, and marks the capture
// finished. Multiple runner instances can share one database safely because
// claiming is atomic.
type Runner struct {
	repo     capture.Repository
	actors   actorAPI
	posts    postCollector
	profiles profileCollector
	cfg      config.CollectorConfig
	logger   *log.Logger
}

func NewRunner(repo capture.Repository, cfg config.CollectorConfig, logger *log.Logger) *Runner {
	r := &Runner{
		repo:     repo,
		posts:    NewPostScraper(),
		profiles: NewProfileScraper(),
		cfg:      cfg,
		logger:   logger,
	}
	if cfg.ApifyToken != "" {
		if c := apify.NewClient(cfg.ApifyBaseURL, cfg.ApifyToken, logger); c != nil {
			r.actors = c
		}
	}
	return r
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return fmt.Errorf("nil runner/repo")
	}

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	pool := NewWorkerPool(workers, workers*2)
	pool.SetRateLimit(r.cfg.RatePerSec)
	results := pool.Run(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range results {
			if res.Err != nil && r.logger != nil {
				r.logger.Printf("[Collector] capture failed | error=%v", res.Err)
			}
		}
	}()

	poll := r.cfg.PollInterval
	if poll <= 0 {
		poll = 5 * time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pool.Close()
			<-done
			return ctx.Err()
		case <-ticker.C:
		}

		claimed, err := r.repo.ClaimQueued(ctx, workers)
		if err != nil {
			if r.logger != nil {
				r.logger.Printf("[Collector] claim error | error=%v", err)
			}
			continue
		}
		for _, c := range claimed {
			c := c
			pool.Submit(func(ctx context.Context) error {
				return r.process(ctx, c)
			})
		}
	}
}

func (r *Runner) process(ctx context.Context, c capture.Capture) error {
	_ = r.repo.AppendLog(ctx, c.ID, "info", fmt.Sprintf("collection started kind=%s url=%s", c.Kind, c.TargetURL))

	runID, err := r.collect(ctx, c)
	if err != nil {
		_ = r.repo.AppendLog(ctx, c.ID, "error", err.Error())
		if ferr := r.repo.Finish(ctx, c.ID, capture.StatusFailed, err.Error(), runID); ferr != nil {
			return ferr
		}
		ws.NotifyCaptureFinished(c.OwnerID.String(), c.ID.String(), string(capture.StatusFailed), string(c.Kind))
		return err
	}

	if ferr := r.repo.Finish(ctx, c.ID, capture.StatusSucceeded, "", runID); ferr != nil {
		return ferr
	}
	_ = r.repo.AppendLog(ctx, c.ID, "info", "collection finished")
	ws.NotifyCaptureFinished(c.OwnerID.String(), c.ID.String(), string(capture.StatusSucceeded), string(c.Kind))
	return nil
}

// collect gathers and stores the snapshots for one capture, returning the
// remote run id when the Apify path was used.
func (r *Runner) collect(ctx context.Context, c capture.Capture) (string, error) {
	switch c.Kind {
	case capture.KindPost:
		if r.actors != nil && r.cfg.PostActorID != "" {
			items, runID, err := r.runActor(ctx, r.cfg.PostActorID, c)
			if err != nil {
				return runID, err
			}
			snaps := decodePostItems(c, items)
			if len(snaps) == 0 {
				return runID, fmt.Errorf("actor run %s produced no usable post items", runID)
			}
			return runID, r.repo.InsertPostSnapshots(ctx, snaps)
		}
		snaps, err := r.posts.Scrape(ctx, c)
		if err != nil {
			return "", err
		}
		return "", r.repo.InsertPostSnapshots(ctx, snaps)

	case capture.KindProfile:
		if r.actors != nil && r.cfg.ProfileActorID != "" {
			items, runID, err := r.runActor(ctx, r.cfg.ProfileActorID, c)
			if err != nil {
				return runID, err
			}
			snaps := decodeProfileItems(c, items)
			if len(snaps) == 0 {
				return runID, fmt.Errorf("actor run %s produced no usable profile items", runID)
			}
			return runID, r.repo.InsertProfileSnapshots(ctx, snaps)
		}
		snaps, err := r.profiles.Scrape(ctx, c)
		if err != nil {
			return "", err
		}
		return "", r.repo.InsertProfileSnapshots(ctx, snaps)

	default:
		return "", fmt.Errorf("unknown capture kind %q", c.Kind)
	}
}

func (r *Runner) runActor(ctx context.Context, actorID string, c capture.Capture) ([]json.RawMessage, string, error) {
	run, err := r.actors.StartRun(ctx, actorID, c.TargetURL)
	if err != nil {
		return nil, "", err
	}
	_ = r.repo.AppendLog(ctx, c.ID, "info", fmt.Sprintf("actor run started run=%s actor=%s", run.ID, actorID))

	runID := run.ID
	run, err = r.actors.WaitForRun(ctx, runID, r.cfg.PollInterval)
	if err != nil {
		return nil, runID, err
	}
	items, err := r.actors.DatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, runID, err
	}
	return items, runID, nil
}
