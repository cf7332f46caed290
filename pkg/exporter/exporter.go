package exporter

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"uranus/pkg/config"
	"uranus/pkg/errors"
	"uranus/pkg/logger"
	"uranus/pkg/pagination"
	"uranus/pkg/twitter"
)

// API is the transport the exporter needs
type API interface {
	pagination.Getter
	LookupUser(ctx context.Context, username string) (*twitter.User, http.Header, error)
	BaseURL() string
}

// Exporter drives user resolution, pagination, filtering, dedup, media
// resolution and dispatch. One Exporter serves one run.
type Exporter struct {
	cfg        *config.Config
	api        API
	limiter    pagination.Limiter
	dispatcher Dispatcher
	extract    LinkExtractor
	logger     logger.Logger
	runID      string
}

// New creates an Exporter with a fresh run id
func New(cfg *config.Config, api API, limiter pagination.Limiter, dispatcher Dispatcher, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	runID := uuid.NewString()
	return &Exporter{
		cfg:        cfg,
		api:        api,
		limiter:    limiter,
		dispatcher: dispatcher,
		extract:    LastToken,
		logger:     log.WithField("run_id", runID),
		runID:      runID,
	}
}

// RunID identifies this run in logs and summaries
func (e *Exporter) RunID() string {
	return e.runID
}

// SetLinkExtractor replaces the video link rule used by new resolvers
func (e *Exporter) SetLinkExtractor(fn LinkExtractor) {
	if fn != nil {
		e.extract = fn
	}
}

// Run exports every username. Users run concurrently up to
// cfg.Export.ParallelUsers; each user's own requests stay sequential.
// Per-user failures are logged and the run continues; only fatal errors
// and cancellation stop it.
func (e *Exporter) Run(ctx context.Context, usernames []string) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:   e.runID,
		Started: time.Now(),
		Users:   make([]*Summary, len(usernames)),
	}

	limit := e.cfg.Export.ParallelUsers
	if limit <= 0 {
		limit = 1
	}
	e.logger.InfoWithFields("Starting export run", map[string]interface{}{
		"users":    len(usernames),
		"mode":     e.cfg.Export.Mode,
		"parallel": limit,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	for i, username := range usernames {
		g.Go(func() error {
			s, err := e.ExportUser(gctx, username)

			mu.Lock()
			summary.Users[i] = s
			mu.Unlock()

			if err == nil {
				return nil
			}
			if errors.IsFatal(err) || isCancellation(err) {
				return err
			}
			e.logger.WithError(err).ErrorWithFields("User export failed", map[string]interface{}{"username": username})
			return nil
		})
	}
	err := g.Wait()

	summary.Finished = time.Now()
	for _, s := range summary.Users {
		if s != nil {
			summary.Totals.add(s)
		}
	}

	fields := summary.Totals.Counters()
	delete(fields, "resolved")
	fields["duration"] = summary.Finished.Sub(summary.Started)
	if err != nil {
		e.logger.WithError(err).ErrorWithFields("Export run aborted", fields)
		return summary, err
	}
	e.logger.InfoWithFields("Export run finished", fields)
	return summary, nil
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
