package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/idalon-client/pkg/metrics"
	"github.com/Sternrassler/idalon-client/pkg/models"
	"github.com/Sternrassler/idalon-client/pkg/pagination"
	"github.com/Sternrassler/idalon-client/pkg/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// WatchCmd periodically refreshes the first leaderboard page of each resource and
// serves the statistics on /metrics.
type WatchCmd struct {
	Addr     string        `help:"Listen address (overrides watch.addr)."`
	Interval time.Duration `help:"Refresh interval (overrides watch.interval)."`
}

func (c *WatchCmd) Run(ctx context.Context, a *app) error {
	addr := a.config.Watch.Addr
	if c.Addr != "" {
		addr = c.Addr
	}
	interval := a.config.Watch.Interval
	if c.Interval > 0 {
		interval = c.Interval
	}
	resources := a.config.Watch.Resources

	server := &http.Server{
		Addr:              addr,
		Handler:           newMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", addr).Dur("interval", interval).Strs("resources", resources).Msg("Starting watch server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("watch server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info().Msg("Stopping watch server")
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(ctx, a.transport, resources, a.logger)

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	return g.Wait()
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// refresh recomputes the first leaderboard page of every resource in parallel.
// Failures are logged and counted; the previous gauge values stay in place.
func refresh(ctx context.Context, transport pagination.Transport, resources []string, logger zerolog.Logger) {
	var g errgroup.Group

	for _, resource := range resources {
		g.Go(func() error {
			summary, err := firstPage(ctx, transport, resource)
			if err != nil {
				metrics.LeaderboardRefreshErrors.WithLabelValues(resource).Inc()
				logger.Warn().Err(err).Str("resource", resource).Msg("Leaderboard refresh failed")
				return nil
			}

			metrics.ObserveLeaderboard(resource, summary.Median, summary.Average, summary.Count)
			logger.Debug().
				Str("resource", resource).
				Float64("median", summary.Median).
				Float64("average", summary.Average).
				Msg("Leaderboard refreshed")
			return nil
		})
	}

	g.Wait()
}

func firstPage(ctx context.Context, transport pagination.Transport, resource string) (stats.Summary, error) {
	switch resource {
	case resourceNights:
		page, err := pagination.FindMany[models.Night](ctx, transport, models.LeaderboardNightFilters())
		if err != nil {
			return stats.Summary{}, err
		}
		return stats.Summarize(stats.NightTimes(page.Items)), nil
	case resourceRuns:
		page, err := pagination.FindMany[models.Run](ctx, transport, models.LeaderboardRunFilters())
		if err != nil {
			return stats.Summary{}, err
		}
		return stats.Summarize(stats.RunTimes(page.Items)), nil
	default:
		return stats.Summary{}, fmt.Errorf("unknown resource %q", resource)
	}
}
