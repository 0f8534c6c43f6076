package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/idalon-client/pkg/models"
	"github.com/Sternrassler/idalon-client/pkg/pagination"
	"github.com/Sternrassler/idalon-client/pkg/stats"
	"golang.org/x/sync/errgroup"
)

// Leaderboard resources.
const (
	resourceNights = "nights"
	resourceRuns   = "runs"
)

// LeaderboardCmd walks a leaderboard and prints per-page statistics.
type LeaderboardCmd struct {
	Resource string `help:"Leaderboard to walk." enum:"nights,runs" default:"nights" short:"r"`
	Pages    int    `help:"Stop after this many pages (0 walks all pages)." default:"0" short:"n"`
}

// pageStats is the summary of one leaderboard page.
type pageStats struct {
	Page    int
	Total   int
	Summary stats.Summary
}

func (c *LeaderboardCmd) Run(ctx context.Context, a *app) error {
	if c.Pages < 0 {
		return fmt.Errorf("pages must be >= 0 (got %d)", c.Pages)
	}

	var (
		pages []pageStats
		err   error
	)
	switch c.Resource {
	case resourceNights:
		pages, err = leaderboard[models.Night](ctx, a.transport, models.LeaderboardNightFilters(), stats.NightTimes, c.Pages)
	case resourceRuns:
		pages, err = leaderboard[models.Run](ctx, a.transport, models.LeaderboardRunFilters(), stats.RunTimes, c.Pages)
	default:
		return fmt.Errorf("unknown resource %q", c.Resource)
	}

	for _, p := range pages {
		fmt.Fprintf(a.out, "%s page %d: %d of %d records, median %.2fs, average %.2fs\n",
			c.Resource, p.Page, p.Summary.Count, p.Total, p.Summary.Median, p.Summary.Average)
	}

	a.logger.Info().
		Str("resource", c.Resource).
		Int("pages", len(pages)).
		Msg("Leaderboard walked")

	if err != nil {
		return fmt.Errorf("%s leaderboard ended early: %w", c.Resource, err)
	}
	return nil
}

// leaderboard paginates T from filters and summarizes each page concurrently with the next fetch.
// maxPages of 0 walks every page. The returned pages are in leaderboard order.
func leaderboard[T pagination.Model[F], F any, PF pagination.Paginable[F]](
	ctx context.Context,
	transport pagination.Transport,
	filters F,
	times func([]T) []float64,
	maxPages int,
) ([]pageStats, error) {
	paginator := pagination.Paginate[T, F, PF](transport, filters)
	first := PF(&filters).Page()

	var results []*pageStats
	var g errgroup.Group
	g.SetLimit(4)

	for page := range paginator.All(ctx) {
		result := &pageStats{Page: first + len(results), Total: page.Total}
		results = append(results, result)

		items := page.Items
		g.Go(func() error {
			result.Summary = stats.Summarize(times(items))
			return nil
		})

		if maxPages > 0 && len(results) >= maxPages {
			break
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]pageStats, 0, len(results))
	for _, r := range results {
		out = append(out, *r)
	}
	return out, paginator.Err()
}
