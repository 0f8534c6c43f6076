package models

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Run is a single eidolon run within a night.
// Times are in seconds; optional ones are nil when the run was not timed that far.
type Run struct {
	UUID                       uuid.UUID    `json:"uuid"`
	Verified                   bool         `json:"verified"`
	LastHydrolystLimbBreakTime *float64     `json:"lastHydrolystLimbBreakTime"`
	RealTime                   *float64     `json:"realTime"`
	ExtractionTime             float64      `json:"extractionTime"`
	LoadTime                   *float64     `json:"loadTime"`
	MedianLimbBreakTime        *float64     `json:"medianLimbBreakTime"`
	Night                      NightSummary `json:"night"`
	Eidolons                   []Eidolon    `json:"eidolons"`
}

// NightSummary is the night a run belongs to, as embedded in run responses.
type NightSummary struct {
	UUID      uuid.UUID     `json:"uuid"`
	Scope     string        `json:"scope"`
	Verified  bool          `json:"verified"`
	Season    int           `json:"season"`
	SquadSize int           `json:"squadSize"`
	CreatedAt string        `json:"createdAt"`
	Users     []SquadMember `json:"users"`
}

// ResourceURL returns the runs collection endpoint.
func (Run) ResourceURL() *url.URL {
	return resourceURL("runs")
}

// DefaultFilters returns DefaultRunFilters.
func (Run) DefaultFilters() RunFilters {
	return DefaultRunFilters()
}

// RunFilters are the query parameters of the runs listing.
type RunFilters struct {
	Offset         int    `schema:"offset" validate:"gte=0"`
	Limit          int    `schema:"limit" validate:"gte=1,lte=100"`
	VerifiedOnly   *bool  `schema:"verifiedOnly,omitempty"`
	Season         *int   `schema:"season,omitempty" validate:"omitempty,gte=1"`
	OrderBy        string `schema:"orderBy" validate:"required"`
	OrderDirection string `schema:"orderDirection" validate:"oneof=asc desc"`
}

// DefaultRunFilters lists the latest runs first, ten per page.
func DefaultRunFilters() RunFilters {
	return RunFilters{
		Offset:         0,
		Limit:          10,
		OrderBy:        "createdAt",
		OrderDirection: OrderDesc,
	}
}

// LeaderboardRunFilters ranks verified runs of the current season by real time.
func LeaderboardRunFilters() RunFilters {
	return RunFilters{
		Offset:         0,
		Limit:          50,
		VerifiedOnly:   ptr(true),
		Season:         ptr(LeaderboardSeason),
		OrderBy:        "realTime",
		OrderDirection: OrderAsc,
	}
}

// Page returns Offset/Limit.
func (f RunFilters) Page() int {
	if f.Limit <= 0 {
		return 0
	}
	return f.Offset / f.Limit
}

// SetPage moves Offset to the first item of page.
func (f *RunFilters) SetPage(page int) {
	f.Offset = page * f.Limit
}

// PageSize returns Limit.
func (f RunFilters) PageSize() int {
	return f.Limit
}

// Validate checks the filters against the API's accepted ranges.
func (f RunFilters) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid run filters: %w", err)
	}
	return nil
}
