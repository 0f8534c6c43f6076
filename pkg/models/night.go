package models

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Night is one recorded night of eidolon hunting, the unit the night leaderboard ranks.
type Night struct {
	UUID            uuid.UUID     `json:"uuid"`
	Scope           string        `json:"scope"`
	Verified        bool          `json:"verified"`
	Season          int           `json:"season"`
	SquadSize       int           `json:"squadSize"`
	CreatedAt       string        `json:"createdAt"`
	AverageRealTime float64       `json:"averageRealTime"`
	Users           []SquadMember `json:"users"`
	Verification    *Verification `json:"verification,omitempty"`
}

// ResourceURL returns the nights collection endpoint.
func (Night) ResourceURL() *url.URL {
	return resourceURL("nights")
}

// DefaultFilters returns DefaultNightFilters.
func (Night) DefaultFilters() NightFilters {
	return DefaultNightFilters()
}

// NightFilters are the query parameters of the nights listing.
type NightFilters struct {
	Offset         int    `schema:"offset" validate:"gte=0"`
	Limit          int    `schema:"limit" validate:"gte=1,lte=100"`
	VerifiedOnly   *bool  `schema:"verifiedOnly,omitempty"`
	Season         *int   `schema:"season,omitempty" validate:"omitempty,gte=1"`
	OrderBy        string `schema:"orderBy" validate:"required"`
	OrderDirection string `schema:"orderDirection" validate:"oneof=asc desc"`
}

// DefaultNightFilters lists the latest nights first, ten per page.
func DefaultNightFilters() NightFilters {
	return NightFilters{
		Offset:         0,
		Limit:          10,
		OrderBy:        "createdAt",
		OrderDirection: OrderDesc,
	}
}

// LeaderboardNightFilters ranks verified nights of the current season by average run time.
func LeaderboardNightFilters() NightFilters {
	return NightFilters{
		Offset:         0,
		Limit:          25,
		VerifiedOnly:   ptr(true),
		Season:         ptr(LeaderboardSeason),
		OrderBy:        "averageRealTime",
		OrderDirection: OrderAsc,
	}
}

// Page returns Offset/Limit.
func (f NightFilters) Page() int {
	if f.Limit <= 0 {
		return 0
	}
	return f.Offset / f.Limit
}

// SetPage moves Offset to the first item of page.
func (f *NightFilters) SetPage(page int) {
	f.Offset = page * f.Limit
}

// PageSize returns Limit.
func (f NightFilters) PageSize() int {
	return f.Limit
}

// Validate checks the filters against the API's accepted ranges.
func (f NightFilters) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid night filters: %w", err)
	}
	return nil
}
