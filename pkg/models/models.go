// Package models declares the Idalon leaderboard resources and their query filters.
//
// Records decode from the API's camelCase JSON. Filters encode to query parameters through the
// `schema` tags and are validated with the `validate` tags before use.
package models

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BaseURL is the root of the Idalon v2 API.
const BaseURL = "https://api.idalon.com/v2"

// Ordering directions accepted by the API.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// LeaderboardSeason is the season the leaderboard presets rank.
const LeaderboardSeason = 3

var (
	baseURL  = mustParseURL(BaseURL)
	validate = validator.New()
)

// SquadMember is one player of a night's squad.
type SquadMember struct {
	UUID  *uuid.UUID `json:"uuid"`
	IGN   *string    `json:"ign"`
	Role  *string    `json:"role"`
	Scope string     `json:"scope"`
}

// Verification describes how a record was verified.
type Verification struct {
	Status     string  `json:"status"`
	VerifiedAt *string `json:"verifiedAt"`
}

// Eidolon is the timing breakdown of one eidolon encounter within a run.
// Times are in seconds from the start of the run.
type Eidolon struct {
	Result              string    `json:"result"`
	SpawnDelay          *float64  `json:"spawnDelay"`
	SpawnAnimationTime  *float64  `json:"spawnAnimationTime"`
	FirstLimbBreakTime  *float64  `json:"firstLimbBreakTime"`
	LastLimbBreakTime   *float64  `json:"lastLimbBreakTime"`
	MedianLimbBreakTime *float64  `json:"medianLimbBreakTime"`
	LimbBreakTimes      []float64 `json:"limbBreakTimes"`
	ShrineTime          *float64  `json:"shrineTime"`
	ShardInsertionTimes []float64 `json:"shardInsertionTimes"`
	CapshotTime         *float64  `json:"capshotTime"`
}

func resourceURL(resource string) *url.URL {
	return baseURL.JoinPath(resource)
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic("models: invalid base URL " + raw + ": " + err.Error())
	}
	return u
}

func ptr[T any](v T) *T {
	return &v
}
