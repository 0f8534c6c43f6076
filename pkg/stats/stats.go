// Package stats computes summary statistics over leaderboard pages.
package stats

import (
	"slices"

	"github.com/Sternrassler/idalon-client/pkg/models"
)

// Median returns the middle value of values, or the mean of the two middle values when the
// count is even. The input is not modified. An empty input yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Average returns the arithmetic mean of values. An empty input yields 0.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Summary holds the statistics of one page.
type Summary struct {
	Count   int
	Median  float64
	Average float64
}

// Summarize computes the Summary of values.
func Summarize(values []float64) Summary {
	return Summary{
		Count:   len(values),
		Median:  Median(values),
		Average: Average(values),
	}
}

// NightTimes extracts the average real time of each night.
func NightTimes(nights []models.Night) []float64 {
	times := make([]float64, 0, len(nights))
	for _, night := range nights {
		times = append(times, night.AverageRealTime)
	}
	return times
}

// RunTimes extracts the real time of each run. Runs without a real time are skipped.
func RunTimes(runs []models.Run) []float64 {
	times := make([]float64, 0, len(runs))
	for _, run := range runs {
		if run.RealTime == nil {
			continue
		}
		times = append(times, *run.RealTime)
	}
	return times
}
