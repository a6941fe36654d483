package domain

import (
	"math"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
)

// WordCounts locates a point in a book by words.
// ChapterProgress is the fraction of the chapter read, 0.0 - 1.0.
type WordCounts struct {
	Total           int64
	Chapter         int64
	Preceding       int64
	ChapterProgress float64
}

// Position is a location expressed against an edition's page count.
type Position struct {
	Page     int     `json:"value"`
	Possible int     `json:"possible"`
	Percent  float64 `json:"percent"`
}

// ComputeLocation returns the fraction of the book that precedes the point:
// (preceding + chapter × progress) / total.
// Chapter progress is device input and is not clamped.
func ComputeLocation(wc WordCounts) (float64, error) {
	if wc.Total <= 0 {
		return 0, syncerrors.InvalidInputf("total word count must be positive, got %d", wc.Total)
	}
	if math.IsNaN(wc.ChapterProgress) || math.IsInf(wc.ChapterProgress, 0) {
		return 0, syncerrors.InvalidInputf("chapter progress is not a number: %v", wc.ChapterProgress)
	}

	return (float64(wc.Preceding) + float64(wc.Chapter)*wc.ChapterProgress) / float64(wc.Total), nil
}

// PositionAt converts a location fraction into a page of an edition with pages pages.
func PositionAt(location float64, pages int) Position {
	return Position{
		Page:     int(math.Round(float64(pages) * location)),
		Possible: pages,
		Percent:  location * 100,
	}
}

// ProgressPages returns the page reached at a whole read percentage.
// Integer division truncates, so 99% of 250 pages is page 247.
func ProgressPages(pages, percent int) int {
	return pages * percent / 100
}

// PageAtPercent returns the nearest page for a fractional percentage.
func PageAtPercent(pages int, percent float64) int {
	return int(math.Round(float64(pages) * (percent / 100)))
}
