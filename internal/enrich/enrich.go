// Package enrich annotates work logs with optional text: a readable place
// name for coordinates and a one-line work summary. Every call is best-effort;
// callers must treat errors and empty results as "no annotation".
package enrich

import (
	"context"
	"time"

	"worktime/internal/model"
)

// PlaceNamer turns coordinates into a human readable place name
type PlaceNamer interface {
	PlaceName(ctx context.Context, loc model.Location) (string, error)
}

// Summarizer writes a short timesheet summary for a finished job
type Summarizer interface {
	Summarize(ctx context.Context, jobName string, worked time.Duration) (string, error)
}

// Enricher is both
type Enricher interface {
	PlaceNamer
	Summarizer
}

// Noop is used when no AI backend is configured
type Noop struct{}

func (Noop) PlaceName(context.Context, model.Location) (string, error) { return "", nil }

func (Noop) Summarize(context.Context, string, time.Duration) (string, error) { return "", nil }
