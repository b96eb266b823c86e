package reconcile

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/astropret/rentcal/internal"
	"github.com/astropret/rentcal/internal/feed"
)

// Parser turns a feed URL into candidate events. The feed package
// implements it.
type Parser interface {
	Parse(_ context.Context, url string) ([]*feed.Event, error)
}

// ImportResult is what a bulk import reports back. Error is set instead of
// the counts when the feed could not be read at all.
type ImportResult struct {
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// Importer bulk-imports feed events, skipping the ones already known.
type Importer struct {
	output  io.Writer
	parser  Parser
	storage Storage
}

func NewImporter(output io.Writer, parser Parser, storage Storage) *Importer {
	if output == nil {
		output = os.Stdout
	}
	return &Importer{
		output:  output,
		parser:  parser,
		storage: storage,
	}
}

// ImportURL fetches and parses the feed, then persists every candidate not
// already in the store. Re-importing an unchanged feed adds nothing. All
// failures come back inside the result, never as a panic or error past
// this boundary.
func (i Importer) ImportURL(ctx context.Context, url string) ImportResult {
	candidates, err := i.parser.Parse(ctx, url)
	if err != nil {
		logf(i.output, "Unable to read feed %s: %v", url, err)
		return ImportResult{Error: "unable to read the calendar feed: " + err.Error()}
	}
	if len(candidates) == 0 {
		return ImportResult{}
	}

	uids := make([]string, len(candidates))
	for n, c := range candidates {
		uids[n] = c.UID
	}

	// One batched lookup for the whole feed; feeds can carry hundreds of
	// entries.
	existing, err := i.storage.EventsByExternalID(ctx, uids)
	if err != nil {
		return ImportResult{Error: err.Error()}
	}
	known := make(map[string]struct{}, len(existing))
	for _, event := range existing {
		known[event.ExternalID] = struct{}{}
	}

	var res ImportResult
	now := time.Now()
	batch := make([]*internal.Event, 0, len(candidates))

	for _, c := range candidates {
		if _, ok := known[c.UID]; ok {
			res.Skipped++
			continue
		}

		endsAt := c.EndsAt
		if endsAt.IsZero() {
			endsAt = c.StartsAt
		}
		batch = append(batch, &internal.Event{
			ID:          uuid.NewString(),
			ExternalID:  c.UID,
			Title:       c.Summary,
			Description: c.Description,
			StartsAt:    c.StartsAt,
			EndsAt:      endsAt,
			AllDay:      c.AllDay,
			Source:      internal.SourceFeed,
			UpdatedAt:   now,
		})
		res.Added++
	}

	if len(batch) > 0 {
		err := i.storage.ImportEvents(ctx, batch)
		if err != nil {
			return ImportResult{Error: err.Error()}
		}
	}

	logf(i.output, "Feed import done: %d added, %d skipped", res.Added, res.Skipped)
	return res
}
