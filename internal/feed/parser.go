// Package feed fetches and parses bulk calendar feeds (ICS subscription
// URLs) into candidate events for the importer.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Event is a normalized candidate from the feed. UID is the feed's own
// stable identifier, it is what deduplication keys on.
type Event struct {
	UID         string
	Summary     string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time // zero when the feed carries no DTEND
	AllDay      bool
}

type Parser struct {
	client     *http.Client
	defaultLoc *time.Location
}

// NewParser builds a parser. defaultLoc anchors all-day and floating
// times; nil means UTC.
func NewParser(defaultLoc *time.Location) *Parser {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Parser{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		defaultLoc: defaultLoc,
	}
}

// Parse downloads the feed and returns its events. Entries without a UID
// are dropped, everything else the caller decides about.
func (p *Parser) Parse(ctx context.Context, rawURL string) ([]*Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NormalizeURL(rawURL), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: fetching %s: %s", rawURL, resp.Status)
	}

	cal, err := ical.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed: parsing calendar: %w", err)
	}

	events := make([]*Event, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		event, err := p.parseEvent(ve)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (p *Parser) parseEvent(ve *ical.VEvent) (*Event, error) {
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return nil, errors.New("missing UID")
	}

	event := &Event{UID: uid.Value}
	if prop := ve.GetProperty(ical.ComponentPropertySummary); prop != nil {
		event.Summary = prop.Value
	}
	if prop := ve.GetProperty(ical.ComponentPropertyDescription); prop != nil {
		event.Description = prop.Value
	}

	// All-day is encoded as DTSTART with no time-of-day component.
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return nil, errors.New("missing DTSTART")
	}
	event.AllDay = isDateOnly(dtStart)

	if event.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return nil, err
		}
		event.StartsAt = anchor(start, p.defaultLoc)
		if end, err := ve.GetAllDayEndAt(); err == nil {
			event.EndsAt = anchor(end, p.defaultLoc)
		}
		return event, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, err
	}
	event.StartsAt = start
	if end, err := ve.GetEndAt(); err == nil {
		event.EndsAt = end
	}
	return event, nil
}

func isDateOnly(prop *ical.IANAProperty) bool {
	if params := prop.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(prop.Value, "T")
}

// anchor re-reads a wall-clock value in the given location.
func anchor(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// NormalizeURL rewrites the webcal scheme calendar apps hand out into
// something an HTTP client can fetch.
func NormalizeURL(url string) string {
	switch {
	case strings.HasPrefix(url, "webcals://"):
		return "https://" + strings.TrimPrefix(url, "webcals://")
	case strings.HasPrefix(url, "webcal://"):
		return "http://" + strings.TrimPrefix(url, "webcal://")
	}
	return url
}
