package internal

import "time"

// Event is a record in our own store. ExternalID links it to the remote
// calendar; it stays empty for events that only exist locally.
type Event struct {
	ID          string
	ExternalID  string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	AllDay      bool
	Source      Source
	UpdatedAt   time.Time
}

// Linked reports whether the event has a remote counterpart.
func (e Event) Linked() bool {
	return e.ExternalID != ""
}

type Source string

func (s Source) String() string {
	return string(s)
}

var (
	// SourceManual marks events created through the booking/creation flow.
	SourceManual Source = "manual"
	// SourceFeed marks events pulled in by a feed import. They are
	// informational and never pushed back to the remote calendar.
	SourceFeed Source = "feed"
)

// RemoteEvent is what the remote calendar reports on a list call. It is
// never persisted, it only lives for the duration of a merge.
type RemoteEvent struct {
	ExternalID  string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	AllDay      bool
}

// MergedEvent is a single row of the unified calendar view, shaped the way
// the web layer expects it.
type MergedEvent struct {
	DisplayID   string    `json:"id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"start"`
	EndsAt      time.Time `json:"end"`
	AllDay      bool      `json:"allDay"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Editable    bool      `json:"editable"`
}

// One fixed color per provenance so the front-end can tell sources apart.
const (
	ColorFeed       = "#0dcaf0" // imported from a feed
	ColorLinked     = "#28a745" // manual, synced with the remote calendar
	ColorLocal      = "#007bff" // manual, local only
	ColorRemoteOnly = "#ffc107" // exists only on the remote calendar
	colorUnknown    = "#6c757d"
)

// EventColor derives the display color from the event's provenance.
func EventColor(e *Event) string {
	switch e.Source {
	case SourceFeed:
		return ColorFeed
	case SourceManual:
		if e.Linked() {
			return ColorLinked
		}
		return ColorLocal
	}
	return colorUnknown
}
