package reconcile

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/astropret/rentcal/internal"
)

var (
	// ErrNotFound means the identifier did not resolve to a stored event.
	ErrNotFound = errors.New("local event not found")
	// ErrNotEditable means the target lives only on the remote calendar.
	ErrNotEditable = errors.New("only local events can be edited")
)

// Storage is the persistence surface the engine needs. The sqlite package
// implements it.
type Storage interface {
	Events(context.Context) ([]*internal.Event, error)
	Event(_ context.Context, id string) (*internal.Event, error)
	EventsByExternalID(_ context.Context, ids []string) ([]*internal.Event, error)
	SaveEvent(context.Context, *internal.Event) error
	DeleteEvent(_ context.Context, id string) error
	ImportEvents(context.Context, []*internal.Event) error
}

// EventInput carries the caller-supplied fields of a create or update.
type EventInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	AllDay      bool
}

// MutationResult reports what each side of a best-effort write did. There
// is no rollback across the two stores, partial success is a normal
// outcome and must stay visible to the caller.
type MutationResult struct {
	LocalOK  bool   `json:"localOk"`
	RemoteOK bool   `json:"remoteOk"`
	Message  string `json:"message"`
}

// Engine merges the local store with the remote calendar for display and
// routes every mutation to the right side(s).
type Engine struct {
	output  io.Writer
	remote  internal.RemoteCalendar
	storage Storage
}

func New(output io.Writer, remote internal.RemoteCalendar, storage Storage) *Engine {
	if output == nil {
		output = os.Stdout
	}
	return &Engine{
		output:  output,
		remote:  remote,
		storage: storage,
	}
}

// MergedEvents returns the unified event list: every local event exactly
// once, then every remote event that no local event already links to.
// A failing remote fetch degrades to a placeholder row, local events must
// stay visible.
func (e Engine) MergedEvents(ctx context.Context) ([]internal.MergedEvent, error) {
	locals, err := e.storage.Events(ctx)
	if err != nil {
		return nil, err
	}

	merged := make([]internal.MergedEvent, 0, len(locals))
	linked := make(map[string]struct{})

	for _, event := range locals {
		merged = append(merged, internal.MergedEvent{
			DisplayID:   internal.LocalDisplayID(event.ID),
			Title:       event.Title,
			StartsAt:    event.StartsAt,
			EndsAt:      event.EndsAt,
			AllDay:      event.AllDay,
			Description: event.Description,
			Color:       internal.EventColor(event),
			Editable:    true,
		})
		if event.Linked() {
			linked[event.ExternalID] = struct{}{}
		}
	}

	remotes, err := e.remote.Events(ctx)
	if err != nil {
		logf(e.output, "Unable to fetch remote events: %v", err)
		return append(merged, remoteErrorEvent()), nil
	}

	for _, event := range remotes {
		if _, ok := linked[event.ExternalID]; ok {
			// Already shown through its local counterpart.
			continue
		}
		merged = append(merged, internal.MergedEvent{
			DisplayID:   event.ExternalID,
			Title:       event.Title,
			StartsAt:    event.StartsAt,
			EndsAt:      event.EndsAt,
			AllDay:      event.AllDay,
			Description: event.Description,
			Color:       internal.ColorRemoteOnly,
			Editable:    false,
		})
	}
	return merged, nil
}

// Create makes a manual event. The remote side goes first so we can store
// the link, but a remote failure never blocks the local persist: local
// data must not be lost because the integration is down.
func (e Engine) Create(ctx context.Context, in EventInput) (MutationResult, error) {
	now := time.Now()
	event := &internal.Event{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		AllDay:      in.AllDay,
		Source:      internal.SourceManual,
		UpdatedAt:   now,
	}

	var res MutationResult

	externalID, err := e.remote.CreateEvent(ctx, event)
	if err != nil {
		logf(e.output, "Unable to create event on the remote calendar: %v", err)
	} else {
		event.ExternalID = externalID
		res.RemoteOK = true
	}

	err = e.storage.SaveEvent(ctx, event)
	if err != nil {
		return res, err
	}
	res.LocalOK = true

	if res.RemoteOK {
		res.Message = "event created locally and synced with the remote calendar"
	} else {
		res.Message = "event created locally only"
	}
	return res, nil
}

// Update edits a stored event and pushes the change to the remote calendar
// when the event is linked. Remote-only rows are rejected, they are not
// ours to edit.
func (e Engine) Update(ctx context.Context, ref internal.EventRef, in EventInput) (MutationResult, error) {
	if ref.Kind != internal.RefLocal {
		return MutationResult{}, ErrNotEditable
	}

	event, err := e.storage.Event(ctx, ref.ID)
	if err != nil {
		return MutationResult{}, err
	}
	if event == nil {
		return MutationResult{}, ErrNotFound
	}

	event.Title = in.Title
	event.Description = in.Description
	event.StartsAt = in.StartsAt
	event.EndsAt = in.EndsAt
	event.AllDay = in.AllDay
	event.UpdatedAt = time.Now()

	err = e.storage.SaveEvent(ctx, event)
	if err != nil {
		return MutationResult{}, err
	}

	res := MutationResult{LocalOK: true, Message: "event updated locally"}
	if !event.Linked() {
		return res, nil
	}

	// The local change is already persisted, a remote failure here only
	// downgrades the message.
	err = e.remote.UpdateEvent(ctx, event.ExternalID, event)
	if err != nil {
		logf(e.output, "Unable to update event %s on the remote calendar: %v", event.ExternalID, err)
		res.Message = "event updated locally, remote update failed"
		return res, nil
	}
	res.RemoteOK = true
	res.Message = "event updated locally and on the remote calendar"
	return res, nil
}

// Delete removes an event. Linked events are deleted remotely first; the
// local delete proceeds regardless so the user is never stuck with a row
// they cannot act on.
func (e Engine) Delete(ctx context.Context, ref internal.EventRef) (MutationResult, error) {
	if ref.Kind == internal.RefRemote {
		err := e.remote.DeleteEvent(ctx, ref.ID)
		if err != nil {
			logf(e.output, "Unable to delete remote event %s: %v", ref.ID, err)
			return MutationResult{Message: "remote delete failed"}, nil
		}
		return MutationResult{RemoteOK: true, Message: "remote event deleted"}, nil
	}

	event, err := e.storage.Event(ctx, ref.ID)
	if err != nil {
		return MutationResult{}, err
	}
	if event == nil {
		return MutationResult{}, ErrNotFound
	}

	var res MutationResult
	if event.Linked() {
		err := e.remote.DeleteEvent(ctx, event.ExternalID)
		if err != nil {
			logf(e.output, "Unable to delete event %s from the remote calendar: %v", event.ExternalID, err)
		} else {
			res.RemoteOK = true
		}
	}

	err = e.storage.DeleteEvent(ctx, event.ID)
	if err != nil {
		return res, err
	}
	res.LocalOK = true

	switch {
	case !event.Linked():
		res.Message = "event deleted"
	case res.RemoteOK:
		res.Message = "event deleted locally and on the remote calendar"
	default:
		res.Message = "event deleted locally, remote delete failed"
	}
	return res, nil
}

// remoteErrorEvent is the placeholder row shown when the remote calendar
// cannot be reached.
func remoteErrorEvent() internal.MergedEvent {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return internal.MergedEvent{
		DisplayID: "remote-fetch-error",
		Title:     "Remote calendar unavailable",
		StartsAt:  today,
		EndsAt:    today,
		AllDay:    true,
		Color:     internal.ColorRemoteOnly,
	}
}
