package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/astropret/rentcal/internal"
)

const dateFormat = "2006-01-02"

func newRemoteEvent(event *calendar.Event) *internal.RemoteEvent {
	res := &internal.RemoteEvent{
		ExternalID:  event.Id,
		Title:       event.Summary,
		Description: event.Description,
	}
	if res.Title == "" {
		res.Title = "Untitled"
	}

	// All-day events come back with Date set instead of DateTime.
	if event.Start != nil {
		if event.Start.DateTime != "" {
			res.StartsAt, _ = time.Parse(time.RFC3339, event.Start.DateTime)
		} else {
			res.AllDay = true
			res.StartsAt, _ = time.Parse(dateFormat, event.Start.Date)
		}
	}
	if event.End != nil {
		if event.End.DateTime != "" {
			res.EndsAt, _ = time.Parse(time.RFC3339, event.End.DateTime)
		} else {
			res.EndsAt, _ = time.Parse(dateFormat, event.End.Date)
		}
	}
	return res
}

func newGoogleEvent(event *internal.Event) *calendar.Event {
	res := &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Reminders: &calendar.EventReminders{
			UseDefault: true,
		},
	}
	if event.AllDay {
		res.Start = &calendar.EventDateTime{Date: event.StartsAt.Format(dateFormat)}
		res.End = &calendar.EventDateTime{Date: event.EndsAt.Format(dateFormat)}
	} else {
		res.Start = &calendar.EventDateTime{DateTime: event.StartsAt.Format(time.RFC3339)}
		res.End = &calendar.EventDateTime{DateTime: event.EndsAt.Format(time.RFC3339)}
	}
	return res
}
