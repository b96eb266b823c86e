package reconcile_test

import (
	"context"
	"errors"

	"github.com/astropret/rentcal/internal"
	"github.com/astropret/rentcal/internal/feed"
)

// fakeStorage is an in-memory reconcile.Storage. The journal records
// cross-fake call ordering when shared with a fakeRemote.
type fakeStorage struct {
	events  map[string]*internal.Event
	order   []string
	journal *[]string

	saveErr    error
	importErr  error
	importRuns int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		events:  make(map[string]*internal.Event),
		journal: new([]string),
	}
}

func (s *fakeStorage) add(event *internal.Event) {
	cp := *event
	if _, ok := s.events[event.ID]; !ok {
		s.order = append(s.order, event.ID)
	}
	s.events[event.ID] = &cp
}

func (s *fakeStorage) Events(context.Context) ([]*internal.Event, error) {
	res := make([]*internal.Event, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.events[id]
		res = append(res, &cp)
	}
	return res, nil
}

func (s *fakeStorage) Event(_ context.Context, id string) (*internal.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	cp := *event
	return &cp, nil
}

func (s *fakeStorage) EventsByExternalID(_ context.Context, ids []string) ([]*internal.Event, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var res []*internal.Event
	for _, id := range s.order {
		event := s.events[id]
		if _, ok := want[event.ExternalID]; ok {
			cp := *event
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *fakeStorage) SaveEvent(_ context.Context, event *internal.Event) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.add(event)
	return nil
}

func (s *fakeStorage) DeleteEvent(_ context.Context, id string) error {
	*s.journal = append(*s.journal, "local-delete:"+id)
	delete(s.events, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStorage) ImportEvents(_ context.Context, events []*internal.Event) error {
	if s.importErr != nil {
		return s.importErr
	}
	s.importRuns++
	for _, event := range events {
		s.add(event)
	}
	return nil
}

type fakeRemote struct {
	events  []*internal.RemoteEvent
	nextID  string
	journal *[]string

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	updated []string
}

func newFakeRemote(journal *[]string) *fakeRemote {
	return &fakeRemote{
		nextID:  "g-new",
		journal: journal,
	}
}

func (r *fakeRemote) Events(context.Context) ([]*internal.RemoteEvent, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.events, nil
}

func (r *fakeRemote) CreateEvent(_ context.Context, _ *internal.Event) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	return r.nextID, nil
}

func (r *fakeRemote) UpdateEvent(_ context.Context, externalID string, _ *internal.Event) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated = append(r.updated, externalID)
	return nil
}

func (r *fakeRemote) DeleteEvent(_ context.Context, externalID string) error {
	*r.journal = append(*r.journal, "remote-delete:"+externalID)
	return r.deleteErr
}

type fakeParser struct {
	events []*feed.Event
	err    error
}

func (p fakeParser) Parse(context.Context, string) ([]*feed.Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.events, nil
}

var errUnavailable = errors.New("remote calendar unavailable")
