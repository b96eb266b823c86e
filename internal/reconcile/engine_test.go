package reconcile_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astropret/rentcal/internal"
	"github.com/astropret/rentcal/internal/reconcile"
)

func newEngine(t *testing.T) (*reconcile.Engine, *fakeStorage, *fakeRemote) {
	t.Helper()
	storage := newFakeStorage()
	remote := newFakeRemote(storage.journal)
	return reconcile.New(io.Discard, remote, storage), storage, remote
}

func TestMergedEvents(t *testing.T) {
	engine, storage, remote := newEngine(t)

	storage.add(&internal.Event{
		ID:         "7",
		ExternalID: "g123",
		Title:      "Scope night",
		Source:     internal.SourceManual,
	})
	remote.events = []*internal.RemoteEvent{
		{ExternalID: "g123", Title: "Scope night"},
		{ExternalID: "g999", Title: "Other"},
	}

	merged, err := engine.MergedEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, merged, 2)

	assert.Equal(t, "local:7", merged[0].DisplayID)
	assert.True(t, merged[0].Editable)
	assert.Equal(t, internal.ColorLinked, merged[0].Color)

	assert.Equal(t, "g999", merged[1].DisplayID)
	assert.Equal(t, "Other", merged[1].Title)
	assert.False(t, merged[1].Editable)
	assert.Equal(t, internal.ColorRemoteOnly, merged[1].Color)
}

func TestMergedEventsCoversEveryLocalOnce(t *testing.T) {
	engine, storage, remote := newEngine(t)

	storage.add(&internal.Event{ID: "1", Source: internal.SourceManual, Title: "local only"})
	storage.add(&internal.Event{ID: "2", ExternalID: "gA", Source: internal.SourceManual})
	storage.add(&internal.Event{ID: "3", ExternalID: "feed-1", Source: internal.SourceFeed})
	remote.events = []*internal.RemoteEvent{
		{ExternalID: "gA"},
		{ExternalID: "gB"},
	}

	merged, err := engine.MergedEvents(context.Background())
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, m := range merged {
		seen[m.DisplayID]++
	}
	assert.Equal(t, map[string]int{
		"local:1": 1,
		"local:2": 1,
		"local:3": 1,
		"gB":      1,
	}, seen)
}

func TestMergedEventsColors(t *testing.T) {
	engine, storage, _ := newEngine(t)

	storage.add(&internal.Event{ID: "1", Source: internal.SourceFeed, ExternalID: "u1"})
	storage.add(&internal.Event{ID: "2", Source: internal.SourceManual, ExternalID: "g1"})
	storage.add(&internal.Event{ID: "3", Source: internal.SourceManual})

	merged, err := engine.MergedEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, internal.ColorFeed, merged[0].Color)
	assert.Equal(t, internal.ColorLinked, merged[1].Color)
	assert.Equal(t, internal.ColorLocal, merged[2].Color)
}

func TestMergedEventsRemoteFailure(t *testing.T) {
	engine, storage, remote := newEngine(t)

	storage.add(&internal.Event{ID: "1", Title: "still here", Source: internal.SourceManual})
	remote.listErr = errUnavailable

	merged, err := engine.MergedEvents(context.Background())
	require.NoError(t, err, "a failing remote fetch must not fail the list")
	require.Len(t, merged, 2)

	assert.Equal(t, "local:1", merged[0].DisplayID)

	placeholder := merged[1]
	assert.Contains(t, placeholder.Title, "unavailable")
	assert.False(t, placeholder.Editable)
	today := time.Now()
	assert.Equal(t, today.Day(), placeholder.StartsAt.Day())
}

func TestCreate(t *testing.T) {
	engine, storage, remote := newEngine(t)
	remote.nextID = "g42"

	res, err := engine.Create(context.Background(), reconcile.EventInput{
		Title:    "Telescope pickup",
		StartsAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, res.LocalOK)
	assert.True(t, res.RemoteOK)

	events, _ := storage.Events(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, "g42", events[0].ExternalID)
	assert.Equal(t, internal.SourceManual, events[0].Source)
	assert.NotEmpty(t, events[0].ID)
}

func TestCreateRemoteFailure(t *testing.T) {
	engine, storage, remote := newEngine(t)
	remote.createErr = errUnavailable

	res, err := engine.Create(context.Background(), reconcile.EventInput{Title: "Local only"})
	require.NoError(t, err, "local persist must not be blocked by the remote side")
	assert.True(t, res.LocalOK)
	assert.False(t, res.RemoteOK)

	// The event survives and shows up on later lists, without a link.
	events, _ := storage.Events(context.Background())
	require.Len(t, events, 1)
	assert.Empty(t, events[0].ExternalID)

	remote.listErr = nil
	merged, err := engine.MergedEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "Local only", merged[0].Title)
}

func TestUpdate(t *testing.T) {
	engine, storage, remote := newEngine(t)
	storage.add(&internal.Event{ID: "7", ExternalID: "g123", Title: "old", Source: internal.SourceManual})

	ref := internal.EventRef{Kind: internal.RefLocal, ID: "7"}
	res, err := engine.Update(context.Background(), ref, reconcile.EventInput{Title: "new"})
	require.NoError(t, err)
	assert.True(t, res.LocalOK)
	assert.True(t, res.RemoteOK)

	event, _ := storage.Event(context.Background(), "7")
	assert.Equal(t, "new", event.Title)
	assert.Equal(t, []string{"g123"}, remote.updated)
}

func TestUpdateUnlinkedSkipsRemote(t *testing.T) {
	engine, storage, remote := newEngine(t)
	storage.add(&internal.Event{ID: "7", Title: "old", Source: internal.SourceManual})

	ref := internal.EventRef{Kind: internal.RefLocal, ID: "7"}
	res, err := engine.Update(context.Background(), ref, reconcile.EventInput{Title: "new"})
	require.NoError(t, err)
	assert.True(t, res.LocalOK)
	assert.False(t, res.RemoteOK)
	assert.Empty(t, remote.updated)
}

func TestUpdateRemoteFailureKeepsLocalChange(t *testing.T) {
	engine, storage, remote := newEngine(t)
	storage.add(&internal.Event{ID: "7", ExternalID: "g123", Title: "old", Source: internal.SourceManual})
	remote.updateErr = errUnavailable

	ref := internal.EventRef{Kind: internal.RefLocal, ID: "7"}
	res, err := engine.Update(context.Background(), ref, reconcile.EventInput{Title: "new"})
	require.NoError(t, err)
	assert.True(t, res.LocalOK)
	assert.False(t, res.RemoteOK)

	event, _ := storage.Event(context.Background(), "7")
	assert.Equal(t, "new", event.Title, "the persisted local change must not be rolled back")
}

func TestUpdateRemoteOnlyRejected(t *testing.T) {
	engine, storage, remote := newEngine(t)
	storage.add(&internal.Event{ID: "7", Title: "untouched", Source: internal.SourceManual})

	ref := internal.EventRef{Kind: internal.RefRemote, ID: "g999"}
	_, err := engine.Update(context.Background(), ref, reconcile.EventInput{Title: "nope"})
	assert.ErrorIs(t, err, reconcile.ErrNotEditable)

	// No side effects on either store.
	event, _ := storage.Event(context.Background(), "7")
	assert.Equal(t, "untouched", event.Title)
	assert.Empty(t, remote.updated)
}

func TestUpdateNotFound(t *testing.T) {
	engine, _, _ := newEngine(t)

	ref := internal.EventRef{Kind: internal.RefLocal, ID: "missing"}
	_, err := engine.Update(context.Background(), ref, reconcile.EventInput{Title: "x"})
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
}

func TestDeleteRemoteThenLocal(t *testing.T) {
	engine, storage, _ := newEngine(t)
	storage.add(&internal.Event{ID: "7", ExternalID: "g123", Source: internal.SourceManual})

	res, err := engine.Delete(context.Background(), internal.EventRef{Kind: internal.RefLocal, ID: "7"})
	require.NoError(t, err)
	assert.True(t, res.LocalOK)
	assert.True(t, res.RemoteOK)

	assert.Equal(t, []string{"remote-delete:g123", "local-delete:7"}, *storage.journal)
}

func TestDeleteLocalProceedsOnRemoteFailure(t *testing.T) {
	engine, storage, remote := newEngine(t)
	storage.add(&internal.Event{ID: "7", ExternalID: "g123", Source: internal.SourceManual})
	remote.deleteErr = errUnavailable

	res, err := engine.Delete(context.Background(), internal.EventRef{Kind: internal.RefLocal, ID: "7"})
	require.NoError(t, err)
	assert.True(t, res.LocalOK)
	assert.False(t, res.RemoteOK)

	event, _ := storage.Event(context.Background(), "7")
	assert.Nil(t, event, "local delete must proceed even when the remote delete fails")
}

func TestDeleteRemoteOnly(t *testing.T) {
	engine, storage, _ := newEngine(t)

	res, err := engine.Delete(context.Background(), internal.EventRef{Kind: internal.RefRemote, ID: "g999"})
	require.NoError(t, err)
	assert.True(t, res.RemoteOK)
	assert.False(t, res.LocalOK)
	assert.Equal(t, []string{"remote-delete:g999"}, *storage.journal)
}

func TestDeleteNotFound(t *testing.T) {
	engine, storage, _ := newEngine(t)

	_, err := engine.Delete(context.Background(), internal.EventRef{Kind: internal.RefLocal, ID: "missing"})
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
	assert.Empty(t, *storage.journal, "a missing target must have no side effects")
}
