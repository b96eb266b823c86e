package internal

import (
	"context"
)

// Mux resolves a remote calendar implementation by platform name.
type Mux interface {
	Get(platform string) (RemoteCalendar, error)
}

// RemoteCalendar is the surface we need from the external calendar
// provider. Implementations own their credential lifecycle; calls must fail
// cleanly when credentials are stale rather than hang.
type RemoteCalendar interface {
	Events(context.Context) ([]*RemoteEvent, error)
	CreateEvent(_ context.Context, _ *Event) (externalID string, _ error)
	UpdateEvent(_ context.Context, externalID string, _ *Event) error
	DeleteEvent(_ context.Context, externalID string) error
}

// TokenStore persists provider credentials so a refreshed token survives
// the process.
type TokenStore interface {
	Token(_ context.Context, platform string) (string, error)
	SetToken(_ context.Context, platform, auth string) error
}
