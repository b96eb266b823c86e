package internal

import (
	"errors"
	"strings"
)

// localPrefix tags display identifiers that point into our own store.
// Remote-only identifiers are the provider's id verbatim, no prefix.
const localPrefix = "local:"

var ErrEmptyRef = errors.New("empty event identifier")

type RefKind int

const (
	RefLocal RefKind = iota
	RefRemote
)

// EventRef is the parsed form of a display identifier. Callers branch on
// Kind instead of re-sniffing the raw string.
type EventRef struct {
	Kind RefKind
	ID   string
}

// ParseEventRef resolves a display identifier once, at the boundary.
func ParseEventRef(s string) (EventRef, error) {
	if s == "" {
		return EventRef{}, ErrEmptyRef
	}
	if id, ok := strings.CutPrefix(s, localPrefix); ok {
		if id == "" {
			return EventRef{}, ErrEmptyRef
		}
		return EventRef{Kind: RefLocal, ID: id}, nil
	}
	return EventRef{Kind: RefRemote, ID: s}, nil
}

// LocalDisplayID builds the display identifier for a stored event.
func LocalDisplayID(id string) string {
	return localPrefix + id
}
