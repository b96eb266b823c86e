// Package rental flips equipment back to free once its last reservation
// is over. It runs as a periodic command, outside the request path.
package rental

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/astropret/rentcal/internal"
)

type Storage interface {
	RentedEquipment(context.Context) ([]*internal.Equipment, error)
	LastReservationEnd(_ context.Context, equipmentID string) (time.Time, error)
	SetEquipmentStatus(_ context.Context, ids []string, _ internal.EquipmentStatus) error
}

type Sweeper struct {
	output  io.Writer
	storage Storage
}

func New(output io.Writer, storage Storage) *Sweeper {
	if output == nil {
		output = os.Stdout
	}
	return &Sweeper{
		output:  output,
		storage: storage,
	}
}

// Sweep releases every rented equipment whose most recent reservation end
// is in the past. The latest end time is the authority; re-running the
// sweep is a no-op once everything is released.
func (s Sweeper) Sweep(ctx context.Context) (released int, err error) {
	rented, err := s.storage.RentedEquipment(ctx)
	if err != nil {
		return 0, err
	}
	if len(rented) == 0 {
		return 0, nil
	}

	now := time.Now()
	var free []string

	for _, eq := range rented {
		endsAt, err := s.storage.LastReservationEnd(ctx, eq.ID)
		if err != nil {
			return 0, err
		}
		if endsAt.IsZero() {
			// Rented but never reserved should not happen; release it so
			// it does not stay stuck.
			logf(s.output, "Equipment %s is rented without any reservation, releasing", eq.ID)
			free = append(free, eq.ID)
			continue
		}
		if endsAt.Before(now) {
			free = append(free, eq.ID)
		}
	}

	if len(free) == 0 {
		return 0, nil
	}
	err = s.storage.SetEquipmentStatus(ctx, free, internal.EquipmentFree)
	if err != nil {
		return 0, err
	}
	logf(s.output, "%d equipment released", len(free))
	return len(free), nil
}

func logf(w io.Writer, format string, a ...any) {
	internal.Logf(w, "rental:", format, a...)
}
