package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/astropret/rentcal/internal"
)

const DriverName = "sqlite3"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) Events(ctx context.Context) ([]*internal.Event, error) {
	var events []Event

	err := s.db.SelectContext(ctx, &events, `
		SELECT id, external_id, title, description, starts_at, ends_at, all_day, source, updated_at
		FROM events
	`)
	if err != nil {
		return nil, err
	}

	res := make([]*internal.Event, len(events))
	for i, e := range events {
		res[i] = e.Convert()
	}
	return res, nil
}

// Event returns nil without error when no event carries the id.
func (s Storage) Event(ctx context.Context, id string) (*internal.Event, error) {
	var event Event
	err := s.db.GetContext(ctx, &event, `
		SELECT id, external_id, title, description, starts_at, ends_at, all_day, source, updated_at
		FROM events
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return event.Convert(), nil
}

// EventsByExternalID resolves all given external ids in a single query.
// Feeds can carry hundreds of entries, one lookup per entry does not fly.
func (s Storage) EventsByExternalID(ctx context.Context, ids []string) ([]*internal.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, external_id, title, description, starts_at, ends_at, all_day, source, updated_at
		FROM events
		WHERE external_id IN (?)
	`, ids)
	if err != nil {
		return nil, err
	}

	var events []Event
	err = s.db.SelectContext(ctx, &events, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	res := make([]*internal.Event, len(events))
	for i, e := range events {
		res[i] = e.Convert()
	}
	return res, nil
}

func (s Storage) SaveEvent(ctx context.Context, event *internal.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, external_id, title, description, starts_at, ends_at, all_day, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			external_id = excluded.external_id,
			title = excluded.title,
			description = excluded.description,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			all_day = excluded.all_day,
			updated_at = excluded.updated_at;
	`, event.ID, event.ExternalID, event.Title, event.Description,
		event.StartsAt, event.EndsAt, event.AllDay, event.Source.String(), event.UpdatedAt)
	return err
}

func (s Storage) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM events WHERE id = ?
	`, id)
	return err
}

// ImportEvents persists a batch of events in one transaction.
func (s Storage) ImportEvents(ctx context.Context, events []*internal.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, event := range events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, external_id, title, description, starts_at, ends_at, all_day, source, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, event.ID, event.ExternalID, event.Title, event.Description,
			event.StartsAt, event.EndsAt, event.AllDay, event.Source.String(), event.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s Storage) Token(ctx context.Context, platform string) (string, error) {
	var auth string
	err := s.db.GetContext(ctx, &auth, `
		SELECT auth FROM tokens WHERE platform = ?
	`, platform)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	return auth, err
}

func (s Storage) SetToken(ctx context.Context, platform, auth string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (platform, auth) VALUES (?, ?)
		ON CONFLICT(platform) DO UPDATE SET auth = excluded.auth;
	`, platform, auth)
	return err
}

func (s Storage) SaveEquipment(ctx context.Context, eq *internal.Equipment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO equipment (id, name, status) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, status = excluded.status;
	`, eq.ID, eq.Name, eq.Status.String())
	return err
}

func (s Storage) SaveReservation(ctx context.Context, r *internal.Reservation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, equipment_id, starts_at, ends_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET starts_at = excluded.starts_at, ends_at = excluded.ends_at;
	`, r.ID, r.EquipmentID, r.StartsAt, r.EndsAt)
	return err
}

func (s Storage) RentedEquipment(ctx context.Context) ([]*internal.Equipment, error) {
	var eqs []Equipment

	err := s.db.SelectContext(ctx, &eqs, `
		SELECT id, name, status FROM equipment WHERE status = ?
	`, internal.EquipmentRented.String())
	if err != nil {
		return nil, err
	}

	res := make([]*internal.Equipment, len(eqs))
	for i, e := range eqs {
		res[i] = e.Convert()
	}
	return res, nil
}

// LastReservationEnd returns the most recent reservation end for the
// equipment, or the zero time when it was never reserved.
func (s Storage) LastReservationEnd(ctx context.Context, equipmentID string) (time.Time, error) {
	var endsAt time.Time
	err := s.db.GetContext(ctx, &endsAt, `
		SELECT ends_at
		FROM reservations
		WHERE equipment_id = ?
		ORDER BY ends_at DESC
		LIMIT 1
	`, equipmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	return endsAt, err
}

// SetEquipmentStatus flips all given equipment in one transaction.
func (s Storage) SetEquipmentStatus(ctx context.Context, ids []string, status internal.EquipmentStatus) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		UPDATE equipment SET status = ? WHERE id IN (?)
	`, status.String(), ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return err
}
