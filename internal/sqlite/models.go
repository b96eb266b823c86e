package sqlite

import (
	"time"

	"github.com/astropret/rentcal/internal"
)

type Event struct {
	ID          string    `db:"id"`
	ExternalID  string    `db:"external_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	StartsAt    time.Time `db:"starts_at"`
	EndsAt      time.Time `db:"ends_at"`
	AllDay      bool      `db:"all_day"`
	Source      string    `db:"source"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (e Event) Convert() *internal.Event {
	return &internal.Event{
		ID:          e.ID,
		ExternalID:  e.ExternalID,
		Title:       e.Title,
		Description: e.Description,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		AllDay:      e.AllDay,
		Source:      internal.Source(e.Source),
		UpdatedAt:   e.UpdatedAt,
	}
}

type Equipment struct {
	ID     string `db:"id"`
	Name   string `db:"name"`
	Status string `db:"status"`
}

func (e Equipment) Convert() *internal.Equipment {
	return &internal.Equipment{
		ID:     e.ID,
		Name:   e.Name,
		Status: internal.EquipmentStatus(e.Status),
	}
}
