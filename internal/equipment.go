package internal

import "time"

type EquipmentStatus string

func (s EquipmentStatus) String() string {
	return string(s)
}

var (
	EquipmentFree   EquipmentStatus = "free"
	EquipmentRented EquipmentStatus = "rented"
)

// Equipment is a rentable item. Its status is flipped back to free by the
// periodic sweep once its most recent reservation is over.
type Equipment struct {
	ID     string
	Name   string
	Status EquipmentStatus
}

type Reservation struct {
	ID          string
	EquipmentID string
	StartsAt    time.Time
	EndsAt      time.Time
}
