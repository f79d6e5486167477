package models

import "time"

// Table is a physical seating unit. AssignedReservationID points at the
// reservation currently holding it, if any.
type Table struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	TableNumber           int       `gorm:"not null;uniqueIndex" json:"tableNumber"`
	MaxCapacity           int       `gorm:"not null" json:"maxCapacity"`
	AssignedReservationID *uint     `gorm:"index" json:"assignedReservation"`
	CreatedAt             time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt             time.Time `gorm:"not null" json:"updatedAt"`
}

// IsAssigned reports whether the table references any reservation, live or not.
func (t *Table) IsAssigned() bool {
	return t.AssignedReservationID != nil
}

// HeldBy reports whether the table is bound to the given reservation.
func (t *Table) HeldBy(reservationID uint) bool {
	return t.AssignedReservationID != nil && *t.AssignedReservationID == reservationID
}
