package models

import "time"

type Reservation struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	Name                     string     `gorm:"type:varchar(255);not null" json:"name"`
	Email                    string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone                    string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Notes                    string     `gorm:"type:text" json:"notes,omitempty"`
	Date                     string     `gorm:"type:varchar(10);not null;index" json:"date"`
	Time                     string     `gorm:"type:varchar(5);not null" json:"time"`
	NumberOfPeople           int        `gorm:"not null" json:"numberOfPeople"`
	TableNumber              *int       `gorm:"index" json:"tableNumber"`
	TableAssignmentExpiresAt *time.Time `json:"tableAssignmentExpiresAt"`
	CreatedAt                time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt                time.Time  `gorm:"not null" json:"updatedAt"`
}

// IsAssigned reports whether the reservation currently holds a table number.
func (r *Reservation) IsAssigned() bool {
	return r.TableNumber != nil
}

// HoldsLiveAssignment reports whether the reservation's table binding has not
// lapsed at now. A binding without an expiry is never live.
func (r *Reservation) HoldsLiveAssignment(now time.Time) bool {
	return r.TableAssignmentExpiresAt != nil && r.TableAssignmentExpiresAt.After(now)
}

// ClearAssignment drops the reservation side of a table binding.
func (r *Reservation) ClearAssignment() {
	r.TableNumber = nil
	r.TableAssignmentExpiresAt = nil
}
