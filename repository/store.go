// Package repository holds the storage contract for tables and reservations
// and its gorm implementation.
package repository

import (
	"context"
	"errors"

	"github.com/yeremiapane/reservation-app/models"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

type TableStore interface {
	FindByID(ctx context.Context, id uint) (*models.Table, error)
	// FindByNumber looks a table up by its public number, not its id.
	FindByNumber(ctx context.Context, number int) (*models.Table, error)
	Create(ctx context.Context, table *models.Table) error
	Save(ctx context.Context, table *models.Table) error
	Delete(ctx context.Context, id uint) error
	// ListAll returns every table ordered by table number.
	ListAll(ctx context.Context) ([]models.Table, error)
	// ListAssigned returns the tables that currently reference a reservation.
	ListAssigned(ctx context.Context) ([]models.Table, error)
	// SwapAssignment sets the table's assigned reservation to next only if it
	// still equals expected (nil meaning unassigned). It reports whether the
	// write happened.
	SwapAssignment(ctx context.Context, tableID uint, expected, next *uint) (bool, error)
}

type ReservationFilter struct {
	Date     string
	Email    string
	Assigned *bool
}

type ReservationStore interface {
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	Save(ctx context.Context, reservation *models.Reservation) error
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
}

// Store is a unit of work over both stores. Inside Transaction the callback
// receives a Store bound to the transaction: returning nil commits, returning
// an error rolls everything back.
type Store interface {
	Tables() TableStore
	Reservations() ReservationStore
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
