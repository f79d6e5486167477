package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/reservation-app/floor"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/repository"
)

// AssignmentService binds reservations to tables. A binding is live until
// the reservation's start plus AssignmentDuration; lapsed bindings are
// released lazily when another reservation claims the table.
type AssignmentService struct {
	store    repository.Store
	loc      *time.Location
	notifier Notifier
	now      func() time.Time
}

func NewAssignmentService(store repository.Store, loc *time.Location, notifier Notifier) *AssignmentService {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AssignmentService{store: store, loc: loc, notifier: notifier, now: time.Now}
}

// SetClock replaces the source of the current time.
func (s *AssignmentService) SetClock(now func() time.Time) {
	s.now = now
}

// Assign binds the reservation to the table with the given number.
func (s *AssignmentService) Assign(ctx context.Context, reservationID uint, tableNumber int) (*models.Reservation, error) {
	if tableNumber <= 0 {
		return nil, invalid("tableNumber", "must be a positive integer")
	}

	now := s.now()
	var (
		assigned *models.Reservation
		claimed  *models.Table
		freed    *models.Table
	)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		table, err := findTableByNumber(ctx, tx, tableNumber)
		if err != nil {
			return err
		}
		res, err := findReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if res.NumberOfPeople > table.MaxCapacity {
			return ErrCapacityExceeded
		}
		window, err := ReservationWindow(res.Date, res.Time, s.loc)
		if err != nil {
			return err
		}

		expected := table.AssignedReservationID
		if table.IsAssigned() && !table.HeldBy(res.ID) {
			if err := releaseStale(ctx, tx, table, now); err != nil {
				return err
			}
		}

		if res.TableNumber != nil && *res.TableNumber != table.TableNumber {
			freed, err = detachTable(ctx, tx, res.ID, *res.TableNumber)
			if err != nil {
				return err
			}
		}

		number := table.TableNumber
		expiresAt := window.ExpiresAt
		res.TableNumber = &number
		res.TableAssignmentExpiresAt = &expiresAt
		if err := tx.Reservations().Save(ctx, res); err != nil {
			return fmt.Errorf("save reservation %d: %w", res.ID, err)
		}

		if !table.HeldBy(res.ID) {
			ok, err := tx.Tables().SwapAssignment(ctx, table.ID, expected, &res.ID)
			if err != nil {
				return fmt.Errorf("claim table %d: %w", table.TableNumber, err)
			}
			if !ok {
				return ErrTableUnavailable
			}
			table.AssignedReservationID = &res.ID
		}

		assigned, claimed = res, table
		return nil
	})
	if err != nil {
		return nil, err
	}

	if freed != nil {
		s.notifier.Notify(ctx, Event{
			Name:    floor.EventTableReleased,
			Message: fmt.Sprintf("Table %d released by reservation #%d", freed.TableNumber, assigned.ID),
			Table:   freed,
		})
	}
	s.notifier.Notify(ctx, Event{
		Name:        floor.EventTableAssigned,
		Message:     fmt.Sprintf("Table %d assigned to %s (reservation #%d)", claimed.TableNumber, assigned.Name, assigned.ID),
		Reservation: assigned,
		Table:       claimed,
	})
	return assigned, nil
}

// Unassign clears the reservation's table binding. A reservation without a
// table is returned unchanged.
func (s *AssignmentService) Unassign(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	var (
		result *models.Reservation
		freed  *models.Table
	)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		res, err := findReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		result = res
		if !res.IsAssigned() {
			return nil
		}

		freed, err = releaseReservation(ctx, tx, res)
		return err
	})
	if err != nil {
		return nil, err
	}

	if freed != nil {
		s.notifier.Notify(ctx, Event{
			Name:        floor.EventTableReleased,
			Message:     fmt.Sprintf("Table %d released from reservation #%d", freed.TableNumber, result.ID),
			Reservation: result,
			Table:       freed,
		})
	}
	return result, nil
}

// AvailableTablesFor lists the tables large enough for the reservation that
// are free or already held by it, ordered by table number.
func (s *AssignmentService) AvailableTablesFor(ctx context.Context, reservationID uint) ([]models.Table, error) {
	res, err := findReservation(ctx, s.store, reservationID)
	if err != nil {
		return nil, err
	}
	tables, err := s.store.Tables().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	available := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if t.HeldBy(res.ID) || (!t.IsAssigned() && t.MaxCapacity >= res.NumberOfPeople) {
			available = append(available, t)
		}
	}
	return available, nil
}

// DeleteReservation releases the reservation's table and deletes it. If the
// release fails nothing is deleted.
func (s *AssignmentService) DeleteReservation(ctx context.Context, reservationID uint) error {
	var (
		deleted *models.Reservation
		freed   *models.Table
	)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		res, err := findReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if res.IsAssigned() {
			if freed, err = releaseReservation(ctx, tx, res); err != nil {
				return err
			}
		}
		if err := tx.Reservations().Delete(ctx, res.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("delete reservation %d: %w", res.ID, err)
		}
		deleted = res
		return nil
	})
	if err != nil {
		return err
	}

	if freed != nil {
		s.notifier.Notify(ctx, Event{
			Name:    floor.EventTableReleased,
			Message: fmt.Sprintf("Table %d released by deleted reservation #%d", freed.TableNumber, deleted.ID),
			Table:   freed,
		})
	}
	s.notifier.Notify(ctx, Event{
		Name:        floor.EventReservationDeleted,
		Message:     fmt.Sprintf("Reservation #%d for %s deleted", deleted.ID, deleted.Name),
		Reservation: deleted,
	})
	return nil
}

// ReleaseExpired clears every table binding whose reservation has lapsed or
// no longer exists and returns how many tables were freed.
func (s *AssignmentService) ReleaseExpired(ctx context.Context) (int, error) {
	now := s.now()
	released := 0

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		released = 0
		tables, err := tx.Tables().ListAssigned(ctx)
		if err != nil {
			return fmt.Errorf("list assigned tables: %w", err)
		}

		for i := range tables {
			table := &tables[i]
			holder, err := tx.Reservations().FindByID(ctx, *table.AssignedReservationID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				holder = nil
			case err != nil:
				return fmt.Errorf("find reservation %d: %w", *table.AssignedReservationID, err)
			case holder.HoldsLiveAssignment(now):
				continue
			}

			ok, err := tx.Tables().SwapAssignment(ctx, table.ID, table.AssignedReservationID, nil)
			if err != nil {
				return fmt.Errorf("release table %d: %w", table.TableNumber, err)
			}
			if !ok {
				continue
			}
			if holder != nil && pointsAt(holder, table.TableNumber) {
				holder.ClearAssignment()
				if err := tx.Reservations().Save(ctx, holder); err != nil {
					return fmt.Errorf("save reservation %d: %w", holder.ID, err)
				}
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if released > 0 {
		s.notifier.Notify(ctx, Event{
			Name:     floor.EventAssignmentsExpired,
			Message:  fmt.Sprintf("%d expired table assignment(s) released", released),
			Released: released,
		})
	}
	return released, nil
}

// releaseStale frees a table held by another reservation, or reports
// ErrTableUnavailable when that reservation's binding is still live.
func releaseStale(ctx context.Context, tx repository.Store, table *models.Table, now time.Time) error {
	holder, err := tx.Reservations().FindByID(ctx, *table.AssignedReservationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find reservation %d: %w", *table.AssignedReservationID, err)
	}
	if holder.HoldsLiveAssignment(now) {
		return ErrTableUnavailable
	}
	if pointsAt(holder, table.TableNumber) {
		holder.ClearAssignment()
		if err := tx.Reservations().Save(ctx, holder); err != nil {
			return fmt.Errorf("save reservation %d: %w", holder.ID, err)
		}
	}
	return nil
}

// releaseReservation clears both sides of the reservation's binding. A
// table that no longer exists does not block clearing the reservation.
func releaseReservation(ctx context.Context, tx repository.Store, res *models.Reservation) (*models.Table, error) {
	var freed *models.Table
	if res.TableNumber != nil {
		t, err := detachTable(ctx, tx, res.ID, *res.TableNumber)
		if err != nil {
			return nil, err
		}
		freed = t
	}

	res.ClearAssignment()
	if err := tx.Reservations().Save(ctx, res); err != nil {
		return nil, fmt.Errorf("save reservation %d: %w", res.ID, err)
	}
	return freed, nil
}

// detachTable clears the table's reference to reservationID if it still
// holds it and returns the freed table, or nil if nothing changed.
func detachTable(ctx context.Context, tx repository.Store, reservationID uint, tableNumber int) (*models.Table, error) {
	table, err := tx.Tables().FindByNumber(ctx, tableNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find table %d: %w", tableNumber, err)
	}
	if !table.HeldBy(reservationID) {
		return nil, nil
	}

	ok, err := tx.Tables().SwapAssignment(ctx, table.ID, &reservationID, nil)
	if err != nil {
		return nil, fmt.Errorf("release table %d: %w", tableNumber, err)
	}
	if !ok {
		return nil, nil
	}
	table.AssignedReservationID = nil
	return table, nil
}

func pointsAt(res *models.Reservation, tableNumber int) bool {
	return res.TableNumber != nil && *res.TableNumber == tableNumber
}

func findTableByNumber(ctx context.Context, store repository.Store, number int) (*models.Table, error) {
	table, err := store.Tables().FindByNumber(ctx, number)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find table %d: %w", number, err)
	}
	return table, nil
}

func findReservation(ctx context.Context, store repository.Store, id uint) (*models.Reservation, error) {
	res, err := store.Reservations().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation %d: %w", id, err)
	}
	return res, nil
}
