package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/yeremiapane/reservation-app/floor"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/repository"
)

type ReservationInput struct {
	Name           string
	Email          string
	Phone          string
	Notes          string
	Date           string
	Time           string
	NumberOfPeople int
}

// ReservationPatch carries the editable fields of a reservation; nil
// fields are left untouched.
type ReservationPatch struct {
	Name           *string
	Email          *string
	Phone          *string
	Notes          *string
	Date           *string
	Time           *string
	NumberOfPeople *int
}

// ReservationService manages guest reservations. Table bindings are
// handled by AssignmentService.
type ReservationService struct {
	store    repository.Store
	loc      *time.Location
	notifier Notifier
}

func NewReservationService(store repository.Store, loc *time.Location, notifier Notifier) *ReservationService {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReservationService{store: store, loc: loc, notifier: notifier}
}

// CreateReservation stores a new, unassigned reservation.
func (s *ReservationService) CreateReservation(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	clock, err := NormalizeClock(in.Time)
	if err != nil {
		return nil, err
	}
	if in.NumberOfPeople < 1 {
		return nil, invalid("numberOfPeople", "must be at least 1")
	}

	res := &models.Reservation{
		Name:           name,
		Email:          email,
		Phone:          strings.TrimSpace(in.Phone),
		Notes:          strings.TrimSpace(in.Notes),
		Date:           date,
		Time:           clock,
		NumberOfPeople: in.NumberOfPeople,
	}
	if err := s.store.Reservations().Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.notifier.Notify(ctx, Event{
		Name: floor.EventReservationCreated,
		Message: fmt.Sprintf("New reservation #%d: %s, %d people on %s at %s",
			res.ID, res.Name, res.NumberOfPeople, res.Date, res.Time),
		Reservation: res,
	})
	return res, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	return findReservation(ctx, s.store, id)
}

func (s *ReservationService) ListReservations(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error) {
	if filter.Date != "" {
		date, err := NormalizeDate(filter.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = date
	}
	filter.Email = strings.ToLower(strings.TrimSpace(filter.Email))

	reservations, err := s.store.Reservations().ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

// UpdateReservation edits guest details, date, time and party size. For an
// assigned reservation the party must still fit the table and the binding
// expiry follows the new start.
func (s *ReservationService) UpdateReservation(ctx context.Context, id uint, patch ReservationPatch) (*models.Reservation, error) {
	var updated *models.Reservation

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		res, err := findReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyPatch(res, patch); err != nil {
			return err
		}

		if res.IsAssigned() {
			if patch.NumberOfPeople != nil {
				table, err := tx.Tables().FindByNumber(ctx, *res.TableNumber)
				switch {
				case errors.Is(err, repository.ErrNotFound):
				case err != nil:
					return fmt.Errorf("find table %d: %w", *res.TableNumber, err)
				case res.NumberOfPeople > table.MaxCapacity:
					return ErrCapacityExceeded
				}
			}
			if patch.Date != nil || patch.Time != nil {
				window, err := ReservationWindow(res.Date, res.Time, s.loc)
				if err != nil {
					return err
				}
				expiresAt := window.ExpiresAt
				res.TableAssignmentExpiresAt = &expiresAt
			}
		}

		if err := tx.Reservations().Save(ctx, res); err != nil {
			return fmt.Errorf("save reservation %d: %w", res.ID, err)
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Event{
		Name:        floor.EventReservationUpdated,
		Message:     fmt.Sprintf("Reservation #%d for %s updated", updated.ID, updated.Name),
		Reservation: updated,
	})
	return updated, nil
}

func applyPatch(res *models.Reservation, patch ReservationPatch) error {
	if patch.Name != nil {
		name, err := requireName(*patch.Name)
		if err != nil {
			return err
		}
		res.Name = name
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return err
		}
		res.Email = email
	}
	if patch.Phone != nil {
		res.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Notes != nil {
		res.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.Date != nil {
		date, err := NormalizeDate(*patch.Date)
		if err != nil {
			return err
		}
		res.Date = date
	}
	if patch.Time != nil {
		clock, err := NormalizeClock(*patch.Time)
		if err != nil {
			return err
		}
		res.Time = clock
	}
	if patch.NumberOfPeople != nil {
		if *patch.NumberOfPeople < 1 {
			return invalid("numberOfPeople", "must be at least 1")
		}
		res.NumberOfPeople = *patch.NumberOfPeople
	}
	return nil
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	return name, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "is not a valid email address")
	}
	return email, nil
}
