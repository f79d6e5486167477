package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/reservation-app/database"
	"github.com/yeremiapane/reservation-app/floor"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/repository"
)

// TableService manages the table registry.
type TableService struct {
	store    repository.Store
	notifier Notifier
	now      func() time.Time
}

func NewTableService(store repository.Store, notifier Notifier) *TableService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TableService{store: store, notifier: notifier, now: time.Now}
}

// SetClock replaces the source of the current time.
func (s *TableService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TableService) CreateTable(ctx context.Context, number, capacity int) (*models.Table, error) {
	if number <= 0 {
		return nil, invalid("tableNumber", "must be a positive integer")
	}
	if capacity <= 0 {
		return nil, invalid("maxCapacity", "must be a positive integer")
	}

	table := &models.Table{TableNumber: number, MaxCapacity: capacity}
	if err := s.store.Tables().Create(ctx, table); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrDuplicateTableNumber
		}
		return nil, fmt.Errorf("create table %d: %w", number, err)
	}

	s.notifier.Notify(ctx, Event{
		Name:    floor.EventTableCreated,
		Message: fmt.Sprintf("Table %d added (seats %d)", table.TableNumber, table.MaxCapacity),
		Table:   table,
	})
	return table, nil
}

func (s *TableService) ListTables(ctx context.Context) ([]models.Table, error) {
	tables, err := s.store.Tables().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *TableService) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	table, err := s.store.Tables().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find table %d: %w", id, err)
	}
	return table, nil
}

// DeleteTable removes a table. A table held by a live reservation is
// refused with ErrTableOccupied; a lapsed holder is unlinked first.
func (s *TableService) DeleteTable(ctx context.Context, id uint) error {
	now := s.now()
	var deleted *models.Table

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		table, err := tx.Tables().FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTableNotFound
		}
		if err != nil {
			return fmt.Errorf("find table %d: %w", id, err)
		}

		if table.IsAssigned() {
			if err := releaseStale(ctx, tx, table, now); err != nil {
				if errors.Is(err, ErrTableUnavailable) {
					return ErrTableOccupied
				}
				return err
			}
		}

		if err := tx.Tables().Delete(ctx, table.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTableNotFound
			}
			return fmt.Errorf("delete table %d: %w", id, err)
		}
		deleted = table
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, Event{
		Name:    floor.EventTableDeleted,
		Message: fmt.Sprintf("Table %d removed", deleted.TableNumber),
		Table:   deleted,
	})
	return nil
}
