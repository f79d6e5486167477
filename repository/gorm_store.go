package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/reservation-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db     *gorm.DB
	inTx   bool
	tables *gormTableStore
	resvs  *gormReservationStore
}

func NewGormStore(db *gorm.DB) *GormStore {
	return newGormStore(db, false)
}

func newGormStore(db *gorm.DB, inTx bool) *GormStore {
	return &GormStore{
		db:     db,
		inTx:   inTx,
		tables: &gormTableStore{db: db, lock: inTx},
		resvs:  &gormReservationStore{db: db},
	}
}

func (s *GormStore) Tables() TableStore             { return s.tables }
func (s *GormStore) Reservations() ReservationStore { return s.resvs }

// Transaction runs fn inside a database transaction. Nested calls reuse the
// outer transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormStore(tx, true))
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type gormTableStore struct {
	db *gorm.DB
	// lock takes row locks on reads made inside a transaction. Dialects
	// without row locking (SQLite) ignore the clause.
	lock bool
}

func (s *gormTableStore) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *gormTableStore) FindByID(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := s.query(ctx).First(&table, id).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (s *gormTableStore) FindByNumber(ctx context.Context, number int) (*models.Table, error) {
	var table models.Table
	if err := s.query(ctx).Where("table_number = ?", number).First(&table).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (s *gormTableStore) Create(ctx context.Context, table *models.Table) error {
	return s.db.WithContext(ctx).Create(table).Error
}

func (s *gormTableStore) Save(ctx context.Context, table *models.Table) error {
	return s.db.WithContext(ctx).Save(table).Error
}

func (s *gormTableStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Table{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormTableStore) ListAll(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.WithContext(ctx).Order("table_number ASC").Find(&tables).Error
	return tables, err
}

func (s *gormTableStore) ListAssigned(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.WithContext(ctx).
		Where("assigned_reservation_id IS NOT NULL").
		Order("table_number ASC").
		Find(&tables).Error
	return tables, err
}

func (s *gormTableStore) SwapAssignment(ctx context.Context, tableID uint, expected, next *uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Table{}).Where("id = ?", tableID)
	if expected == nil {
		q = q.Where("assigned_reservation_id IS NULL")
	} else {
		q = q.Where("assigned_reservation_id = ?", *expected)
	}

	res := q.Updates(map[string]interface{}{
		"assigned_reservation_id": next,
		"updated_at":              time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type gormReservationStore struct {
	db *gorm.DB
}

func (s *gormReservationStore) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

func (s *gormReservationStore) Create(ctx context.Context, reservation *models.Reservation) error {
	return s.db.WithContext(ctx).Create(reservation).Error
}

func (s *gormReservationStore) Save(ctx context.Context, reservation *models.Reservation) error {
	return s.db.WithContext(ctx).Save(reservation).Error
}

func (s *gormReservationStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Reservation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormReservationStore) ListAll(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error) {
	q := s.db.WithContext(ctx).Model(&models.Reservation{})
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			q = q.Where("table_number IS NOT NULL")
		} else {
			q = q.Where("table_number IS NULL")
		}
	}

	var reservations []models.Reservation
	err := q.Order("date ASC").Order("time ASC").Order("id ASC").Find(&reservations).Error
	return reservations, err
}
