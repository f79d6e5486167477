package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/reservation-app/repository"
)

type DashboardStats struct {
	TotalTables         int `json:"totalTables"`
	OccupiedTables      int `json:"occupiedTables"`
	AvailableTables     int `json:"availableTables"`
	TotalReservations   int `json:"totalReservations"`
	TodayReservations   int `json:"todayReservations"`
	AssignedToday       int `json:"assignedToday"`
	UnassignedToday     int `json:"unassignedToday"`
	PeopleExpectedToday int `json:"peopleExpectedToday"`
}

// DashboardService aggregates floor counts for the admin dashboard.
type DashboardService struct {
	store repository.Store
	loc   *time.Location
	now   func() time.Time
}

func NewDashboardService(store repository.Store, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{store: store, loc: loc, now: time.Now}
}

// SetClock replaces the source of the current time.
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// Stats counts a table as occupied only while its holder's binding is live.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	today := now.In(s.loc).Format(dateLayout)

	tables, err := s.store.Tables().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	reservations, err := s.store.Reservations().ListAll(ctx, repository.ReservationFilter{})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	live := make(map[uint]bool, len(reservations))
	stats := &DashboardStats{TotalTables: len(tables), TotalReservations: len(reservations)}
	for _, r := range reservations {
		if r.IsAssigned() && r.HoldsLiveAssignment(now) {
			live[r.ID] = true
		}
		if r.Date != today {
			continue
		}
		stats.TodayReservations++
		stats.PeopleExpectedToday += r.NumberOfPeople
		if r.IsAssigned() {
			stats.AssignedToday++
		} else {
			stats.UnassignedToday++
		}
	}
	for _, t := range tables {
		if t.IsAssigned() && live[*t.AssignedReservationID] {
			stats.OccupiedTables++
		}
	}
	stats.AvailableTables = stats.TotalTables - stats.OccupiedTables
	return stats, nil
}
