package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/reservation-app/database"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/repository"
	"gorm.io/gorm"
)

var testLoc = time.FixedZone("WIB", 7*3600)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Name)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	store    *repository.GormStore
	notifier *recordingNotifier
	clock    time.Time
	assign   *AssignmentService
	tables   *TableService
	resvs    *ReservationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenInMemory(t.Name(), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:       db,
		store:    repository.NewGormStore(db),
		notifier: &recordingNotifier{},
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, testLoc),
	}
	now := func() time.Time { return f.clock }

	f.assign = NewAssignmentService(f.store, testLoc, f.notifier)
	f.assign.SetClock(now)
	f.tables = NewTableService(f.store, f.notifier)
	f.tables.SetClock(now)
	f.resvs = NewReservationService(f.store, testLoc, f.notifier)
	return f
}

func (f *fixture) table(t *testing.T, number, capacity int) *models.Table {
	t.Helper()
	table, err := f.tables.CreateTable(context.Background(), number, capacity)
	require.NoError(t, err)
	return table
}

func (f *fixture) reservation(t *testing.T, people int, date, clock string) *models.Reservation {
	t.Helper()
	res, err := f.resvs.CreateReservation(context.Background(), ReservationInput{
		Name:           "Guest",
		Email:          "guest@example.com",
		Date:           date,
		Time:           clock,
		NumberOfPeople: people,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) reloadTable(t *testing.T, id uint) *models.Table {
	t.Helper()
	table, err := f.store.Tables().FindByID(context.Background(), id)
	require.NoError(t, err)
	return table
}

func (f *fixture) reloadReservation(t *testing.T, id uint) *models.Reservation {
	t.Helper()
	res, err := f.store.Reservations().FindByID(context.Background(), id)
	require.NoError(t, err)
	return res
}

// hookedStore wraps a Store so tests can intercept table operations, both
// outside and inside transactions.
type hookedStore struct {
	repository.Store
	wrapTables func(repository.TableStore) repository.TableStore
}

func (s hookedStore) Tables() repository.TableStore {
	return s.wrapTables(s.Store.Tables())
}

func (s hookedStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(hookedStore{Store: tx, wrapTables: s.wrapTables})
	})
}

// hookedTables lets a test run code after FindByNumber or replace
// SwapAssignment.
type hookedTables struct {
	repository.TableStore
	afterFind func(ctx context.Context, tables repository.TableStore, table *models.Table)
	swap      func(ctx context.Context, tableID uint, expected, next *uint) (bool, error)
}

func (t hookedTables) FindByNumber(ctx context.Context, number int) (*models.Table, error) {
	table, err := t.TableStore.FindByNumber(ctx, number)
	if err == nil && t.afterFind != nil {
		t.afterFind(ctx, t.TableStore, table)
	}
	return table, err
}

func (t hookedTables) SwapAssignment(ctx context.Context, tableID uint, expected, next *uint) (bool, error) {
	if t.swap != nil {
		return t.swap(ctx, tableID, expected, next)
	}
	return t.TableStore.SwapAssignment(ctx, tableID, expected, next)
}

func (f *fixture) assignmentsOver(store repository.Store) *AssignmentService {
	svc := NewAssignmentService(store, testLoc, f.notifier)
	svc.SetClock(func() time.Time { return f.clock })
	return svc
}
