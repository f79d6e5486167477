package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/reservation-app/floor"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/repository"
)

func TestAssignSetsBothSidesAndExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 5, 4)
	res := f.reservation(t, 4, "2024-06-01", "18:00")

	got, err := f.assign.Assign(ctx, res.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, got.TableNumber)
	assert.Equal(t, 5, *got.TableNumber)
	require.NotNil(t, got.TableAssignmentExpiresAt)
	assert.True(t, got.TableAssignmentExpiresAt.Equal(time.Date(2024, 6, 1, 20, 0, 0, 0, testLoc)))

	stored := f.reloadTable(t, table.ID)
	assert.True(t, stored.HeldBy(res.ID))
	assert.Contains(t, f.notifier.names(), floor.EventTableAssigned)
}

func TestAssignRejectsOversizedParty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 5, 4)
	res := f.reservation(t, 5, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 5)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	assert.False(t, f.reloadTable(t, table.ID).IsAssigned())
	assert.False(t, f.reloadReservation(t, res.ID).IsAssigned())
}

func TestAssignUnknownRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.table(t, 1, 2)
	res := f.reservation(t, 2, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 99)
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = f.assign.Assign(ctx, 12345, 1)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = f.assign.Assign(ctx, res.ID, 0)
	assert.True(t, IsValidationError(err))
}

func TestAssignRefusesLiveOccupancy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 3, 4)
	first := f.reservation(t, 2, "2024-06-01", "18:00")
	second := f.reservation(t, 2, "2024-06-01", "19:00")

	_, err := f.assign.Assign(ctx, first.ID, 3)
	require.NoError(t, err)

	_, err = f.assign.Assign(ctx, second.ID, 3)
	assert.ErrorIs(t, err, ErrTableUnavailable)

	assert.True(t, f.reloadTable(t, table.ID).HeldBy(first.ID))
	assert.False(t, f.reloadReservation(t, second.ID).IsAssigned())
	assert.True(t, f.reloadReservation(t, first.ID).IsAssigned())
}

func TestAssignReclaimsExpiredOccupancy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 3, 4)
	first := f.reservation(t, 2, "2024-06-01", "18:00")
	second := f.reservation(t, 2, "2024-06-01", "21:00")

	_, err := f.assign.Assign(ctx, first.ID, 3)
	require.NoError(t, err)

	_, err = f.assign.Assign(ctx, second.ID, 3)
	require.ErrorIs(t, err, ErrTableUnavailable)

	// past 20:00 the first binding has lapsed
	f.clock = time.Date(2024, 6, 1, 20, 0, 1, 0, testLoc)

	got, err := f.assign.Assign(ctx, second.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, *got.TableNumber)

	assert.True(t, f.reloadTable(t, table.ID).HeldBy(second.ID))
	stale := f.reloadReservation(t, first.ID)
	assert.Nil(t, stale.TableNumber)
	assert.Nil(t, stale.TableAssignmentExpiresAt)
}

func TestAssignReclaimsTableOfDeletedHolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 8, 2)
	res := f.reservation(t, 2, "2024-06-01", "18:00")

	ghost := uint(4242)
	ok, err := f.store.Tables().SwapAssignment(ctx, table.ID, nil, &ghost)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.assign.Assign(ctx, res.ID, 8)
	require.NoError(t, err)
	assert.True(t, f.reloadTable(t, table.ID).HeldBy(res.ID))
}

func TestAssignThenUnassignRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 2, 4)
	res := f.reservation(t, 3, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 2)
	require.NoError(t, err)

	got, err := f.assign.Unassign(ctx, res.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TableNumber)
	assert.Nil(t, got.TableAssignmentExpiresAt)

	assert.False(t, f.reloadTable(t, table.ID).IsAssigned())
	assert.False(t, f.reloadReservation(t, res.ID).IsAssigned())
}

func TestUnassignWithoutTableIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.reservation(t, 3, "2024-06-01", "18:00")

	got, err := f.assign.Unassign(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Nil(t, got.TableNumber)

	_, err = f.assign.Unassign(ctx, 999)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestUnassignSurvivesMissingTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.reservation(t, 2, "2024-06-01", "18:00")

	gone := 77
	res.TableNumber = &gone
	expires := time.Date(2024, 6, 1, 20, 0, 0, 0, testLoc)
	res.TableAssignmentExpiresAt = &expires
	require.NoError(t, f.store.Reservations().Save(ctx, res))

	got, err := f.assign.Unassign(ctx, res.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TableNumber)
	assert.False(t, f.reloadReservation(t, res.ID).IsAssigned())
}

func TestReassignMovesBinding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.table(t, 1, 4)
	b := f.table(t, 2, 4)
	res := f.reservation(t, 2, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 1)
	require.NoError(t, err)

	got, err := f.assign.Assign(ctx, res.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, *got.TableNumber)

	assert.False(t, f.reloadTable(t, a.ID).IsAssigned())
	assert.True(t, f.reloadTable(t, b.ID).HeldBy(res.ID))
	assert.Contains(t, f.notifier.names(), floor.EventTableReleased)
}

func TestReassignSameTableRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 1, 4)
	res := f.reservation(t, 2, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 1)
	require.NoError(t, err)
	got, err := f.assign.Assign(ctx, res.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, *got.TableNumber)
	assert.True(t, f.reloadTable(t, table.ID).HeldBy(res.ID))
}

func TestAvailableTablesFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.table(t, 4, 2)
	f.table(t, 1, 6)
	f.table(t, 3, 4)
	f.table(t, 2, 8)
	mine := f.reservation(t, 4, "2024-06-01", "18:00")
	other := f.reservation(t, 2, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, other.ID, 2)
	require.NoError(t, err)

	tables, err := f.assign.AvailableTablesFor(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, tableNumbers(tables))

	_, err = f.assign.Assign(ctx, mine.ID, 3)
	require.NoError(t, err)

	tables, err = f.assign.AvailableTablesFor(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, tableNumbers(tables))

	_, err = f.assign.AvailableTablesFor(ctx, 999)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestDeleteReservationFreesTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 6, 4)
	res := f.reservation(t, 2, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 6)
	require.NoError(t, err)

	require.NoError(t, f.assign.DeleteReservation(ctx, res.ID))
	assert.False(t, f.reloadTable(t, table.ID).IsAssigned())

	_, err = f.resvs.GetReservation(ctx, res.ID)
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.ErrorIs(t, f.assign.DeleteReservation(ctx, res.ID), ErrReservationNotFound)
	assert.Contains(t, f.notifier.names(), floor.EventReservationDeleted)
}

func TestSequentialAssignsFollowTheClock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.table(t, 5, 4)
	first := f.reservation(t, 4, "2024-06-01", "18:00")
	second := f.reservation(t, 2, "2024-06-01", "18:30")

	f.clock = time.Date(2024, 6, 1, 19, 59, 0, 0, testLoc)
	_, err := f.assign.Assign(ctx, first.ID, 5)
	require.NoError(t, err)
	_, err = f.assign.Assign(ctx, second.ID, 5)
	assert.ErrorIs(t, err, ErrTableUnavailable)

	f.clock = time.Date(2024, 6, 1, 20, 0, 0, 0, testLoc)
	_, err = f.assign.Assign(ctx, second.ID, 5)
	assert.NoError(t, err)
}

func TestReleaseExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	early := f.table(t, 1, 4)
	late := f.table(t, 2, 4)
	orphan := f.table(t, 3, 4)
	lunch := f.reservation(t, 2, "2024-06-01", "12:00")
	dinner := f.reservation(t, 2, "2024-06-01", "19:00")

	_, err := f.assign.Assign(ctx, lunch.ID, 1)
	require.NoError(t, err)
	_, err = f.assign.Assign(ctx, dinner.ID, 2)
	require.NoError(t, err)
	ghost := uint(9001)
	_, err = f.store.Tables().SwapAssignment(ctx, orphan.ID, nil, &ghost)
	require.NoError(t, err)

	f.clock = time.Date(2024, 6, 1, 15, 0, 0, 0, testLoc)
	n, err := f.assign.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.False(t, f.reloadTable(t, early.ID).IsAssigned())
	assert.False(t, f.reloadTable(t, orphan.ID).IsAssigned())
	assert.True(t, f.reloadTable(t, late.ID).HeldBy(dinner.ID))
	assert.False(t, f.reloadReservation(t, lunch.ID).IsAssigned())
	assert.True(t, f.reloadReservation(t, dinner.ID).IsAssigned())
	assert.Contains(t, f.notifier.names(), floor.EventAssignmentsExpired)

	n, err = f.assign.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAssignLosesRaceForTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 4, 4)
	res := f.reservation(t, 2, "2024-06-01", "18:00")
	rival := f.reservation(t, 2, "2024-06-01", "18:15")

	claimed := false
	racing := hookedStore{
		Store: f.store,
		wrapTables: func(inner repository.TableStore) repository.TableStore {
			return hookedTables{
				TableStore: inner,
				afterFind: func(ctx context.Context, tables repository.TableStore, found *models.Table) {
					if claimed {
						return
					}
					claimed = true
					ok, err := tables.SwapAssignment(ctx, found.ID, nil, &rival.ID)
					require.NoError(t, err)
					require.True(t, ok)
				},
			}
		},
	}

	_, err := f.assignmentsOver(racing).Assign(ctx, res.ID, 4)
	assert.ErrorIs(t, err, ErrTableUnavailable)
	assert.True(t, claimed)

	stored := f.reloadReservation(t, res.ID)
	assert.False(t, stored.IsAssigned())
	assert.Nil(t, stored.TableAssignmentExpiresAt)
	assert.False(t, f.reloadTable(t, table.ID).HeldBy(res.ID))
	assert.NotContains(t, f.notifier.names(), floor.EventTableAssigned)
}

func TestDeleteReservationKeepsRecordWhenReleaseFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := f.table(t, 6, 4)
	res := f.reservation(t, 2, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 6)
	require.NoError(t, err)

	diskErr := errors.New("disk full")
	failing := hookedStore{
		Store: f.store,
		wrapTables: func(inner repository.TableStore) repository.TableStore {
			return hookedTables{
				TableStore: inner,
				swap: func(context.Context, uint, *uint, *uint) (bool, error) {
					return false, diskErr
				},
			}
		},
	}

	err = f.assignmentsOver(failing).DeleteReservation(ctx, res.ID)
	assert.ErrorIs(t, err, diskErr)

	stored := f.reloadReservation(t, res.ID)
	require.NotNil(t, stored.TableNumber)
	assert.Equal(t, 6, *stored.TableNumber)
	assert.True(t, f.reloadTable(t, table.ID).HeldBy(res.ID))
	assert.NotContains(t, f.notifier.names(), floor.EventReservationDeleted)
}

func TestAvailableTablesKeepsHeldTableWhenPartyOutgrowsIt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.table(t, 1, 2)
	f.table(t, 3, 4)
	f.table(t, 7, 8)
	res := f.reservation(t, 4, "2024-06-01", "18:00")

	_, err := f.assign.Assign(ctx, res.ID, 3)
	require.NoError(t, err)

	grown := f.reloadReservation(t, res.ID)
	grown.NumberOfPeople = 6
	require.NoError(t, f.store.Reservations().Save(ctx, grown))

	tables, err := f.assign.AvailableTablesFor(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, tableNumbers(tables))
}

func tableNumbers(tables []models.Table) []int {
	out := make([]int, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.TableNumber)
	}
	return out
}
