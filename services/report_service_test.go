package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationSheetRendersPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.table(t, 5, 4)
	res := f.reservation(t, 4, "2024-06-01", "18:00")
	_, err := f.assign.Assign(ctx, res.ID, 5)
	require.NoError(t, err)

	reports := NewReportService(f.store)
	doc, day, err := reports.ReservationSheet(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
	assert.Equal(t, "2024-06-01", day)

	_, day, err = reports.ReservationSheet(ctx, "2024-06-01T18:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", day)

	empty, _, err := reports.ReservationSheet(ctx, "2024-07-01")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))

	_, _, err = reports.ReservationSheet(ctx, "")
	assert.True(t, IsValidationError(err))
}
