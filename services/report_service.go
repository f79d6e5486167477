package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/reservation-app/repository"
)

// ReportService renders printable reservation sheets.
type ReportService struct {
	store repository.Store
}

func NewReportService(store repository.Store) *ReportService {
	return &ReportService{store: store}
}

var sheetColumns = []struct {
	title string
	width float64
}{
	{"Time", 20},
	{"Guest", 55},
	{"Phone", 35},
	{"People", 20},
	{"Table", 20},
	{"Notes", 40},
}

// ReservationSheet renders the reservations of one day, ordered by time,
// as a PDF document. It also returns the normalized day it covers.
func (s *ReportService) ReservationSheet(ctx context.Context, date string) ([]byte, string, error) {
	day, err := NormalizeDate(date)
	if err != nil {
		return nil, "", err
	}
	reservations, err := s.store.Reservations().ListAll(ctx, repository.ReservationFilter{Date: day})
	if err != nil {
		return nil, "", fmt.Errorf("list reservations for %s: %w", day, err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Reservations "+day, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Reservations for "+day, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	people := 0
	for _, r := range reservations {
		people += r.NumberOfPeople
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("%d reservation(s), %d guest(s)", len(reservations), people), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range sheetColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range reservations {
		table := "-"
		if r.TableNumber != nil {
			table = strconv.Itoa(*r.TableNumber)
		}
		cells := []string{r.Time, r.Name, r.Phone, strconv.Itoa(r.NumberOfPeople), table, r.Notes}
		for i, col := range sheetColumns {
			pdf.CellFormat(col.width, 7, truncate(tr(cells[i]), int(col.width/2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(reservations) == 0 {
		pdf.CellFormat(0, 8, "No reservations.", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render reservation sheet: %w", err)
	}
	return buf.Bytes(), day, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
