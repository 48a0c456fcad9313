package export

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Bookings"
	dateLayout = "02.01.2006 15:04"
)

var headers = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

// BookingExporter renders a booking listing as an XLSX workbook.
type BookingExporter struct {
	bookings domain.BookingService
	logger   *zerolog.Logger
}

func NewBookingExporter(bookings domain.BookingService, logger *zerolog.Logger) *BookingExporter {
	return &BookingExporter{bookings: bookings, logger: logger}
}

// ExportBookings lists bookings exactly as BookingService.ListBookings does and
// returns the workbook bytes. Errors of the listing are returned unchanged.
func (e *BookingExporter) ExportBookings(ctx context.Context, userID int64, role models.Role, state string) ([]byte, error) {
	bookings, err := e.bookings.ListBookings(ctx, userID, role, state)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := writeHeader(f); err != nil {
		return nil, err
	}
	for i, b := range bookings {
		if err := writeRow(f, i+2, b); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 25)
	_ = f.SetColWidth(sheetName, "D", "F", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	if e.logger != nil {
		e.logger.Info().
			Int64("user_id", userID).
			Str("role", string(role)).
			Str("state", state).
			Int("rows", len(bookings)).
			Msg("Bookings exported")
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheetName, cell, h)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheetName, "A1", last, style)
}

func writeRow(f *excelize.File, row int, b *models.Booking) error {
	values := []any{
		b.ID,
		b.Item.Name,
		b.Booker.Name,
		b.Start.UTC().Format(dateLayout),
		b.End.UTC().Format(dateLayout),
		string(b.Status),
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheetName, cell, v)
	}

	style, err := statusStyle(f, b.Status)
	if err != nil {
		return err
	}
	cell, _ := excelize.CoordinatesToCellName(len(headers), row)
	return f.SetCellStyle(sheetName, cell, cell, style)
}

// statusStyle: ожидает - желтый, одобрено - зеленый, отклонено - красный
func statusStyle(f *excelize.File, status models.BookingStatus) (int, error) {
	color := "#FFFFFF"
	switch status {
	case models.StatusWaiting:
		color = "#FFF2CC"
	case models.StatusApproved:
		color = "#C6EFCE"
	case models.StatusRejected:
		color = "#FFC7CE"
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}
