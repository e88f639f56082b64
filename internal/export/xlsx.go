package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SheetName is the worksheet holding exported tickets.
const SheetName = "Tickets"

// WriteXLSX writes a single-sheet workbook with a header row and one row per ticket.
func WriteXLSX(w io.Writer, tickets []domain.TicketView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, t := range tickets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			t.ID,
			t.Title,
			t.Description,
			string(t.Status),
			t.CreatedAt.UTC().Format(timestampLayout),
			t.CreatedByName,
			t.AssigneeName(),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
