package export

import (
	"encoding/csv"
	"io"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// WriteCSV writes a header row followed by one row per ticket.
func WriteCSV(w io.Writer, tickets []domain.TicketView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, t := range tickets {
		if err := cw.Write(record(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
