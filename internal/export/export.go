// Package export renders ticket listings as downloadable tables.
package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Columns is the fixed header row of every export.
var Columns = []string{"id", "title", "description", "status", "created_at", "created_by", "assigned_to"}

const timestampLayout = "2006-01-02 15:04:05"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatCSV, FormatXLSX:
		return f, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Filename returns the download name for the format.
func (f Format) Filename() string {
	return "tickets." + string(f)
}

// Render encodes tickets in the requested format.
func Render(f Format, tickets []domain.TicketView) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(&buf, tickets)
	case FormatXLSX:
		err = WriteXLSX(&buf, tickets)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func record(t domain.TicketView) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Title,
		t.Description,
		string(t.Status),
		t.CreatedAt.UTC().Format(timestampLayout),
		t.CreatedByName,
		t.AssigneeName(),
	}
}
