package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nekogravitycat/party-booking-backend/internal/party"
)

// utf8BOM makes spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// WriteCSV writes a BOM-prefixed CSV with a header row.
func (e *Exporter) WriteCSV(w io.Writer, parties []*party.Party) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, p := range parties {
		if err := cw.Write(e.row(i, p)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
