package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVExporter writes datasets as RFC 4180 CSV. Cells that a spreadsheet would
// evaluate as a formula are prefixed with a single quote.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType of rendered output.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Extension of rendered output.
func (e *CSVExporter) Extension() string { return "csv" }

// Render encodes the header line followed by one line per row. The title is
// not part of CSV output.
func (e *CSVExporter) Render(data Dataset, _ string) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for i := range data.Rows {
		record := data.Record(i)
		for j, cell := range record {
			record[j] = neutralizeFormula(cell)
		}
		records = append(records, record)
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func neutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+@", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
