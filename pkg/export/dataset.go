package export

import "errors"

// ErrNoHeaders is returned when a dataset has no columns to render.
var ErrNoHeaders = errors.New("dataset has no headers")

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Record returns row i ordered by Headers. Missing cells are empty.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	for j, header := range d.Headers {
		record[j] = d.Rows[i][header]
	}
	return record
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return ErrNoHeaders
	}
	return nil
}
