package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// parseDocument parses a full CSV document (header row + data rows) into
// column-keyed records. Header cells are lower-cased and trimmed to produce
// the keys; data cells are trimmed and zipped by position, missing trailing
// cells defaulting to "". Blank lines are skipped. Quoted fields, embedded
// commas/newlines, doubled quotes and \r\n endings are all supported.
func parseDocument(text string) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // rows may be ragged; validation reports the holes
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var header []string
	var records []map[string]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading CSV row")
		}
		if isBlank(row) {
			continue
		}

		if header == nil {
			header = make([]string, len(row))
			for i, cell := range row {
				header[i] = strings.ToLower(strings.TrimSpace(cell))
			}
			continue
		}

		record := make(map[string]string, len(header))
		for i, key := range header {
			var val string
			if i < len(row) {
				val = strings.TrimSpace(row[i])
			}
			record[key] = val
		}
		records = append(records, record)
	}

	if header == nil {
		return nil, nil // no rows at all
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
