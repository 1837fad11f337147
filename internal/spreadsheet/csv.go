// Package spreadsheet turns tabular exports into the named-field rows the
// importer consumes. Only the CSV shape matters here; the importer treats
// rows as opaque field maps.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"rollbook-service/internal/domain"
)

// ReadRows parses CSV with a header row into import rows. Header names are
// trimmed; non-date names are matched case-sensitively by the importer, so
// exports are expected to carry name/class/mobile/quizPoints headers plus
// YYYY-MM-DD date columns.
func ReadRows(r io.Reader) ([]domain.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []domain.ImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := make(domain.ImportRow, len(header))
		for i, value := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}
