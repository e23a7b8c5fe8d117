package utils

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header row followed by data rows to w. Rows shorter or
// longer than the header are rejected.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("row %d has %d columns, expected %d", i, len(row), len(header))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
