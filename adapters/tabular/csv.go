package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"datadash/domain/dataset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads comma-separated text with a header row
func ParseCSV(content []byte) (*dataset.Dataset, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content: %w", err)
	}
	log.Printf("[tabular] CSV content read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from CSV content")
	}

	return buildFromRows(FormatCSV, rows[0], rows[1:], rejectWideRows)
}
