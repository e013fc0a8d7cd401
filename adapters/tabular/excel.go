package tabular

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"datadash/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads the first worksheet of a workbook; its first row is the header.
func ParseExcel(content []byte) (*dataset.Dataset, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()
	log.Printf("[tabular] Excel workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel workbook has no worksheets")
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	log.Printf("[tabular] %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	return buildFromRows(FormatExcel, rows[0], rows[1:], extendHeader)
}
