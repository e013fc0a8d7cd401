// Package tabular reads CSV, JSON, XML and Excel content into datasets.
package tabular

import (
	"fmt"
	"log"
	"strings"

	"datadash/adapters/coercer"
	"datadash/domain/dataset"
)

// Format names a supported tabular encoding
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
	FormatExcel Format = "excel"
)

// ParseFunc parses raw file content into a dataset
type ParseFunc func(content []byte) (*dataset.Dataset, error)

var formatsByExtension = map[string]Format{
	"csv":  FormatCSV,
	"json": FormatJSON,
	"xml":  FormatXML,
	"xls":  FormatExcel,
	"xlsx": FormatExcel,
}

// FormatForExtension maps a lower-case file extension (without the dot) to its format
func FormatForExtension(ext string) (Format, bool) {
	f, ok := formatsByExtension[ext]
	return f, ok
}

// Parser returns the parse function for a format
func Parser(f Format) ParseFunc {
	switch f {
	case FormatCSV:
		return ParseCSV
	case FormatJSON:
		return ParseJSON
	case FormatXML:
		return ParseXML
	case FormatExcel:
		return ParseExcel
	default:
		return nil
	}
}

// rowPolicy decides what happens when a data row has more cells than the header
type rowPolicy int

const (
	rejectWideRows rowPolicy = iota
	extendHeader
)

// buildFromRows converts a header row plus raw string rows into a typed
// dataset. Short rows are padded with missing cells.
func buildFromRows(format Format, header []string, rows [][]string, policy rowPolicy) (*dataset.Dataset, error) {
	width := len(header)
	for i, row := range rows {
		if len(row) <= width {
			continue
		}
		if policy == rejectWideRows {
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", width, i+2, len(row))
		}
		width = len(row)
	}

	names := normalizeHeader(header, width)
	raw := make([][]string, width)
	for j := range raw {
		raw[j] = make([]string, len(rows))
	}
	for i, row := range rows {
		for j := range raw {
			if j < len(row) {
				raw[j][i] = row[j]
			}
		}
	}

	c := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	columns := make([]dataset.Column, width)
	for j, name := range names {
		columns[j] = c.CoerceColumn(name, raw[j])
	}

	log.Printf("[tabular] %s content processed (%d columns, %d rows)", strings.ToUpper(string(format)), len(columns), len(rows))
	return dataset.New(dataset.SourceDescriptor{}, columns)
}

// buildFromValues assembles already-typed columns
func buildFromValues(format Format, names []string, values [][]dataset.Value) (*dataset.Dataset, error) {
	names = normalizeHeader(names, len(names))
	columns := make([]dataset.Column, len(names))
	for j, name := range names {
		columns[j] = dataset.Column{Name: name, Type: dataset.DominantType(values[j]), Values: values[j]}
	}
	log.Printf("[tabular] %s content processed (%d columns, %d rows)", strings.ToUpper(string(format)), len(columns), rowCount(values))
	return dataset.New(dataset.SourceDescriptor{}, columns)
}

func rowCount(values [][]dataset.Value) int {
	if len(values) == 0 {
		return 0
	}
	return len(values[0])
}

// normalizeHeader trims names, labels blank ones "Unnamed: i" and
// de-duplicates repeats as "name.1", "name.2", ...
func normalizeHeader(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base := name
			n := seen[base]
			for {
				n++
				candidate := fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[candidate]; !taken {
					name = candidate
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}
