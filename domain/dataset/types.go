package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Origin identifies where a dataset came from
type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginUploaded Origin = "uploaded"
)

// SourceDescriptor records the origin of a dataset and how it was located
// (the raw-file URL for remote data, the filename for uploads).
type SourceDescriptor struct {
	Origin  Origin `json:"origin"`
	Locator string `json:"locator"`
}

// ValueType defines the storage type for a cell
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeMissing ValueType = "missing"
)

// Value is a single scalar cell
type Value struct {
	Type       ValueType
	StringVal  *string
	NumericVal *float64
	BooleanVal *bool
}

// NewStringValue creates a string value
func NewStringValue(s string) Value {
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: &b}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing || v.Type == ""
}

// IsNumeric returns true if the value represents a valid number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric && v.NumericVal != nil
}

// IsBoolean returns true if the value represents a valid boolean
func (v Value) IsBoolean() bool {
	return v.Type == ValueTypeBoolean && v.BooleanVal != nil
}

// AsFloat64 returns the numeric value as float64, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	if v.NumericVal != nil {
		return *v.NumericVal
	}
	return 0.0
}

// String renders the cell the way the preview table shows it.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			return strconv.FormatFloat(*v.NumericVal, 'f', -1, 64)
		}
	case ValueTypeBoolean:
		if v.BooleanVal != nil {
			return strconv.FormatBool(*v.BooleanVal)
		}
	}
	return ""
}

// Equal compares two cells by type and content
func (v Value) Equal(other Value) bool {
	if v.IsMissing() || other.IsMissing() {
		return v.IsMissing() && other.IsMissing()
	}
	if v.Type != other.Type {
		return false
	}
	return v.String() == other.String()
}

// MarshalJSON encodes the cell as a bare JSON scalar (null when missing).
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsNumeric():
		return json.Marshal(*v.NumericVal)
	case v.IsBoolean():
		return json.Marshal(*v.BooleanVal)
	case v.Type == ValueTypeString && v.StringVal != nil:
		return json.Marshal(*v.StringVal)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a bare JSON scalar into a cell.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = NewMissingValue()
	case float64:
		*v = NewNumericValue(t)
	case bool:
		*v = NewBooleanValue(t)
	case string:
		*v = NewStringValue(t)
	default:
		return fmt.Errorf("cell must be a scalar, got %s", string(data))
	}
	return nil
}

// Column is a named, ordered sequence of cells
type Column struct {
	Name   string    `json:"name"`
	Type   ValueType `json:"type"`
	Values []Value   `json:"-"`
}

// Len returns the number of cells in the column
func (c Column) Len() int {
	return len(c.Values)
}

// Dataset is an immutable table of named columns of equal length. Rows are
// addressed by their position (0..NumRows-1).
type Dataset struct {
	Source  SourceDescriptor
	columns []Column
	index   map[string]int
}

// New builds a dataset, enforcing unique column names and equal column lengths.
func New(source SourceDescriptor, columns []Column) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if i > 0 && col.Len() != columns[0].Len() {
			return nil, fmt.Errorf("column %q has %d values, expected %d", col.Name, col.Len(), columns[0].Len())
		}
		index[col.Name] = i
	}
	return &Dataset{Source: source, columns: columns, index: index}, nil
}

// WithSource returns a dataset sharing this one's columns under a different source.
func (d *Dataset) WithSource(source SourceDescriptor) *Dataset {
	return &Dataset{Source: source, columns: d.columns, index: d.index}
}

// NumColumns returns the column count
func (d *Dataset) NumColumns() int {
	return len(d.columns)
}

// NumRows returns the row count
func (d *Dataset) NumRows() int {
	if len(d.columns) == 0 {
		return 0
	}
	return d.columns[0].Len()
}

// Columns returns the columns in order. Callers must not modify the result.
func (d *Dataset) Columns() []Column {
	return d.columns
}

// ColumnNames returns the column names in order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Column looks a column up by name
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Row returns the cells of row i in column order
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.columns))
	for j, col := range d.columns {
		row[j] = col.Values[i]
	}
	return row
}

// Rows returns up to limit rows (all rows when limit <= 0)
func (d *Dataset) Rows(limit int) [][]Value {
	n := d.NumRows()
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]Value, n)
	for i := range rows {
		rows[i] = d.Row(i)
	}
	return rows
}

type datasetJSON struct {
	Source  SourceDescriptor `json:"source"`
	Columns []string         `json:"columns"`
	Types   []ValueType      `json:"types,omitempty"`
	Rows    [][]Value        `json:"rows"`
}

// MarshalJSON encodes the dataset in row-major form
func (d *Dataset) MarshalJSON() ([]byte, error) {
	types := make([]ValueType, len(d.columns))
	for i, col := range d.columns {
		types[i] = col.Type
	}
	return json.Marshal(datasetJSON{
		Source:  d.Source,
		Columns: d.ColumnNames(),
		Types:   types,
		Rows:    d.Rows(0),
	})
}

// UnmarshalJSON decodes the row-major form produced by MarshalJSON
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var raw datasetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	columns := make([]Column, len(raw.Columns))
	for i, name := range raw.Columns {
		columns[i] = Column{Name: name, Values: make([]Value, 0, len(raw.Rows))}
	}
	for r, row := range raw.Rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d has %d cells, expected %d", r, len(row), len(columns))
		}
		for i, cell := range row {
			columns[i].Values = append(columns[i].Values, cell)
		}
	}
	for i := range columns {
		columns[i].Type = DominantType(columns[i].Values)
	}
	built, err := New(raw.Source, columns)
	if err != nil {
		return err
	}
	*d = *built
	return nil
}

// DominantType returns the single type shared by every non-missing cell,
// string when the cells disagree and missing when all cells are empty.
func DominantType(values []Value) ValueType {
	result := ValueTypeMissing
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if result == ValueTypeMissing {
			result = v.Type
		} else if result != v.Type {
			return ValueTypeString
		}
	}
	return result
}

// AxisSelection names the two columns plotted against each other
type AxisSelection struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// IsComplete reports whether both axes were chosen
func (a AxisSelection) IsComplete() bool {
	return a.X != "" && a.Y != ""
}

// ChartPoint is one (x, y) pair taken from a single row
type ChartPoint struct {
	X Value `json:"x"`
	Y Value `json:"y"`
}
