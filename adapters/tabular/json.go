package tabular

import (
	"fmt"
	"strconv"

	"datadash/domain/dataset"

	"github.com/tidwall/gjson"
)

// ParseJSON reads the common tabular JSON layouts:
//
//	[{"a":1,"b":2}, ...]          records
//	[[1,2], ...]                  rows of values (columns named 0, 1, ...)
//	{"a":{"0":1,"1":3}, ...}      columns keyed by row label
//	{"a":[1,3], "b":[2,4]}        columns as arrays
func ParseJSON(content []byte) (*dataset.Dataset, error) {
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("content is not valid JSON")
	}

	root := gjson.ParseBytes(content)
	switch {
	case root.IsArray():
		return parseJSONArray(root)
	case root.IsObject():
		return parseJSONObject(root)
	default:
		return nil, fmt.Errorf("JSON root must be an array or an object, got %s", root.Type)
	}
}

// columnSet accumulates columns in first-seen order, padding late arrivals
// with missing cells so all columns keep equal length.
type columnSet struct {
	names  []string
	index  map[string]int
	values [][]dataset.Value
	rows   int
}

func newColumnSet() *columnSet {
	return &columnSet{index: make(map[string]int)}
}

func (s *columnSet) set(name string, v dataset.Value) {
	j, ok := s.index[name]
	if !ok {
		j = len(s.names)
		s.index[name] = j
		s.names = append(s.names, name)
		col := make([]dataset.Value, s.rows+1)
		for i := range col {
			col[i] = dataset.NewMissingValue()
		}
		s.values = append(s.values, col)
	}
	s.values[j][s.rows] = v
}

func (s *columnSet) nextRow() {
	s.rows++
	for j := range s.values {
		s.values[j] = append(s.values[j], dataset.NewMissingValue())
	}
}

// finish drops the trailing empty row opened by the last nextRow
func (s *columnSet) finish() ([]string, [][]dataset.Value) {
	for j := range s.values {
		s.values[j] = s.values[j][:s.rows]
	}
	return s.names, s.values
}

func parseJSONArray(root gjson.Result) (*dataset.Dataset, error) {
	set := newColumnSet()
	root.ForEach(func(_, elem gjson.Result) bool {
		switch {
		case elem.IsObject():
			elem.ForEach(func(key, value gjson.Result) bool {
				set.set(key.String(), jsonValue(value))
				return true
			})
		case elem.IsArray():
			for j, value := range elem.Array() {
				set.set(strconv.Itoa(j), jsonValue(value))
			}
		default:
			set.set("0", jsonValue(elem))
		}
		set.nextRow()
		return true
	})

	names, values := set.finish()
	return buildFromValues(FormatJSON, names, values)
}

func parseJSONObject(root gjson.Result) (*dataset.Dataset, error) {
	var names []string
	var fields []gjson.Result
	allObjects, allArrays := true, true
	root.ForEach(func(key, value gjson.Result) bool {
		names = append(names, key.String())
		fields = append(fields, value)
		allObjects = allObjects && value.IsObject()
		allArrays = allArrays && value.IsArray()
		return true
	})
	if len(fields) == 0 {
		return buildFromValues(FormatJSON, nil, nil)
	}

	switch {
	case allArrays:
		return parseJSONColumnArrays(names, fields)
	case allObjects:
		return parseJSONColumnObjects(names, fields)
	default:
		return nil, fmt.Errorf("JSON object values must be all objects or all arrays")
	}
}

func parseJSONColumnArrays(names []string, fields []gjson.Result) (*dataset.Dataset, error) {
	values := make([][]dataset.Value, len(fields))
	for j, field := range fields {
		items := field.Array()
		if j > 0 && len(items) != len(values[0]) {
			return nil, fmt.Errorf("all arrays must be of the same length: column %q has %d values, expected %d", names[j], len(items), len(values[0]))
		}
		values[j] = make([]dataset.Value, len(items))
		for i, item := range items {
			values[j][i] = jsonValue(item)
		}
	}
	return buildFromValues(FormatJSON, names, values)
}

// parseJSONColumnObjects handles {"col": {"rowLabel": value}}; rows follow
// the first-seen order of row labels across all columns.
func parseJSONColumnObjects(names []string, fields []gjson.Result) (*dataset.Dataset, error) {
	var labels []string
	labelIndex := make(map[string]int)
	for _, field := range fields {
		field.ForEach(func(key, _ gjson.Result) bool {
			if _, ok := labelIndex[key.String()]; !ok {
				labelIndex[key.String()] = len(labels)
				labels = append(labels, key.String())
			}
			return true
		})
	}

	values := make([][]dataset.Value, len(fields))
	for j, field := range fields {
		col := make([]dataset.Value, len(labels))
		for i := range col {
			col[i] = dataset.NewMissingValue()
		}
		field.ForEach(func(key, value gjson.Result) bool {
			col[labelIndex[key.String()]] = jsonValue(value)
			return true
		})
		values[j] = col
	}
	return buildFromValues(FormatJSON, names, values)
}

func jsonValue(r gjson.Result) dataset.Value {
	switch r.Type {
	case gjson.Null:
		return dataset.NewMissingValue()
	case gjson.True:
		return dataset.NewBooleanValue(true)
	case gjson.False:
		return dataset.NewBooleanValue(false)
	case gjson.Number:
		return dataset.NewNumericValue(r.Float())
	case gjson.String:
		return dataset.NewStringValue(r.String())
	default:
		// nested objects/arrays are kept as their raw JSON text
		return dataset.NewStringValue(r.Raw)
	}
}
