package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numericColumn(name string, xs ...float64) Column {
	values := make([]Value, len(xs))
	for i, x := range xs {
		values[i] = NewNumericValue(x)
	}
	return Column{Name: name, Type: ValueTypeNumeric, Values: values}
}

func TestNewRejectsInvalidShapes(t *testing.T) {
	_, err := New(SourceDescriptor{}, []Column{numericColumn("a", 1), numericColumn("a", 2)})
	assert.ErrorContains(t, err, "duplicate column name")

	_, err = New(SourceDescriptor{}, []Column{numericColumn("a", 1, 2), numericColumn("b", 1)})
	assert.ErrorContains(t, err, "has 1 values, expected 2")

	ds, err := New(SourceDescriptor{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.NumColumns())
	assert.Equal(t, 0, ds.NumRows())
}

func TestDatasetAccessors(t *testing.T) {
	source := SourceDescriptor{Origin: OriginRemote, Locator: "https://example.com/raw/main/a.csv"}
	ds, err := New(source, []Column{numericColumn("a", 1, 2, 3), numericColumn("b", 4, 5, 6)})
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumColumns())
	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, []string{"a", "b"}, ds.ColumnNames())
	_, ok := ds.Column("b")
	assert.True(t, ok)
	_, ok = ds.Column("c")
	assert.False(t, ok)

	row := ds.Row(1)
	assert.Equal(t, 2.0, row[0].AsFloat64())
	assert.Equal(t, 5.0, row[1].AsFloat64())

	assert.Len(t, ds.Rows(2), 2)
	assert.Len(t, ds.Rows(0), 3)
	assert.Len(t, ds.Rows(10), 3)
}

func TestWithSourceSharesColumns(t *testing.T) {
	ds, err := New(SourceDescriptor{Origin: OriginUploaded, Locator: "a.csv"}, []Column{numericColumn("a", 1)})
	require.NoError(t, err)

	renamed := ds.WithSource(SourceDescriptor{Origin: OriginUploaded, Locator: "b.csv"})
	assert.Equal(t, "a.csv", ds.Source.Locator)
	assert.Equal(t, "b.csv", renamed.Source.Locator)
	assert.Equal(t, ds.ColumnNames(), renamed.ColumnNames())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "1.5", NewNumericValue(1.5).String())
	assert.Equal(t, "10", NewNumericValue(10).String())
	assert.Equal(t, "true", NewBooleanValue(true).String())
	assert.Equal(t, "x", NewStringValue("x").String())
	assert.Equal(t, "", NewMissingValue().String())
	assert.True(t, Value{}.IsMissing())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, NewNumericValue(1).Equal(NewNumericValue(1)))
	assert.False(t, NewNumericValue(1).Equal(NewStringValue("1")))
	assert.True(t, NewMissingValue().Equal(Value{}))
	assert.False(t, NewMissingValue().Equal(NewStringValue("")))
}

func TestDominantType(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		want   ValueType
	}{
		{"empty", nil, ValueTypeMissing},
		{"all missing", []Value{NewMissingValue(), NewMissingValue()}, ValueTypeMissing},
		{"numeric with gaps", []Value{NewNumericValue(1), NewMissingValue()}, ValueTypeNumeric},
		{"boolean", []Value{NewBooleanValue(true)}, ValueTypeBoolean},
		{"mixed", []Value{NewNumericValue(1), NewBooleanValue(true)}, ValueTypeString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DominantType(tt.values))
		})
	}
}

func TestDatasetJSON(t *testing.T) {
	ds, err := New(SourceDescriptor{Origin: OriginUploaded, Locator: "x.csv"}, []Column{
		numericColumn("n", 1, 2),
		{Name: "s", Type: ValueTypeString, Values: []Value{NewStringValue("a"), NewMissingValue()}},
	})
	require.NoError(t, err)

	data, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"source": {"origin": "uploaded", "locator": "x.csv"},
		"columns": ["n", "s"],
		"types": ["numeric", "string"],
		"rows": [[1, "a"], [2, null]]
	}`, string(data))

	var decoded Dataset
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ds.ColumnNames(), decoded.ColumnNames())
	assert.Equal(t, 2, decoded.NumRows())
	s, _ := decoded.Column("s")
	assert.Equal(t, ValueTypeString, s.Type)
	assert.True(t, s.Values[1].IsMissing())
}

func TestDatasetJSONRejectsRaggedRows(t *testing.T) {
	var ds Dataset
	err := json.Unmarshal([]byte(`{"columns":["a","b"],"rows":[[1]]}`), &ds)
	assert.Error(t, err)
}

func TestAxisSelectionIsComplete(t *testing.T) {
	assert.True(t, AxisSelection{X: "a", Y: "b"}.IsComplete())
	assert.False(t, AxisSelection{X: "a"}.IsComplete())
	assert.False(t, AxisSelection{}.IsComplete())
}
