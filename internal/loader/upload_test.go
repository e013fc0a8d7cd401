package loader

import (
	"testing"

	"datadash/domain/dataset"
	apperrors "datadash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"data.csv":         "csv",
		"Data.CSV":         "csv",
		"archive.tar.XLSX": "xlsx",
		"README":           "",
		"trailing.":        "",
		".hidden":          "hidden",
	}
	for filename, want := range tests {
		assert.Equal(t, want, Extension(filename), filename)
	}
}

func excelBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"a", "b"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, 2}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestUploadLoaderDispatch(t *testing.T) {
	l := NewUploadLoader(NewCache())
	xlsx := excelBytes(t)

	tests := []struct {
		filename string
		content  []byte
	}{
		{"Data.CSV", []byte("a,b\n1,2\n")},
		{"data.json", []byte(`[{"a":1,"b":2}]`)},
		{"DATA.Json", []byte(`{"a":[1],"b":[2]}`)},
		{"data.xml", []byte(`<rows><r><a>1</a><b>2</b></r></rows>`)},
		{"book.xlsx", xlsx},
		{"book.XLS", xlsx},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			ds, err := l.Load(tt.filename, tt.content)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, ds.ColumnNames())
			assert.Equal(t, 1, ds.NumRows())
			assert.Equal(t, dataset.OriginUploaded, ds.Source.Origin)
			assert.Equal(t, tt.filename, ds.Source.Locator)
		})
	}
}

func TestUploadLoaderUnsupportedExtension(t *testing.T) {
	l := NewUploadLoader(NewCache())

	_, err := l.Load("data.txt", []byte("a,b\n1,2\n"))
	appErr, ok := apperrors.IsUnsupportedFormat(err)
	require.True(t, ok)
	assert.Equal(t, "txt", appErr.Extension)

	_, err = l.Load("noextension", []byte("a,b\n1,2\n"))
	appErr, ok = apperrors.IsUnsupportedFormat(err)
	require.True(t, ok)
	assert.Equal(t, "", appErr.Extension)
}

func TestUploadLoaderParseErrors(t *testing.T) {
	l := NewUploadLoader(NewCache())

	tests := map[string][]byte{
		"bad.csv":  []byte("a,b\n1,2,3\n"),
		"bad.json": []byte(`{"a":`),
		"bad.xml":  []byte(`<rows><r>`),
		"bad.xlsx": []byte("not a workbook"),
	}
	for filename, content := range tests {
		t.Run(filename, func(t *testing.T) {
			ds, err := l.Load(filename, content)
			assert.Nil(t, ds)
			_, ok := apperrors.IsParse(err)
			assert.True(t, ok, "expected parse error, got %v", err)
		})
	}
}

func TestUploadLoaderMemoizesByContent(t *testing.T) {
	cache := NewCache()
	l := NewUploadLoader(cache)

	first, err := l.Load("one.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	second, err := l.Load("two.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, l.Key("one.csv", []byte("a,b\n1,2\n")), l.Key("two.csv", []byte("a,b\n1,2\n")))
	assert.Equal(t, "one.csv", first.Source.Locator)
	assert.Equal(t, "two.csv", second.Source.Locator)
}

func TestUploadLoaderSameNameDifferentContent(t *testing.T) {
	cache := NewCache()
	l := NewUploadLoader(cache)

	first, err := l.Load("data.csv", []byte("a\n1\n"))
	require.NoError(t, err)
	second, err := l.Load("data.csv", []byte("b\n2\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, first.ColumnNames())
	assert.Equal(t, []string{"b"}, second.ColumnNames())
	assert.Equal(t, 2, cache.Len())
}

func TestUploadLoaderLookup(t *testing.T) {
	l := NewUploadLoader(NewCache())
	content := []byte("a,b\n1,2\n")

	_, ok := l.Lookup(l.Key("data.csv", content), "data.csv")
	assert.False(t, ok)

	_, err := l.Load("data.csv", content)
	require.NoError(t, err)

	ds, ok := l.Lookup(l.Key("data.csv", content), "data.csv")
	require.True(t, ok)
	assert.Equal(t, "data.csv", ds.Source.Locator)
}

func TestUploadLoaderReleaseEvictsWhenUnheld(t *testing.T) {
	cache := NewCache()
	l := NewUploadLoader(cache)
	content := []byte("a,b\n1,2\n")
	key := l.Key("data.csv", content)

	_, err := l.Load("data.csv", content)
	require.NoError(t, err)
	l.Retain(key)
	l.Retain(key)

	l.Release(key)
	_, ok := l.Lookup(key, "data.csv")
	assert.True(t, ok, "one holder remains")

	l.Discard(key)
	assert.Equal(t, 1, cache.Len(), "held uploads survive Discard")

	l.Release(key)
	_, ok = l.Lookup(key, "data.csv")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestUploadLoaderDiscardUnheld(t *testing.T) {
	cache := NewCache()
	l := NewUploadLoader(cache)
	content := []byte("a\n1\n")

	_, err := l.Load("a.csv", content)
	require.NoError(t, err)
	l.Discard(l.Key("a.csv", content))
	assert.Equal(t, 0, cache.Len())
}
