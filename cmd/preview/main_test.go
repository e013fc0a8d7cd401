package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apperrors "datadash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFileCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Scores.CSV")
	require.NoError(t, os.WriteFile(path, []byte("name,score\nann,1\nbob,2\ncyd,3\n"), 0o644))

	out, err := run(t, "file", path, "--rows", "2", "--describe")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: Scores.CSV (uploaded)")
	assert.Contains(t, out, "Shape: 3 rows x 2 columns")
	assert.Contains(t, out, "ann")
	assert.NotContains(t, out, "cyd")
	assert.Contains(t, out, "... 1 more rows")
	assert.Contains(t, out, "numeric")
}

func TestFileCommandUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := run(t, "file", path)
	appErr, ok := apperrors.IsUnsupportedFormat(err)
	require.True(t, ok)
	assert.Equal(t, "txt", appErr.Extension)
}

func TestFileCommandMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")

	_, err := run(t, "file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read "+path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, apperrors.CodeInternalError, apperrors.GetCode(err))
}

func TestRemoteCommand(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/data/raw/main/sets/x.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("a,b\n1,2\n3,4\n"))
	}))
	defer upstream.Close()

	out, err := run(t, "remote", upstream.URL+"/acme/data/", "/sets/x.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: "+upstream.URL+"/acme/data/raw/main/sets/x.csv (remote)")
	assert.Contains(t, out, "Shape: 2 rows x 2 columns")

	_, err = run(t, "remote", upstream.URL+"/acme/data", "missing.csv")
	appErr, ok := apperrors.IsRemoteFetch(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestRemoteCommandRequiresArgs(t *testing.T) {
	_, err := run(t, "remote", "https://github.com/acme/data")
	assert.Error(t, err)
}
