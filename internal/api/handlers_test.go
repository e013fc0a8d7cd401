package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"datadash/internal/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHandler returns a handler whose remote loader talks to a fake
// repository host, along with that host's repository URL.
func newTestHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/acme/data/raw/main/sales.csv":
			w.Write([]byte("month,total\njan,10\nfeb,12\n"))
		case "/acme/data/raw/main/broken.csv":
			w.Write([]byte("a,b\n1,2,3\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	cache := loader.NewCache()
	h := NewHandler(loader.NewRemoteLoader(upstream.Client(), cache), loader.NewUploadLoader(cache), 1<<20)
	return h, upstream.URL + "/acme/data"
}

func testHandler(t *testing.T) *Handler {
	h, _ := newTestHandler(t)
	return h
}

func doJSON(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, testHandler(t), http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestURL(t *testing.T) {
	rec := doJSON(t, testHandler(t), http.MethodGet, "/api/url?repo_url=https://github.com/u/r/&file_path=/data/x.csv", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://github.com/u/r/raw/main/data/x.csv"}`, rec.Body.String())
}

func TestRemote(t *testing.T) {
	h, repo := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/remote", map[string]string{"repo_url": repo, "file_path": "sales.csv"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, repo+"/raw/main/sales.csv", out["url"])
	ds := out["dataset"].(map[string]interface{})
	assert.Equal(t, []interface{}{"month", "total"}, ds["columns"])
	assert.Len(t, ds["rows"], 2)
}

func TestRemoteErrors(t *testing.T) {
	h, repo := newTestHandler(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"missing file", map[string]string{"repo_url": repo, "file_path": "nope.csv"}, http.StatusBadGateway, "REMOTE_FETCH_ERROR"},
		{"malformed csv", map[string]string{"repo_url": repo, "file_path": "broken.csv"}, http.StatusUnprocessableEntity, "PARSE_ERROR"},
		{"no repo", map[string]string{"file_path": "sales.csv"}, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/remote", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}

	rec := doJSON(t, h, http.MethodPost, "/api/remote", map[string]string{"repo_url": repo, "file_path": "nope.csv"})
	assert.Equal(t, float64(http.StatusNotFound), decode(t, rec)["status_code"])
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "Data.JSON", `[{"a":1},{"a":2}]`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, map[string]interface{}{"origin": "uploaded", "locator": "Data.JSON"}, out["source"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "notes.txt", "a,b\n"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	out = decode(t, rec)
	assert.Equal(t, "UNSUPPORTED_FORMAT", out["code"])
	assert.Equal(t, "txt", out["extension"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "bad.xml", "<rows><r>"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadIsNotKeptWithoutSession(t *testing.T) {
	cache := loader.NewCache()
	uploads := loader.NewUploadLoader(cache)
	h := NewHandler(loader.NewRemoteLoader(nil, cache), uploads, 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "a.csv", "a,b\n1,2\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, cache.Len())

	// content a dashboard session holds stays cached
	content := []byte("a,b\n3,4\n")
	_, err := uploads.Load("held.csv", content)
	require.NoError(t, err)
	uploads.Retain(uploads.Key("held.csv", content))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "same.csv", string(content)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, cache.Len())
}

func TestChart(t *testing.T) {
	h, _ := newTestHandler(t)
	ds := json.RawMessage(`{"columns":["x","y"],"rows":[["b",3],["a",1],["b",2]]}`)

	rec := doJSON(t, h, http.MethodPost, "/api/chart", map[string]interface{}{"dataset": ds, "x": "x", "y": "y"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"rendered":true,"points":[{"x":"b","y":3},{"x":"a","y":1},{"x":"b","y":2}]}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/chart", map[string]interface{}{"dataset": ds, "x": "x", "y": "missing"})
	assert.JSONEq(t, `{"rendered":false,"points":[]}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/chart", map[string]interface{}{"x": "x", "y": "y"})
	assert.JSONEq(t, `{"rendered":false,"points":[]}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}
