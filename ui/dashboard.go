package ui

import (
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"datadash/adapters/chart"
	"datadash/domain/dataset"
	"datadash/internal/loader"
	"datadash/internal/profiling"
	"datadash/internal/session"
	"datadash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// formAllowance is the room left for form fields and multipart framing on
// top of the upload limit
const formAllowance = 64 << 10

// previewView is one dataset preview table plus its column summary
type previewView struct {
	Heading   string
	Source    dataset.SourceDescriptor
	Columns   []string
	Rows      [][]string
	Shown     int
	TotalRows int
	Truncated bool
	Summary   []profiling.ColumnSummary
}

type dashboardView struct {
	Title       string
	Intro       template.HTML
	State       session.State
	RemoteURL   string
	RemoteError string
	UploadError string
	Uploaded    *previewView
	Remote      *previewView
	Columns     []string
	X           string
	Y           string
	ChartURL    string
	ChartError  string
	MaxUploadMB int64
}

// activeDatasets resolves both sources for a session. Loader failures are
// returned as messages; the failing source is treated as absent.
func (s *Server) activeDatasets(c *gin.Context, state session.State) (uploaded, remote *dataset.Dataset, remoteErr string) {
	if state.HasUpload() {
		uploaded, _ = s.uploads.Lookup(state.UploadKey, state.UploadName)
	}
	if state.UseRemote {
		ds, err := s.remote.Load(c.Request.Context(), state.RepoURL, state.FilePath)
		if err != nil {
			log.Printf("[Dashboard] Remote load failed: %v", err)
			remoteErr = err.Error()
		} else {
			remote = ds
		}
	}
	return uploaded, remote, remoteErr
}

func (s *Server) handleDashboard(c *gin.Context) {
	state, ok := middleware.Session(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var uploadErr string
	if c.Request.Method == http.MethodPost {
		if err := s.readForm(c); err != nil {
			log.Printf("[Dashboard] Form rejected: %v", err)
			state.UploadKey, state.UploadName = "", ""
			uploadErr = "upload could not be read: " + err.Error()
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				uploadErr = s.uploadLimitMessage()
			}
		} else {
			state.RepoURL = c.PostForm("repo_url")
			state.FilePath = c.PostForm("file_path")
			state.UseRemote = c.PostForm("use_remote") != ""
			state.X = c.PostForm("x")
			state.Y = c.PostForm("y")
			if c.PostForm("clear_upload") != "" {
				state.UploadKey, state.UploadName = "", ""
			}
			uploadErr = s.acceptUpload(c, &state)
		}
	} else {
		if x, ok := c.GetQuery("x"); ok {
			state.X = x
		}
		if y, ok := c.GetQuery("y"); ok {
			state.Y = y
		}
	}

	uploaded, remote, remoteErr := s.activeDatasets(c, state)
	if state.HasUpload() && uploaded == nil {
		// the cached upload is gone; ask for the file again
		state.UploadKey, state.UploadName = "", ""
	}

	view := dashboardView{
		Title:       "Data Visualization Dashboard",
		Intro:       s.intro,
		RemoteURL:   loader.RawFileURL(state.RepoURL, state.FilePath),
		RemoteError: remoteErr,
		UploadError: uploadErr,
		MaxUploadMB: s.cfg.Server.MaxUploadBytes >> 20,
	}
	if uploaded != nil {
		view.Uploaded = s.preview("Uploaded Data Preview", uploaded)
	}
	if remote != nil {
		view.Remote = s.preview("Default GitHub Data", remote)
	}

	if active := loader.SelectActive(uploaded, remote); active != nil {
		state.X, state.Y = resolveAxes(active.ColumnNames(), state.X, state.Y)
		view.Columns = active.ColumnNames()
		view.X, view.Y = state.X, state.Y
		if points, ok := loader.PrepareChart(active, dataset.AxisSelection{X: state.X, Y: state.Y}); ok {
			if _, err := chart.BuildSeries(points); err != nil {
				view.ChartError = err.Error()
			} else {
				view.ChartURL = "/chart.png?" + url.Values{"x": {state.X}, "y": {state.Y}}.Encode()
			}
		}
	}

	s.sessions.Save(state)
	view.State = state
	s.renderTemplate(c, http.StatusOK, "index.html", view)
}

// readForm parses the posted form. The body may exceed the upload limit
// only by formAllowance, so an oversized upload is never spooled to disk.
func (s *Server) readForm(c *gin.Context) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes+formAllowance)
	if err := c.Request.ParseMultipartForm(s.router.MaxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func (s *Server) uploadLimitMessage() string {
	return "upload exceeds the " + strconv.FormatInt(s.cfg.Server.MaxUploadBytes>>20, 10) + " MB limit"
}

// acceptUpload parses the request's file field, if any, and records it on
// the session. A failed upload clears the previous one.
func (s *Server) acceptUpload(c *gin.Context, state *session.State) string {
	header, err := c.FormFile("file")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			log.Printf("[Dashboard] Upload rejected: %v", err)
			state.UploadKey, state.UploadName = "", ""
			return "upload could not be read: " + err.Error()
		}
		return ""
	}
	if header.Size > s.cfg.Server.MaxUploadBytes {
		state.UploadKey, state.UploadName = "", ""
		return s.uploadLimitMessage()
	}

	file, err := header.Open()
	if err != nil {
		state.UploadKey, state.UploadName = "", ""
		return "upload could not be read: " + err.Error()
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		state.UploadKey, state.UploadName = "", ""
		return "upload could not be read: " + err.Error()
	}

	if _, err := s.uploads.Load(header.Filename, content); err != nil {
		log.Printf("[Dashboard] Upload %s failed: %v", header.Filename, err)
		state.UploadKey, state.UploadName = "", ""
		return "Error loading file: " + err.Error()
	}
	state.UploadKey = s.uploads.Key(header.Filename, content)
	state.UploadName = header.Filename
	return ""
}

func (s *Server) preview(heading string, ds *dataset.Dataset) *previewView {
	rows := ds.Rows(s.cfg.Data.PreviewRows)
	view := &previewView{
		Heading:   heading,
		Source:    ds.Source,
		Columns:   ds.ColumnNames(),
		Rows:      make([][]string, len(rows)),
		Shown:     len(rows),
		TotalRows: ds.NumRows(),
		Truncated: len(rows) < ds.NumRows(),
		Summary:   profiling.Describe(ds),
	}
	for i, row := range rows {
		cells := make([]string, len(row)+1)
		cells[0] = strconv.Itoa(i)
		for j, v := range row {
			cells[j+1] = v.String()
		}
		view.Rows[i] = cells
	}
	return view
}

// resolveAxes keeps chosen axes that name a column and otherwise defaults
// to the first column for x and the second (or first) for y.
func resolveAxes(columns []string, x, y string) (string, string) {
	if len(columns) == 0 {
		return "", ""
	}
	known := make(map[string]bool, len(columns))
	for _, name := range columns {
		known[name] = true
	}
	if !known[x] {
		x = columns[0]
	}
	if !known[y] {
		y = columns[0]
		if len(columns) > 1 {
			y = columns[1]
		}
	}
	return x, y
}
