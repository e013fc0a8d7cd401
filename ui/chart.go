package ui

import (
	"bytes"
	"errors"
	"net/http"

	"datadash/adapters/chart"
	"datadash/domain/dataset"
	"datadash/internal/loader"
	"datadash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// handleChart renders the session's active dataset as a PNG line chart
func (s *Server) handleChart(c *gin.Context) {
	state, ok := middleware.Session(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	uploaded, remote, _ := s.activeDatasets(c, state)
	sel := dataset.AxisSelection{X: c.Query("x"), Y: c.Query("y")}
	points, ok := loader.PrepareChart(loader.SelectActive(uploaded, remote), sel)
	if !ok {
		c.String(http.StatusNotFound, "no chart for the selected columns")
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderLine(&buf, sel, points); err != nil {
		if errors.Is(err, chart.ErrNothingToPlot) {
			c.String(http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
