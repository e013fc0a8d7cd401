package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
)

var funcMap = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"stat": func(v float64) string {
		return strconv.FormatFloat(v, 'g', 6, 64)
	},
	"statPtr": func(v *float64) string {
		if v == nil {
			return "NaN"
		}
		return strconv.FormatFloat(*v, 'g', 6, 64)
	},
}

func parseTemplates() (*template.Template, error) {
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
