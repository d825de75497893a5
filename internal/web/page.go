package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendacal/internal/agenda"
)

//go:embed templates/*.html
var templates embed.FS

type pageDay struct {
	Name  string
	Hours []int
}

type pageData struct {
	Days           []pageDay
	RowHeight      float64
	AllowTopResize bool
	DoubleClickMS  int
}

func (s *Server) registerPage() {
	tmpl := template.Must(template.New("").ParseFS(templates, "templates/*.html"))
	s.engine.SetHTMLTemplate(tmpl)
	s.engine.GET("/", s.handlePage)
}

// handlePage renders the hour grid of every day. Cards are drawn by the
// page script from the API once the rows have been measured.
func (s *Server) handlePage(c *gin.Context) {
	s.mu.Lock()
	days := s.planner.Days()
	s.mu.Unlock()

	hours := make([]int, agenda.HoursPerDay)
	for h := range hours {
		hours[h] = h
	}

	data := pageData{
		RowHeight:      s.cfg.Layout.RowHeight,
		AllowTopResize: s.cfg.Layout.AllowTopResize,
		DoubleClickMS:  s.cfg.Layout.DoubleClickMS,
	}
	for _, d := range days {
		data.Days = append(data.Days, pageDay{Name: d.Name(), Hours: hours})
	}
	c.HTML(http.StatusOK, "index.html", data)
}
