package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendacal/internal/agenda"
	"agendacal/internal/model"
)

// dayResponse is the JSON shape of one day.
type dayResponse struct {
	Name      string           `json:"name"`
	Date      time.Time        `json:"date"`
	TopOffset float64          `json:"top_offset"`
	Free      int              `json:"free"`
	Summary   map[string]int   `json:"summary"`
	Timeslots []model.Timeslot `json:"timeslots"`
	Events    []eventDTO       `json:"events"`
}

// eventDTO is an event with the view state of its card. Stack is the
// z-index to render with; it is ActiveZIndex while a gesture is running.
type eventDTO struct {
	model.Event
	Top        float64 `json:"top"`
	Height     float64 `json:"height"`
	Stack      int     `json:"stack"`
	Gesture    string  `json:"gesture"`
	DetailOpen bool    `json:"detail_open"`
}

type rowsRequest struct {
	TopOffset *float64    `json:"top_offset"`
	Rows      []model.Row `json:"rows" binding:"required"`
}

type addEventRequest struct {
	ID          string    `json:"id"`
	Description string    `json:"description" binding:"required"`
	Start       time.Time `json:"start" binding:"required"`
	End         time.Time `json:"end" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleDays(c *gin.Context) {
	type dayRef struct {
		Name string    `json:"name"`
		Date time.Time `json:"date"`
		Free int       `json:"free"`
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	days := make([]dayRef, 0)
	for _, d := range s.planner.Days() {
		days = append(days, dayRef{Name: d.Name(), Date: d.Day(), Free: d.Free()})
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// withDay resolves :day and runs h with the planner lock held.
func (s *Server) withDay(h func(*gin.Context, *agenda.Agenda)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()

		day, ok := s.planner.Day(c.Param("day"))
		if !ok {
			writeError(c, http.StatusNotFound, "unknown day: "+c.Param("day"))
			return
		}
		h(c, day)
	}
}

func (s *Server) handleDay(c *gin.Context, day *agenda.Agenda) {
	c.JSON(http.StatusOK, toDayResponse(day))
}

func (s *Server) handleRows(c *gin.Context, day *agenda.Agenda) {
	var req rowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.TopOffset != nil {
		day.SetTopOffset(*req.TopOffset)
	}
	if err := day.SetRows(req.Rows); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toDayResponse(day))
}

func (s *Server) handleAddEvent(c *gin.Context, day *agenda.Agenda) {
	var req addEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.End.After(req.Start) {
		writeErr(c, agenda.ErrNonPositiveDuration)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	loc := day.Day().Location()
	e := model.Event{
		ID:          req.ID,
		Description: req.Description,
		Start:       req.Start.In(loc),
		End:         req.End.In(loc),
	}
	if err := day.Add(e); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDayResponse(day))
}

func (s *Server) handlePointer(c *gin.Context, day *agenda.Agenda) {
	var ev agenda.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := day.HandlePointer(c.Param("id"), ev); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toDayResponse(day))
}

func (s *Server) handleCancel(c *gin.Context, day *agenda.Agenda) {
	if err := day.Cancel(c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toDayResponse(day))
}

func toDayResponse(day *agenda.Agenda) dayResponse {
	resp := dayResponse{
		Name:      day.Name(),
		Date:      day.Day(),
		TopOffset: day.TopOffset(),
		Free:      day.Free(),
		Summary:   day.Summary(),
		Timeslots: day.Timeslots(),
		Events:    make([]eventDTO, 0),
	}
	for _, e := range day.Events() {
		dto := eventDTO{Event: e}
		if card, ok := day.Card(e.ID); ok {
			dto.Top = card.Top
			dto.Height = card.Height
			dto.Stack = card.ZIndex(e)
			dto.Gesture = card.Gesture.String()
			dto.DetailOpen = card.DetailOpen
		}
		resp.Events = append(resp.Events, dto)
	}
	return resp
}

// statusFor maps engine errors onto HTTP statuses.
func statusFor(err error) int {
	var missing *agenda.MissingRowDataError
	switch {
	case errors.Is(err, agenda.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, agenda.ErrDuplicateEvent):
		return http.StatusConflict
	case errors.As(err, &missing),
		errors.Is(err, agenda.ErrNoTimeslots),
		errors.Is(err, agenda.ErrEdgeDisabled),
		errors.Is(err, agenda.ErrNonPositiveDuration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeErr(c *gin.Context, err error) {
	writeError(c, statusFor(err), err.Error())
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
