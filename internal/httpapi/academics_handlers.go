package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/auth"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
)

func (s *Server) handleListHomework(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"homework": s.portal.Academics.Homework()})
}

func (s *Server) handleAddHomework(c *gin.Context) {
	var req portal.NewHomework
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hw, err := s.portal.Academics.AddHomework(c.Request.Context(), auth.SessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hw)
}

func (s *Server) handleUpdateHomework(c *gin.Context) {
	var hw portal.Homework
	if err := c.ShouldBindJSON(&hw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hw.ID = c.Param("id")
	if err := s.portal.Academics.UpdateHomework(c.Request.Context(), auth.SessionFrom(c), hw); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, hw)
}

func (s *Server) handleDeleteHomework(c *gin.Context) {
	if err := s.portal.Academics.DeleteHomework(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetTimetable(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timetable": s.portal.Academics.Timetable()})
}

func (s *Server) handleSetTimetable(c *gin.Context) {
	var req struct {
		Timetable []portal.TimetableEntry `json:"timetable" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.portal.Academics.SetTimetable(c.Request.Context(), auth.SessionFrom(c), req.Timetable); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timetable": req.Timetable})
}
