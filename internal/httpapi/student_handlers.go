package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/auth"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
)

// handleListStudents returns the whole collection for admins. Parents
// only ever see the student bound to their session.
func (s *Server) handleListStudents(c *gin.Context) {
	sess := auth.SessionFrom(c)
	if sess.IsAdmin() {
		c.JSON(http.StatusOK, gin.H{"students": s.portal.Students.List()})
		return
	}
	if st, ok := s.portal.Students.Current(sess); ok {
		c.JSON(http.StatusOK, gin.H{"students": []portal.Student{st}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": []portal.Student{}})
}

func (s *Server) handleCurrentStudent(c *gin.Context) {
	sess := auth.SessionFrom(c)
	st, ok := s.portal.Students.Current(sess)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no student bound to session"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleAddStudent(c *gin.Context) {
	var req portal.NewStudent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := s.portal.Students.Add(c.Request.Context(), auth.SessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (s *Server) handleUpdateStudent(c *gin.Context) {
	var st portal.Student
	if err := c.ShouldBindJSON(&st); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st.ID = c.Param("id")
	if err := s.portal.Students.Update(c.Request.Context(), auth.SessionFrom(c), st); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleDeleteStudent(c *gin.Context) {
	if err := s.portal.Students.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetAttendance(c *gin.Context) {
	var req struct {
		Date   string `json:"date" binding:"required"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	err = s.portal.Students.SetAttendance(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), day, portal.AttendanceStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddFee(c *gin.Context) {
	var req portal.NewFee
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fee, err := s.portal.Students.AddFee(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fee)
}

func (s *Server) handleApproveFee(c *gin.Context) {
	err := s.portal.Students.ApproveFee(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), c.Param("feeID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePayFee(c *gin.Context) {
	err := s.portal.Students.PayFee(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), c.Param("feeID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddNote(c *gin.Context) {
	var req struct {
		Note    string `json:"note" binding:"required"`
		Teacher string `json:"teacher"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	note, err := s.portal.Students.AddBehavioralNote(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.Note, req.Teacher)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}
