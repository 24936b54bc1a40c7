package httpapi

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/auth"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/cloudinary"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/textgen"
)

func (s *Server) handleListAnnouncements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"announcements": s.portal.Announcements.List(),
		"unread":        s.portal.Announcements.UnreadCount(),
	})
}

func (s *Server) handleAddAnnouncement(c *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ann, err := s.portal.Announcements.Add(c.Request.Context(), auth.SessionFrom(c), req.Title, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ann)
}

func (s *Server) handleDeleteAnnouncement(c *gin.Context) {
	if err := s.portal.Announcements.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAckAnnouncements(c *gin.Context) {
	if err := s.portal.Announcements.ResetUnread(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGallery(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"photos": s.portal.Gallery.Photos(),
		"videos": s.portal.Gallery.Videos(),
	})
}

func (s *Server) handleAddGalleryItem(c *gin.Context) {
	var item portal.GalleryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := portal.GalleryKind(c.Param("kind"))
	added, err := s.portal.Gallery.AddItem(c.Request.Context(), auth.SessionFrom(c), kind, item)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) handleDeleteGalleryItem(c *gin.Context) {
	kind := portal.GalleryKind(c.Param("kind"))
	if err := s.portal.Gallery.DeleteItem(c.Request.Context(), auth.SessionFrom(c), kind, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleUpload pushes a base64 image or multipart file to Cloudinary
// and returns the public URL for use in a gallery item or a student
// photo.
func (s *Server) handleUpload(c *gin.Context) {
	sess := auth.SessionFrom(c)
	if !sess.IsAdmin() {
		writeError(c, &portal.AuthorizationError{Verb: "upload media", Role: sess.Role})
		return
	}
	if s.cdn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
		return
	}

	contentType := c.ContentType()
	var result *cloudinary.UploadResult
	var err error

	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
			return
		}
		result, err = s.cdn.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = s.cdn.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "media upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       result.SecureURL,
		"public_id": result.PublicID,
		"width":     result.Width,
		"height":    result.Height,
		"bytes":     result.Bytes,
	})
}

func (s *Server) handleGetAbout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"about": s.portal.Site.About()})
}

func (s *Server) handleSetAbout(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.portal.Site.SetAbout(c.Request.Context(), auth.SessionFrom(c), req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"language": s.portal.Prefs.Language()})
}

func (s *Server) handleSetLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.portal.Prefs.SetLanguage(c.Request.Context(), portal.Language(req.Language)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListStaff(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"staff": s.portal.Staff.List()})
}

func (s *Server) handleAddStaff(c *gin.Context) {
	var member portal.StaffMember
	if err := c.ShouldBindJSON(&member); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	added, err := s.portal.Staff.Add(c.Request.Context(), auth.SessionFrom(c), member)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) handleUpdateStaff(c *gin.Context) {
	var member portal.StaffMember
	if err := c.ShouldBindJSON(&member); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member.ID = c.Param("id")
	if err := s.portal.Staff.Update(c.Request.Context(), auth.SessionFrom(c), member); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (s *Server) handleDeleteStaff(c *gin.Context) {
	if err := s.portal.Staff.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListTransport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": s.portal.Transport.List()})
}

func (s *Server) handleAddTransport(c *gin.Context) {
	var route portal.BusRoute
	if err := c.ShouldBindJSON(&route); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	added, err := s.portal.Transport.Add(c.Request.Context(), auth.SessionFrom(c), route)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) handleUpdateTransport(c *gin.Context) {
	var route portal.BusRoute
	if err := c.ShouldBindJSON(&route); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	route.ID = c.Param("id")
	if err := s.portal.Transport.Update(c.Request.Context(), auth.SessionFrom(c), route); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (s *Server) handleDeleteTransport(c *gin.Context) {
	if err := s.portal.Transport.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleFeeDescription asks the text generator for a parent-facing fee
// description. Generation failures never block the form.
func (s *Server) handleFeeDescription(c *gin.Context) {
	sess := auth.SessionFrom(c)
	if !sess.IsAdmin() {
		writeError(c, &portal.AuthorizationError{Verb: "generate fee description", Role: sess.Role})
		return
	}
	var req textgen.FeeDescriptionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	desc, err := s.gen.FeeDescription(c.Request.Context(), req)
	if err != nil {
		log.Printf("fee description generation failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": desc})
}

func (s *Server) handleFeeInsights(c *gin.Context) {
	sess := auth.SessionFrom(c)
	if !sess.IsAdmin() {
		writeError(c, &portal.AuthorizationError{Verb: "generate fee insights", Role: sess.Role})
		return
	}
	var req textgen.FeeInsightsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	insights, err := s.gen.FeeInsights(c.Request.Context(), req)
	if err != nil {
		log.Printf("fee insights generation failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation unavailable"})
		return
	}
	c.JSON(http.StatusOK, insights)
}
