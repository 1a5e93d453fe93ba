package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
)

type createTrackRequest struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      *string `json:"album"`
	ReleasedOn *string `json:"released_on"`
}

type updateTrackRequest struct {
	Title  *string `json:"title,omitempty"`
	Artist *string `json:"artist,omitempty"`
	Album  *string `json:"album,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (s *Server) CreateTrack(c *gin.Context) {
	var req createTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var releasedOn *time.Time
	if req.ReleasedOn != nil && strings.TrimSpace(*req.ReleasedOn) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*req.ReleasedOn))
		if err != nil {
			AbortWithError(c, newValidationError("released_on", "invalid_released_on", "invalid released_on"))
			return
		}
		releasedOn = &parsed
	}

	resp, err := s.trackSvc.Create(c.Request.Context(), trackdomain.CreateRequest{
		Title:      strings.TrimSpace(req.Title),
		Artist:     strings.TrimSpace(req.Artist),
		Album:      trimStringPtr(req.Album),
		ReleasedOn: releasedOn,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTracks(c *gin.Context) {
	resp, err := s.trackSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTrackByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.trackSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTrack(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.trackSvc.Update(c.Request.Context(), trackdomain.UpdateRequest{
		ID:     id,
		Title:  trimStringPtr(req.Title),
		Artist: trimStringPtr(req.Artist),
		Album:  trimStringPtr(req.Album),
		Active: req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
