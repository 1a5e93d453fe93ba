package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
)

type createContractRequest struct {
	PartnerID string          `json:"partner_id"`
	TrackID   string          `json:"track_id"`
	ShareRate decimal.Decimal `json:"share_rate"`
	Role      string          `json:"role"`
	StartDate string          `json:"start_date"`
	EndDate   *string         `json:"end_date"`
}

func (s *Server) CreateContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*req.EndDate))
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
			return
		}
		endDate = &parsed
	}

	resp, err := s.contractSvc.Create(c.Request.Context(), contractdomain.CreateRequest{
		PartnerID: strings.TrimSpace(req.PartnerID),
		TrackID:   strings.TrimSpace(req.TrackID),
		ShareRate: req.ShareRate,
		Role:      strings.TrimSpace(req.Role),
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListContracts(c *gin.Context) {
	var query struct {
		PartnerID string `form:"partner_id"`
		TrackID   string `form:"track_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractSvc.List(c.Request.Context(), contractdomain.ListRequest{
		PartnerID: strings.TrimSpace(query.PartnerID),
		TrackID:   strings.TrimSpace(query.TrackID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContractByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.contractSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateContract(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.contractSvc.Deactivate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
