package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
)

type createDistributorRequest struct {
	Name           string          `json:"name"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

func (s *Server) CreateDistributor(c *gin.Context) {
	var req createDistributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.distributorSvc.Create(c.Request.Context(), distributordomain.CreateRequest{
		Name:           strings.TrimSpace(req.Name),
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDistributors(c *gin.Context) {
	resp, err := s.distributorSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDistributorByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.distributorSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
