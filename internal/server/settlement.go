package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/pkg/db/pagination"
)

type allocateRequest struct {
	YearMonth string `json:"year_month"`
}

type transitionRequest struct {
	Status     string `json:"status"`
	PaymentRef string `json:"payment_ref"`
}

func (s *Server) AllocateSettlements(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settlementSvc.Allocate(c.Request.Context(), strings.TrimSpace(req.YearMonth))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) TransitionSettlement(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status, err := settlementdomain.ParseStatus(strings.TrimSpace(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.settlementSvc.Transition(c.Request.Context(), settlementdomain.TransitionRequest{
		SettlementID: id,
		To:           status,
		PaymentRef:   strings.TrimSpace(req.PaymentRef),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSettlements(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PartnerID string `form:"partner_id"`
		YearMonth string `form:"year_month"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, page, err := s.settlementSvc.List(c.Request.Context(), settlementdomain.ListRequest{
		PartnerID: strings.TrimSpace(query.PartnerID),
		YearMonth: strings.TrimSpace(query.YearMonth),
		Status:    strings.TrimSpace(query.Status),
		Page:      query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp, "page_info": page})
}

func (s *Server) GetSettlementByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	aggregate, details, err := s.settlementSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"settlement": aggregate,
		"details":    details,
	}})
}

func (s *Server) GetSettlementStatement(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	doc, filename, err := s.statementSvc.Generate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc, nil)
}
