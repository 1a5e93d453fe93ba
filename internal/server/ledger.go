package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	"github.com/tunebridge/tunebridge/pkg/db/pagination"
)

type importRevenueRow struct {
	TrackID       string          `json:"track_id"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	ManagementFee decimal.Decimal `json:"management_fee"`
	StreamCount   int64           `json:"stream_count"`
	DownloadCount int64           `json:"download_count"`
}

type importRevenueRequest struct {
	DistributorID string             `json:"distributor_id"`
	YearMonth     string             `json:"year_month"`
	DataSource    string             `json:"data_source"`
	Rows          []importRevenueRow `json:"rows"`
}

func (s *Server) ImportRevenue(c *gin.Context) {
	var req importRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows := make([]ledgerdomain.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, ledgerdomain.ImportRow{
			TrackID:       strings.TrimSpace(row.TrackID),
			GrossRevenue:  row.GrossRevenue,
			NetRevenue:    row.NetRevenue,
			ManagementFee: row.ManagementFee,
			StreamCount:   row.StreamCount,
			DownloadCount: row.DownloadCount,
		})
	}

	resp, err := s.ledgerSvc.Import(c.Request.Context(), ledgerdomain.ImportRequest{
		DistributorID: strings.TrimSpace(req.DistributorID),
		YearMonth:     strings.TrimSpace(req.YearMonth),
		DataSource:    strings.TrimSpace(req.DataSource),
		Rows:          rows,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRevenue(c *gin.Context) {
	var query struct {
		pagination.Pagination
		YearMonth     string `form:"year_month"`
		DistributorID string `form:"distributor_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows, summary, page, err := s.ledgerSvc.List(c.Request.Context(), ledgerdomain.ListRequest{
		YearMonth:     strings.TrimSpace(query.YearMonth),
		DistributorID: strings.TrimSpace(query.DistributorID),
		Page:          query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"rows":      rows,
		"summary":   summary,
		"page_info": page,
	}})
}
