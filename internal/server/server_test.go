package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tunebridge/tunebridge/internal/clock"
	"github.com/tunebridge/tunebridge/internal/config"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	contractrepository "github.com/tunebridge/tunebridge/internal/contract/repository"
	contractservice "github.com/tunebridge/tunebridge/internal/contract/service"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
	distributorrepository "github.com/tunebridge/tunebridge/internal/distributor/repository"
	distributorservice "github.com/tunebridge/tunebridge/internal/distributor/service"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	ledgerrepository "github.com/tunebridge/tunebridge/internal/ledger/repository"
	ledgerservice "github.com/tunebridge/tunebridge/internal/ledger/service"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	notificationrepository "github.com/tunebridge/tunebridge/internal/notification/repository"
	notificationservice "github.com/tunebridge/tunebridge/internal/notification/service"
	obsmetrics "github.com/tunebridge/tunebridge/internal/observability/metrics"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
	partnerrepository "github.com/tunebridge/tunebridge/internal/partner/repository"
	partnerservice "github.com/tunebridge/tunebridge/internal/partner/service"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	settlementrepository "github.com/tunebridge/tunebridge/internal/settlement/repository"
	settlementservice "github.com/tunebridge/tunebridge/internal/settlement/service"
	"github.com/tunebridge/tunebridge/internal/statement"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
	trackrepository "github.com/tunebridge/tunebridge/internal/track/repository"
	trackservice "github.com/tunebridge/tunebridge/internal/track/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	testMetricsOnce sync.Once
	testMetrics     *obsmetrics.HTTPMetrics
)

func testHTTPMetrics() *obsmetrics.HTTPMetrics {
	testMetricsOnce.Do(func() {
		testMetrics = obsmetrics.NewHTTPMetrics()
	})
	return testMetrics
}

func setupServer(t *testing.T) (*Server, *gorm.DB, *snowflake.Node) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&distributordomain.Distributor{},
		&trackdomain.Track{},
		&partnerdomain.Partner{},
		&ledgerdomain.MonthlyRevenue{},
		&contractdomain.PartnerTrackContract{},
		&settlementdomain.PartnerSettlement{},
		&settlementdomain.PartnerSettlementDetail{},
		&settlementdomain.AllocationRun{},
		&notificationdomain.SettlementNotification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fc := clock.NewFakeClock(time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC))
	cfg := config.Config{AppName: "tunebridge-test", HTTPAddr: ":0", DBType: "sqlite"}

	partnerRepo := partnerrepository.Provide()
	trackRepo := trackrepository.Provide()

	notifSvc := notificationservice.New(notificationservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: notificationrepository.Provide(),
	})
	settlementSvc := settlementservice.New(settlementservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fc,
		Rules:        config.StaticSettlementRules(config.SettlementRules{ManagementFeeRate: 0.10}),
		Repo:         settlementrepository.Provide(),
		LedgerRepo:   ledgerrepository.Provide(),
		ContractRepo: contractrepository.Provide(),
		NotifSvc:     notifSvc,
	})
	statementSvc := statement.New(statement.Params{
		DB:            db,
		Log:           log,
		Clock:         fc,
		SettlementSvc: settlementSvc,
		PartnerRepo:   partnerRepo,
		TrackRepo:     trackRepo,
	})

	engine := NewEngine(log, testHTTPMetrics())
	srv := NewServer(ServerParams{
		Gin:   engine,
		Cfg:   cfg,
		DB:    db,
		GenID: node,
		DistributorSvc: distributorservice.New(distributorservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Repo: distributorrepository.Provide(),
		}),
		TrackSvc: trackservice.New(trackservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Repo: trackRepo,
		}),
		PartnerSvc: partnerservice.New(partnerservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Repo: partnerRepo,
		}),
		LedgerSvc: ledgerservice.New(ledgerservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Repo: ledgerrepository.Provide(),
		}),
		ContractSvc: contractservice.New(contractservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Repo: contractrepository.Provide(),
		}),
		SettlementSvc:   settlementSvc,
		NotificationSvc: notifSvc,
		StatementSvc:    statementSvc,
	})
	return srv, db, node
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func createCatalog(t *testing.T, srv *Server) (distributorID, trackID, partnerID string) {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/partner/admin/distributors", gin.H{
		"name":            "Spotify",
		"commission_rate": "15.00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d struct {
		ID snowflake.ID `json:"ID"`
	}
	decodeData(t, rec, &d)

	rec = doJSON(t, srv, http.MethodPost, "/partner/admin/tracks", gin.H{
		"title":  "First Light",
		"artist": "Demo Artist",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tr struct {
		ID snowflake.ID `json:"ID"`
	}
	decodeData(t, rec, &tr)

	rec = doJSON(t, srv, http.MethodPost, "/partner/admin/partners", gin.H{
		"name":  "Demo Studio",
		"email": "studio@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p struct {
		ID snowflake.ID `json:"ID"`
	}
	decodeData(t, rec, &p)

	return d.ID.String(), tr.ID.String(), p.ID.String()
}

func TestAllocateAndTransitionRoundTrip(t *testing.T) {
	srv, _, _ := setupServer(t)

	distributorID, trackID, partnerID := createCatalog(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/partner/admin/contracts", gin.H{
		"partner_id": partnerID,
		"track_id":   trackID,
		"share_rate": "50.00",
		"role":       "artist",
		"start_date": "2025-01-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/partner/admin/revenue/import", gin.H{
		"distributor_id": distributorID,
		"year_month":     "2025-07",
		"data_source":    "cms_upload",
		"rows": []gin.H{
			{"track_id": trackID, "gross_revenue": "100.00", "net_revenue": "80.00", "stream_count": 400},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/partner/admin/settlements/allocate", gin.H{
		"year_month": "2025-07",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result settlementdomain.AllocationResult
	decodeData(t, rec, &result)
	require.Equal(t, 1, result.AllocatedPartners)

	rec = doJSON(t, srv, http.MethodGet, "/partner/admin/settlements?year_month=2025-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var settlements []settlementdomain.PartnerSettlement
	decodeData(t, rec, &settlements)
	require.Len(t, settlements, 1)
	require.Equal(t, "40.00", settlements[0].PartnerShare.StringFixed(2))

	var listEnvelope struct {
		PageInfo struct {
			HasMore bool `json:"has_more"`
		} `json:"page_info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listEnvelope))
	require.False(t, listEnvelope.PageInfo.HasMore)

	settlementID := settlements[0].ID.String()

	rec = doJSON(t, srv, http.MethodPut, "/partner/admin/settlements/"+settlementID+"/status", gin.H{
		"status": "confirmed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// paid without a payment reference is a validation error
	rec = doJSON(t, srv, http.MethodPut, "/partner/admin/settlements/"+settlementID+"/status", gin.H{
		"status": "paid",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPut, "/partner/admin/settlements/"+settlementID+"/status", gin.H{
		"status":      "paid",
		"payment_ref": "WIRE-2025-0081",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// backwards move conflicts
	rec = doJSON(t, srv, http.MethodPut, "/partner/admin/settlements/"+settlementID+"/status", gin.H{
		"status": "confirmed",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/partner/admin/settlements/"+settlementID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Settlement settlementdomain.PartnerSettlement        `json:"settlement"`
		Details    []settlementdomain.PartnerSettlementDetail `json:"details"`
	}
	decodeData(t, rec, &detail)
	require.Equal(t, settlementdomain.StatusPaid, detail.Settlement.Status)
	require.Len(t, detail.Details, 1)

	// the partner has the full notification trail
	rec = doJSON(t, srv, http.MethodGet, "/partner/notifications?partner_id="+partnerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []notificationdomain.SettlementNotification
	decodeData(t, rec, &notifications)
	require.Len(t, notifications, 3)
}

func TestAllocateRejectsBadMonth(t *testing.T) {
	srv, _, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/partner/admin/settlements/allocate", gin.H{
		"year_month": "2025-13",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "validation_error", resp.Error.Type)
}

func TestUnknownSettlementIs404(t *testing.T) {
	srv, _, node := setupServer(t)

	path := fmt.Sprintf("/partner/admin/settlements/%s", node.Generate())
	rec := doJSON(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestStatementPDFEndpoint(t *testing.T) {
	srv, _, _ := setupServer(t)

	distributorID, trackID, partnerID := createCatalog(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/partner/admin/contracts", gin.H{
		"partner_id": partnerID,
		"track_id":   trackID,
		"share_rate": "50.00",
		"role":       "artist",
		"start_date": "2025-01-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/partner/admin/revenue/import", gin.H{
		"distributor_id": distributorID,
		"year_month":     "2025-07",
		"data_source":    "cms_upload",
		"rows": []gin.H{
			{"track_id": trackID, "gross_revenue": "100.00", "net_revenue": "80.00", "stream_count": 400},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/partner/admin/settlements/allocate", gin.H{
		"year_month": "2025-07",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/partner/admin/settlements?year_month=2025-07", nil)
	var settlements []settlementdomain.PartnerSettlement
	decodeData(t, rec, &settlements)
	require.Len(t, settlements, 1)

	rec = doJSON(t, srv, http.MethodGet, "/partner/admin/settlements/"+settlements[0].ID.String()+"/statement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")), "expected a PDF document")
}

func TestMarkNotificationRead(t *testing.T) {
	srv, db, node := setupServer(t)

	partnerID := node.Generate()
	notif := notificationdomain.SettlementNotification{
		ID:                  node.Generate(),
		PartnerID:           partnerID,
		PartnerSettlementID: node.Generate(),
		Type:                notificationdomain.TypeSettlementReady,
		Title:               "Settlement ready for 2025-07",
		Message:             "ready",
		CreatedAt:           time.Now().UTC(),
	}
	require.NoError(t, db.Create(&notif).Error)

	rec := doJSON(t, srv, http.MethodPut, "/partner/notifications/"+notif.ID.String()+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/partner/notifications?partner_id="+partnerID.String()+"&unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var unread []notificationdomain.SettlementNotification
	decodeData(t, rec, &unread)
	require.Empty(t, unread)
}
