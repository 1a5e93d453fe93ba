package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tunebridge/tunebridge/internal/config"
	"github.com/tunebridge/tunebridge/internal/contract"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	"github.com/tunebridge/tunebridge/internal/distributor"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
	"github.com/tunebridge/tunebridge/internal/ledger"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	"github.com/tunebridge/tunebridge/internal/notification"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	obsmiddleware "github.com/tunebridge/tunebridge/internal/observability/logger"
	obsmetrics "github.com/tunebridge/tunebridge/internal/observability/metrics"
	"github.com/tunebridge/tunebridge/internal/partner"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
	"github.com/tunebridge/tunebridge/internal/settlement"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/internal/statement"
	"github.com/tunebridge/tunebridge/internal/track"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	distributor.Module,
	track.Module,
	partner.Module,
	ledger.Module,
	contract.Module,
	notification.Module,
	settlement.Module,
	statement.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	distributorSvc  distributordomain.Service
	trackSvc        trackdomain.Service
	partnerSvc      partnerdomain.Service
	ledgerSvc       ledgerdomain.Service
	contractSvc     contractdomain.Service
	settlementSvc   settlementdomain.Service
	notificationSvc notificationdomain.Service
	statementSvc    *statement.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	DistributorSvc  distributordomain.Service
	TrackSvc        trackdomain.Service
	PartnerSvc      partnerdomain.Service
	LedgerSvc       ledgerdomain.Service
	ContractSvc     contractdomain.Service
	SettlementSvc   settlementdomain.Service
	NotificationSvc notificationdomain.Service
	StatementSvc    *statement.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		distributorSvc:  p.DistributorSvc,
		trackSvc:        p.TrackSvc,
		partnerSvc:      p.PartnerSvc,
		ledgerSvc:       p.LedgerSvc,
		contractSvc:     p.ContractSvc,
		settlementSvc:   p.SettlementSvc,
		notificationSvc: p.NotificationSvc,
		statementSvc:    p.StatementSvc,
	}

	svc.registerAdminRoutes()
	svc.registerPartnerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/partner/admin")

	// -------- Settlements --------
	admin.POST("/settlements/allocate", s.AllocateSettlements)
	admin.GET("/settlements", s.ListSettlements)
	admin.GET("/settlements/:id", s.GetSettlementByID)
	admin.PUT("/settlements/:id/status", s.TransitionSettlement)
	admin.GET("/settlements/:id/statement", s.GetSettlementStatement)

	// -------- Revenue ledger --------
	admin.POST("/revenue/import", s.ImportRevenue)
	admin.GET("/revenue", s.ListRevenue)

	// -------- Distributors --------
	admin.GET("/distributors", s.ListDistributors)
	admin.POST("/distributors", s.CreateDistributor)
	admin.GET("/distributors/:id", s.GetDistributorByID)

	// -------- Tracks --------
	admin.GET("/tracks", s.ListTracks)
	admin.POST("/tracks", s.CreateTrack)
	admin.GET("/tracks/:id", s.GetTrackByID)
	admin.PATCH("/tracks/:id", s.UpdateTrack)

	// -------- Partners --------
	admin.GET("/partners", s.ListPartners)
	admin.POST("/partners", s.CreatePartner)
	admin.GET("/partners/:id", s.GetPartnerByID)
	admin.PATCH("/partners/:id", s.UpdatePartner)

	// -------- Contracts --------
	admin.GET("/contracts", s.ListContracts)
	admin.POST("/contracts", s.CreateContract)
	admin.GET("/contracts/:id", s.GetContractByID)
	admin.DELETE("/contracts/:id", s.DeactivateContract)
}

func (s *Server) registerPartnerRoutes() {
	api := s.engine.Group("/partner")

	api.GET("/notifications", s.ListNotifications)
	api.PUT("/notifications/:id/read", s.MarkNotificationRead)
}
