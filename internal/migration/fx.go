package migration

import (
	"github.com/tunebridge/tunebridge/internal/config"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
	"github.com/tunebridge/tunebridge/internal/seed"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres deployments (sqlite local dev, mysql) build the
			// schema from the models instead of the embedded SQL.
			if err := conn.AutoMigrate(
				&distributordomain.Distributor{},
				&trackdomain.Track{},
				&partnerdomain.Partner{},
				&ledgerdomain.MonthlyRevenue{},
				&contractdomain.PartnerTrackContract{},
				&settlementdomain.PartnerSettlement{},
				&settlementdomain.PartnerSettlementDetail{},
				&settlementdomain.AllocationRun{},
				&notificationdomain.SettlementNotification{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureDefaultDistributors(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoCatalog(conn)
		}
		return nil
	}),
)
