package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tunebridge/tunebridge/internal/clock"
	"github.com/tunebridge/tunebridge/internal/config"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	contractrepository "github.com/tunebridge/tunebridge/internal/contract/repository"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	ledgerrepository "github.com/tunebridge/tunebridge/internal/ledger/repository"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	notificationrepository "github.com/tunebridge/tunebridge/internal/notification/repository"
	notificationservice "github.com/tunebridge/tunebridge/internal/notification/service"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/internal/settlement/repository"
	"github.com/tunebridge/tunebridge/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   settlementdomain.Service

	// withRepo rebuilds the service around a substitute repository while
	// sharing the fixture's database and clock.
	withRepo func(repo settlementdomain.Repository) settlementdomain.Service

	distributorID snowflake.ID
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
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

	notifSvc := notificationservice.New(notificationservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fc,
		Repo:  notificationrepository.Provide(),
	})

	withRepo := func(repo settlementdomain.Repository) settlementdomain.Service {
		return New(Params{
			DB:           db,
			Log:          log,
			GenID:        node,
			Clock:        fc,
			Rules:        config.StaticSettlementRules(config.SettlementRules{ManagementFeeRate: 0.10}),
			Repo:         repo,
			LedgerRepo:   ledgerrepository.Provide(),
			ContractRepo: contractrepository.Provide(),
			NotifSvc:     notifSvc,
		})
	}

	return &fixture{
		db:            db,
		node:          node,
		clock:         fc,
		svc:           withRepo(repository.Provide()),
		withRepo:      withRepo,
		distributorID: node.Generate(),
	}
}

func (f *fixture) addRevenue(t *testing.T, trackID *snowflake.ID, yearMonth, gross, net string, streams int64) snowflake.ID {
	t.Helper()
	row := ledgerdomain.MonthlyRevenue{
		ID:            f.node.Generate(),
		DistributorID: f.distributorID,
		TrackID:       trackID,
		YearMonth:     yearMonth,
		GrossRevenue:  mustDecimal(t, gross),
		NetRevenue:    mustDecimal(t, net),
		ManagementFee: decimal.Zero,
		StreamCount:   streams,
		DataSource:    "cms_upload",
		CreatedAt:     f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&row).Error)
	return row.ID
}

func (f *fixture) addContract(t *testing.T, partnerID, trackID snowflake.ID, rate string, start time.Time, end *time.Time) {
	t.Helper()
	row := contractdomain.PartnerTrackContract{
		ID:        f.node.Generate(),
		PartnerID: partnerID,
		TrackID:   trackID,
		ShareRate: mustDecimal(t, rate),
		Role:      contractdomain.RoleArtist,
		StartDate: start,
		EndDate:   end,
		Active:    true,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&row).Error)
}

func (f *fixture) settlement(t *testing.T, partnerID snowflake.ID, yearMonth string) *settlementdomain.PartnerSettlement {
	t.Helper()
	var s settlementdomain.PartnerSettlement
	err := f.db.Where("partner_id = ? AND year_month = ?", partnerID, yearMonth).First(&s).Error
	require.NoError(t, err)
	return &s
}

func (f *fixture) detailCount(t *testing.T, settlementID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&settlementdomain.PartnerSettlementDetail{}).
		Where("partner_settlement_id = ?", settlementID).Count(&count).Error)
	return count
}

func (f *fixture) notificationCount(t *testing.T, partnerID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&notificationdomain.SettlementNotification{}).
		Where("partner_id = ?", partnerID).Count(&count).Error)
	return count
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func contractStart() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestAllocateInvalidYearMonth(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for _, ym := range []string{"", "2025-13", "2025-7", "202507", "abcd-ef"} {
		_, err := f.svc.Allocate(ctx, ym)
		require.ErrorIs(t, err, settlementdomain.ErrInvalidYearMonth, "yearMonth %q", ym)
	}
}

func TestAllocateEmptyMonth(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	result, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)
	require.Equal(t, 0, result.AllocatedPartners)

	var run settlementdomain.AllocationRun
	require.NoError(t, f.db.Where("year_month = ?", "2025-07").First(&run).Error)
	require.NotNil(t, run.CompletedAt)
}

func TestAllocateSplitsByShareRate(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	composer := f.node.Generate()
	label := f.node.Generate()

	f.addContract(t, composer, trackID, "60.00", contractStart(), nil)
	f.addContract(t, label, trackID, "40.00", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-07", "1250.00", "1000.00", 5000)

	result, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)
	require.Equal(t, 2, result.AllocatedPartners)

	composerSettlement := f.settlement(t, composer, "2025-07")
	require.Equal(t, "600.00", composerSettlement.PartnerShare.StringFixed(2))
	require.Equal(t, "60.00", composerSettlement.ManagementFee.StringFixed(2))
	require.Equal(t, "1000.00", composerSettlement.TotalNetRevenue.StringFixed(2))
	require.Equal(t, settlementdomain.StatusPending, composerSettlement.Status)
	require.EqualValues(t, 5000, composerSettlement.TotalStreams)

	labelSettlement := f.settlement(t, label, "2025-07")
	require.Equal(t, "400.00", labelSettlement.PartnerShare.StringFixed(2))
	require.Equal(t, "40.00", labelSettlement.ManagementFee.StringFixed(2))

	require.EqualValues(t, 1, f.detailCount(t, composerSettlement.ID))
	require.EqualValues(t, 1, f.detailCount(t, labelSettlement.ID))

	// Both partners are told their settlement is ready.
	require.EqualValues(t, 1, f.notificationCount(t, composer))
	require.EqualValues(t, 1, f.notificationCount(t, label))
}

func TestAllocateRoundsSharesToCents(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	partnerID := f.node.Generate()

	f.addContract(t, partnerID, trackID, "33.33", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-07", "120.00", "100.00", 100)

	_, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)

	s := f.settlement(t, partnerID, "2025-07")
	require.Equal(t, "33.33", s.PartnerShare.StringFixed(2))
	require.Equal(t, "3.33", s.ManagementFee.StringFixed(2))
}

func TestAllocateSkipsUncontractedAndUnassigned(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	contracted := f.node.Generate()
	orphan := f.node.Generate()
	partnerID := f.node.Generate()

	f.addContract(t, partnerID, contracted, "50.00", contractStart(), nil)
	f.addRevenue(t, &contracted, "2025-07", "200.00", "160.00", 800)
	f.addRevenue(t, &orphan, "2025-07", "500.00", "400.00", 2000)
	f.addRevenue(t, nil, "2025-07", "90.00", "70.00", 0)

	result, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)
	require.Equal(t, 1, result.AllocatedPartners)

	s := f.settlement(t, partnerID, "2025-07")
	require.Equal(t, "80.00", s.PartnerShare.StringFixed(2))
	require.Equal(t, "160.00", s.TotalNetRevenue.StringFixed(2))
}

func TestAllocateContractWindowAsOfMonthStart(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	expired := f.node.Generate()
	current := f.node.Generate()

	// Expired before July 1st, so July revenue must not reach this partner.
	endJune := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f.addContract(t, expired, trackID, "50.00", contractStart(), &endJune)
	f.addContract(t, current, trackID, "50.00", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), nil)
	f.addRevenue(t, &trackID, "2025-07", "100.00", "80.00", 400)

	result, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)
	require.Equal(t, 1, result.AllocatedPartners)

	var count int64
	require.NoError(t, f.db.Model(&settlementdomain.PartnerSettlement{}).
		Where("partner_id = ?", expired).Count(&count).Error)
	require.Zero(t, count)

	s := f.settlement(t, current, "2025-07")
	require.Equal(t, "40.00", s.PartnerShare.StringFixed(2))
}

func TestAllocateIdempotentWhilePending(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	partnerID := f.node.Generate()

	f.addContract(t, partnerID, trackID, "50.00", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-07", "100.00", "80.00", 400)

	_, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)
	first := f.settlement(t, partnerID, "2025-07")

	// A late statement arrives and the month is re-imported, then re-run.
	f.addRevenue(t, &trackID, "2025-07", "50.00", "40.00", 200)
	f.clock.Advance(time.Hour)

	result, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)
	require.Equal(t, 1, result.AllocatedPartners)

	second := f.settlement(t, partnerID, "2025-07")
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "60.00", second.PartnerShare.StringFixed(2))
	require.Equal(t, "120.00", second.TotalNetRevenue.StringFixed(2))
	require.EqualValues(t, 2, f.detailCount(t, second.ID))

	// Re-allocation is not a new settlement, so no second notification.
	require.EqualValues(t, 1, f.notificationCount(t, partnerID))
}

func TestAllocateLockedSettlementAbortsMonth(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	confirmed := f.node.Generate()
	pending := f.node.Generate()

	f.addContract(t, confirmed, trackID, "60.00", contractStart(), nil)
	f.addContract(t, pending, trackID, "40.00", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-07", "100.00", "80.00", 400)

	_, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)

	confirmedSettlement := f.settlement(t, confirmed, "2025-07")
	_, err = f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: confirmedSettlement.ID.String(),
		To:           settlementdomain.StatusConfirmed,
	})
	require.NoError(t, err)

	f.addRevenue(t, &trackID, "2025-07", "500.00", "400.00", 2000)

	_, err = f.svc.Allocate(ctx, "2025-07")
	require.ErrorIs(t, err, settlementdomain.ErrSettlementLocked)

	var lockedErr *settlementdomain.LockedError
	require.ErrorAs(t, err, &lockedErr)
	require.Equal(t, confirmed, lockedErr.PartnerID)
	require.Equal(t, settlementdomain.StatusConfirmed, lockedErr.Status)

	// The whole month rolled back: the pending partner keeps the old amounts.
	pendingSettlement := f.settlement(t, pending, "2025-07")
	require.Equal(t, "32.00", pendingSettlement.PartnerShare.StringFixed(2))
	require.EqualValues(t, 1, f.detailCount(t, pendingSettlement.ID))
}

func TestAllocateMonthsDoNotInterfere(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	partnerID := f.node.Generate()

	f.addContract(t, partnerID, trackID, "50.00", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-06", "100.00", "80.00", 400)
	f.addRevenue(t, &trackID, "2025-07", "300.00", "240.00", 1200)

	_, err := f.svc.Allocate(ctx, "2025-06")
	require.NoError(t, err)
	_, err = f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)

	june := f.settlement(t, partnerID, "2025-06")
	july := f.settlement(t, partnerID, "2025-07")
	require.Equal(t, "40.00", june.PartnerShare.StringFixed(2))
	require.Equal(t, "120.00", july.PartnerShare.StringFixed(2))
	require.NotEqual(t, june.ID, july.ID)
}

func TestListAndGetByID(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	partnerID := f.node.Generate()

	f.addContract(t, partnerID, trackID, "50.00", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-07", "100.00", "80.00", 400)

	_, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)

	listed, page, err := f.svc.List(ctx, settlementdomain.ListRequest{
		PartnerID: partnerID.String(),
		YearMonth: "2025-07",
		Status:    "pending",
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.False(t, page.HasMore)

	aggregate, details, err := f.svc.GetByID(ctx, listed[0].ID.String())
	require.NoError(t, err)
	require.Equal(t, listed[0].ID, aggregate.ID)
	require.Len(t, details, 1)
	require.Equal(t, trackID, details[0].TrackID)
	require.Equal(t, "40.00", details[0].PartnerShare.StringFixed(2))

	_, _, err = f.svc.GetByID(ctx, f.node.Generate().String())
	require.ErrorIs(t, err, settlementdomain.ErrNotFound)
}

func TestListPaginatesWithCursor(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	trackID := f.node.Generate()
	partners := []snowflake.ID{f.node.Generate(), f.node.Generate(), f.node.Generate()}

	f.addContract(t, partners[0], trackID, "20.00", contractStart(), nil)
	f.addContract(t, partners[1], trackID, "30.00", contractStart(), nil)
	f.addContract(t, partners[2], trackID, "50.00", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-07", "100.00", "80.00", 400)

	_, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)

	first, page, err := f.svc.List(ctx, settlementdomain.ListRequest{
		YearMonth: "2025-07",
		Page:      pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.True(t, page.HasMore)
	require.NotEmpty(t, page.NextPageToken)
	require.Equal(t, partners[0], first[0].PartnerID)
	require.Equal(t, partners[1], first[1].PartnerID)

	rest, page, err := f.svc.List(ctx, settlementdomain.ListRequest{
		YearMonth: "2025-07",
		Page:      pagination.Pagination{PageSize: 2, PageToken: page.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.False(t, page.HasMore)
	require.Equal(t, partners[2], rest[0].PartnerID)

	_, _, err = f.svc.List(ctx, settlementdomain.ListRequest{
		YearMonth: "2025-07",
		Page:      pagination.Pagination{PageToken: "!!not-a-token!!"},
	})
	require.ErrorIs(t, err, settlementdomain.ErrInvalidPageToken)
}
