package statement

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/tunebridge/tunebridge/internal/clock"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	SettlementSvc settlementdomain.Service
	PartnerRepo   partnerdomain.Repository
	TrackRepo     trackdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	settlementSvc settlementdomain.Service
	partnerRepo   partnerdomain.Repository
	trackRepo     trackdomain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("statement.service"),
		clock:         p.Clock,
		settlementSvc: p.SettlementSvc,
		partnerRepo:   p.PartnerRepo,
		trackRepo:     p.TrackRepo,
	}
}

// trackLine aggregates a settlement's detail rows per track. A partner can
// have several detail rows for one track when multiple distributors reported
// revenue for it.
type trackLine struct {
	trackID   snowflake.ID
	streams   int64
	downloads int64
	net       decimal.Decimal
	shareRate decimal.Decimal
	share     decimal.Decimal
}

// Generate renders the PDF statement for one settlement and returns the
// document together with a suggested filename.
func (s *Service) Generate(ctx context.Context, settlementID string) (io.Reader, string, error) {
	aggregate, details, err := s.settlementSvc.GetByID(ctx, settlementID)
	if err != nil {
		return nil, "", err
	}

	partner, err := s.partnerRepo.FindByID(ctx, s.db, aggregate.PartnerID)
	if err != nil {
		return nil, "", err
	}

	byTrack := map[snowflake.ID]*trackLine{}
	var order []snowflake.ID
	for _, d := range details {
		line, ok := byTrack[d.TrackID]
		if !ok {
			line = &trackLine{trackID: d.TrackID, shareRate: d.ShareRate}
			byTrack[d.TrackID] = line
			order = append(order, d.TrackID)
		}
		line.streams += d.StreamCount
		line.downloads += d.DownloadCount
		line.net = line.net.Add(d.NetRevenue)
		line.share = line.share.Add(d.PartnerShare)
	}

	data := Data{
		PlatformName: "TuneBridge",
		YearMonth:    aggregate.YearMonth,
		GeneratedAt:  s.clock.Now().Format("2006-01-02"),
		Status:       string(aggregate.Status),

		TotalGross:    aggregate.TotalGrossRevenue.StringFixed(2),
		TotalNet:      aggregate.TotalNetRevenue.StringFixed(2),
		PartnerShare:  aggregate.PartnerShare.StringFixed(2),
		ManagementFee: aggregate.ManagementFee.StringFixed(2),
		NetPayable:    aggregate.PartnerShare.Sub(aggregate.ManagementFee).StringFixed(2),
	}
	if partner != nil {
		data.PartnerName = partner.Name
		data.PartnerEmail = partner.Email
	}
	if aggregate.PaymentRef != nil {
		data.PaymentRef = *aggregate.PaymentRef
	}

	for _, trackID := range order {
		line := byTrack[trackID]
		title := trackID.String()
		artist := ""
		track, err := s.trackRepo.FindByID(ctx, s.db, trackID)
		if err != nil {
			return nil, "", err
		}
		if track != nil {
			title = track.Title
			artist = track.Artist
		}
		data.Lines = append(data.Lines, Line{
			TrackTitle:   title,
			TrackArtist:  artist,
			Streams:      fmt.Sprintf("%d", line.streams),
			Downloads:    fmt.Sprintf("%d", line.downloads),
			NetRevenue:   line.net.StringFixed(2),
			ShareRate:    line.shareRate.StringFixed(2),
			PartnerShare: line.share.StringFixed(2),
		})
	}

	doc, err := render(data)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("statement-%s-%s.pdf", aggregate.PartnerID, aggregate.YearMonth)
	return doc, filename, nil
}
