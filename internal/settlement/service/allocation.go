package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/pkg/yearmonth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// partnerAccumulator collects one partner's running totals while the month's
// ledger rows are walked. Insertion order is preserved so output is stable.
type partnerAccumulator struct {
	partnerID      snowflake.ID
	totalGross     decimal.Decimal
	totalNet       decimal.Decimal
	partnerShare   decimal.Decimal
	totalStreams   int64
	totalDownloads int64
	details        []settlementdomain.PartnerSettlementDetail
}

func (s *Service) Allocate(ctx context.Context, yearMonth string) (*settlementdomain.AllocationResult, error) {
	start := s.clock.Now()

	if err := yearmonth.Validate(yearMonth); err != nil {
		return nil, settlementdomain.ErrInvalidYearMonth
	}

	asOf, err := yearmonth.MonthStart(yearMonth)
	if err != nil {
		return nil, settlementdomain.ErrInvalidYearMonth
	}

	feeRate := decimal.NewFromFloat(s.rules.Current().ManagementFeeRate)

	var (
		allocated int
		newlyDone []settlementdomain.PartnerSettlement
	)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		if err := s.repo.BeginRun(ctx, tx, s.genID.Generate(), yearMonth, now); err != nil {
			return err
		}

		rows, err := s.ledgerRepo.ListAllocatable(ctx, tx, yearMonth)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return s.repo.CompleteRun(ctx, tx, yearMonth, 0, s.clock.Now())
		}

		contractCache := map[snowflake.ID][]contractdomain.PartnerTrackContract{}
		accByPartner := map[snowflake.ID]*partnerAccumulator{}
		var partnerOrder []snowflake.ID

		for _, row := range rows {
			trackID := *row.TrackID
			contracts, ok := contractCache[trackID]
			if !ok {
				contracts, err = s.contractRepo.ActiveForTrack(ctx, tx, trackID, asOf)
				if err != nil {
					return err
				}
				contractCache[trackID] = contracts
			}
			if len(contracts) == 0 {
				continue
			}

			for _, c := range contracts {
				share := row.NetRevenue.Mul(c.ShareRate).Div(oneHundred).Round(2)

				acc, ok := accByPartner[c.PartnerID]
				if !ok {
					acc = &partnerAccumulator{partnerID: c.PartnerID}
					accByPartner[c.PartnerID] = acc
					partnerOrder = append(partnerOrder, c.PartnerID)
				}
				acc.totalGross = acc.totalGross.Add(row.GrossRevenue)
				acc.totalNet = acc.totalNet.Add(row.NetRevenue)
				acc.partnerShare = acc.partnerShare.Add(share)
				acc.totalStreams += row.StreamCount
				acc.totalDownloads += row.DownloadCount
				acc.details = append(acc.details, settlementdomain.PartnerSettlementDetail{
					ID:              s.genID.Generate(),
					TrackID:         trackID,
					DistributorID:   row.DistributorID,
					SourceRevenueID: row.ID,
					GrossRevenue:    row.GrossRevenue,
					NetRevenue:      row.NetRevenue,
					ShareRate:       c.ShareRate,
					PartnerShare:    share,
					StreamCount:     row.StreamCount,
					DownloadCount:   row.DownloadCount,
					CreatedAt:       now,
				})
			}
		}

		for _, partnerID := range partnerOrder {
			acc := accByPartner[partnerID]
			fee := acc.partnerShare.Mul(feeRate).Round(2)

			existing, err := s.repo.FindAggregate(ctx, tx, partnerID, yearMonth)
			if err != nil {
				return err
			}

			var settlementID snowflake.ID
			switch {
			case existing == nil:
				aggregate := settlementdomain.PartnerSettlement{
					ID:                s.genID.Generate(),
					PartnerID:         partnerID,
					YearMonth:         yearMonth,
					TotalGrossRevenue: acc.totalGross,
					TotalNetRevenue:   acc.totalNet,
					PartnerShare:      acc.partnerShare,
					ManagementFee:     fee,
					TotalStreams:      acc.totalStreams,
					TotalDownloads:    acc.totalDownloads,
					Status:            settlementdomain.StatusPending,
					CreatedAt:         now,
					UpdatedAt:         now,
				}
				if err := s.repo.InsertAggregate(ctx, tx, &aggregate); err != nil {
					return err
				}
				settlementID = aggregate.ID
				newlyDone = append(newlyDone, aggregate)

			case existing.Status == settlementdomain.StatusPending:
				updated := *existing
				updated.TotalGrossRevenue = acc.totalGross
				updated.TotalNetRevenue = acc.totalNet
				updated.PartnerShare = acc.partnerShare
				updated.ManagementFee = fee
				updated.TotalStreams = acc.totalStreams
				updated.TotalDownloads = acc.totalDownloads
				updated.UpdatedAt = now
				affected, err := s.repo.UpdateAggregateAmounts(ctx, tx, &updated)
				if err != nil {
					return err
				}
				if affected == 0 {
					return settlementdomain.ErrConcurrentModification
				}
				settlementID = existing.ID

			default:
				return &settlementdomain.LockedError{
					PartnerID: partnerID,
					YearMonth: yearMonth,
					Status:    existing.Status,
				}
			}

			details := acc.details
			for i := range details {
				details[i].PartnerSettlementID = settlementID
			}
			if err := s.repo.ReplaceDetails(ctx, tx, settlementID, details); err != nil {
				return err
			}
			allocated++
		}

		return s.repo.CompleteRun(ctx, tx, yearMonth, allocated, s.clock.Now())
	})
	if err != nil {
		s.metrics.ObserveRun("error", 0, time.Since(start))
		return nil, err
	}

	// Notifications ride outside the allocation transaction so a failed
	// insert cannot undo committed settlement state.
	for _, aggregate := range newlyDone {
		_, emitErr := s.notifSvc.Emit(ctx, notificationdomain.EmitRequest{
			PartnerID:           aggregate.PartnerID,
			PartnerSettlementID: aggregate.ID,
			Type:                notificationdomain.TypeSettlementReady,
			Title:               fmt.Sprintf("Settlement ready for %s", yearMonth),
			Message: fmt.Sprintf("Your settlement for %s has been calculated: %s payable before fees.",
				yearMonth, aggregate.PartnerShare.StringFixed(2)),
		})
		if emitErr != nil {
			s.log.Warn("settlement_ready notification failed",
				zap.String("partner_id", aggregate.PartnerID.String()),
				zap.String("year_month", yearMonth),
				zap.Error(emitErr),
			)
		}
	}

	s.metrics.ObserveRun("ok", allocated, time.Since(start))
	s.log.Info("allocation run completed",
		zap.String("year_month", yearMonth),
		zap.Int("allocated_partners", allocated),
	)

	return &settlementdomain.AllocationResult{
		YearMonth:         yearMonth,
		AllocatedPartners: allocated,
	}, nil
}
