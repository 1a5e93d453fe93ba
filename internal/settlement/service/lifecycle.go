package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"go.uber.org/zap"
)

func (s *Service) Transition(ctx context.Context, req settlementdomain.TransitionRequest) (*settlementdomain.PartnerSettlement, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.SettlementID))
	if err != nil {
		return nil, settlementdomain.ErrNotFound
	}

	current, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, settlementdomain.ErrNotFound
	}

	now := s.clock.Now()
	paymentRef := strings.TrimSpace(req.PaymentRef)

	var notifType notificationdomain.NotificationType

	switch {
	case current.Status == settlementdomain.StatusPending && req.To == settlementdomain.StatusConfirmed:
		affected, err := s.repo.MarkConfirmed(ctx, s.db, id, now)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, settlementdomain.ErrConcurrentModification
		}
		notifType = notificationdomain.TypeSettlementConfirmed

	case current.Status == settlementdomain.StatusConfirmed && req.To == settlementdomain.StatusPaid:
		if paymentRef == "" {
			return nil, settlementdomain.ErrMissingPaymentRef
		}
		affected, err := s.repo.MarkPaid(ctx, s.db, id, paymentRef, now)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, settlementdomain.ErrConcurrentModification
		}
		notifType = notificationdomain.TypePaymentComplete

	default:
		return nil, &settlementdomain.TransitionError{From: current.Status, To: req.To}
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, settlementdomain.ErrNotFound
	}

	s.emitTransition(ctx, updated, notifType)

	s.log.Info("settlement transitioned",
		zap.String("settlement_id", id.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)
	return updated, nil
}

// emitTransition writes the lifecycle notification after the status change
// has committed. Failures are logged and swallowed.
func (s *Service) emitTransition(ctx context.Context, settlement *settlementdomain.PartnerSettlement, notifType notificationdomain.NotificationType) {
	var title, message string
	switch notifType {
	case notificationdomain.TypeSettlementConfirmed:
		title = fmt.Sprintf("Settlement confirmed for %s", settlement.YearMonth)
		message = fmt.Sprintf("Your settlement for %s has been confirmed. Payment of %s is being prepared.",
			settlement.YearMonth, settlement.PartnerShare.StringFixed(2))
	case notificationdomain.TypePaymentComplete:
		ref := ""
		if settlement.PaymentRef != nil {
			ref = *settlement.PaymentRef
		}
		title = fmt.Sprintf("Payment complete for %s", settlement.YearMonth)
		message = fmt.Sprintf("Payment of %s for %s has been sent (ref %s).",
			settlement.PartnerShare.StringFixed(2), settlement.YearMonth, ref)
	default:
		return
	}

	if _, err := s.notifSvc.Emit(ctx, notificationdomain.EmitRequest{
		PartnerID:           settlement.PartnerID,
		PartnerSettlementID: settlement.ID,
		Type:                notifType,
		Title:               title,
		Message:             message,
	}); err != nil {
		s.log.Warn("lifecycle notification failed",
			zap.String("settlement_id", settlement.ID.String()),
			zap.String("type", string(notifType)),
			zap.Error(err),
		)
	}
}
