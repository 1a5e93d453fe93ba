package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/internal/settlement/repository"
	"gorm.io/gorm"
)

func allocateOne(t *testing.T, f *fixture) (snowflake.ID, *settlementdomain.PartnerSettlement) {
	t.Helper()
	ctx := context.Background()

	trackID := f.node.Generate()
	partnerID := f.node.Generate()

	f.addContract(t, partnerID, trackID, "50.00", contractStart(), nil)
	f.addRevenue(t, &trackID, "2025-07", "100.00", "80.00", 400)

	_, err := f.svc.Allocate(ctx, "2025-07")
	require.NoError(t, err)
	return partnerID, f.settlement(t, partnerID, "2025-07")
}

func TestTransitionPendingToConfirmed(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	partnerID, s := allocateOne(t, f)

	updated, err := f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusConfirmed,
	})
	require.NoError(t, err)
	require.Equal(t, settlementdomain.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)
	require.Nil(t, updated.PaidAt)

	var notif notificationdomain.SettlementNotification
	err = f.db.Where("partner_id = ? AND type = ?", partnerID, "settlement_confirmed").First(&notif).Error
	require.NoError(t, err)
	require.Equal(t, s.ID, notif.PartnerSettlementID)
}

func TestTransitionConfirmedToPaidRequiresPaymentRef(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	partnerID, s := allocateOne(t, f)

	_, err := f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusConfirmed,
	})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusPaid,
	})
	require.ErrorIs(t, err, settlementdomain.ErrMissingPaymentRef)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusPaid,
		PaymentRef:   "WIRE-2025-0081",
	})
	require.NoError(t, err)
	require.Equal(t, settlementdomain.StatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)
	require.NotNil(t, updated.PaymentRef)
	require.Equal(t, "WIRE-2025-0081", *updated.PaymentRef)

	var notif notificationdomain.SettlementNotification
	err = f.db.Where("partner_id = ? AND type = ?", partnerID, "payment_complete").First(&notif).Error
	require.NoError(t, err)
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	_, s := allocateOne(t, f)

	// pending → paid skips confirmation.
	_, err := f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusPaid,
		PaymentRef:   "WIRE-1",
	})
	require.ErrorIs(t, err, settlementdomain.ErrInvalidTransition)

	var transitionErr *settlementdomain.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, settlementdomain.StatusPending, transitionErr.From)
	require.Equal(t, settlementdomain.StatusPaid, transitionErr.To)
	require.Contains(t, err.Error(), "pending")
	require.Contains(t, err.Error(), "paid")

	// pending → pending is not a move.
	_, err = f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusPending,
	})
	require.ErrorIs(t, err, settlementdomain.ErrInvalidTransition)

	_, err = f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusConfirmed,
	})
	require.NoError(t, err)

	// Backwards is never allowed.
	_, err = f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusPending,
	})
	require.ErrorIs(t, err, settlementdomain.ErrInvalidTransition)
}

func TestTransitionUnknownSettlement(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: f.node.Generate().String(),
		To:           settlementdomain.StatusConfirmed,
	})
	require.ErrorIs(t, err, settlementdomain.ErrNotFound)

	_, err = f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: "not-a-snowflake",
		To:           settlementdomain.StatusConfirmed,
	})
	require.ErrorIs(t, err, settlementdomain.ErrNotFound)
}

// staleStatusRepo fires beforeMark between the service's read of the
// settlement and its status-guarded update, standing in for a second
// operator winning that window.
type staleStatusRepo struct {
	settlementdomain.Repository
	beforeMark func()
}

func (r *staleStatusRepo) MarkConfirmed(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error) {
	r.beforeMark()
	return r.Repository.MarkConfirmed(ctx, db, id, now)
}

func (r *staleStatusRepo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentRef string, now time.Time) (int64, error) {
	r.beforeMark()
	return r.Repository.MarkPaid(ctx, db, id, paymentRef, now)
}

func TestTransitionConcurrentConfirmLosesRace(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	_, s := allocateOne(t, f)

	raced := f.withRepo(&staleStatusRepo{
		Repository: repository.Provide(),
		beforeMark: func() {
			require.NoError(t, f.db.Exec(
				`UPDATE partner_settlements SET status = ? WHERE id = ?`,
				string(settlementdomain.StatusConfirmed), s.ID,
			).Error)
		},
	})

	_, err := raced.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusConfirmed,
	})
	require.ErrorIs(t, err, settlementdomain.ErrConcurrentModification)

	// The guarded update wrote nothing, so the other operator's state stands.
	current := f.settlement(t, s.PartnerID, s.YearMonth)
	require.Equal(t, settlementdomain.StatusConfirmed, current.Status)
	require.Nil(t, current.ConfirmedAt)
}

func TestTransitionConcurrentPayLosesRace(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	_, s := allocateOne(t, f)

	_, err := f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusConfirmed,
	})
	require.NoError(t, err)

	raced := f.withRepo(&staleStatusRepo{
		Repository: repository.Provide(),
		beforeMark: func() {
			require.NoError(t, f.db.Exec(
				`UPDATE partner_settlements SET status = ?, payment_ref = ? WHERE id = ?`,
				string(settlementdomain.StatusPaid), "WIRE-FIRST", s.ID,
			).Error)
		},
	})

	_, err = raced.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusPaid,
		PaymentRef:   "WIRE-SECOND",
	})
	require.ErrorIs(t, err, settlementdomain.ErrConcurrentModification)

	current := f.settlement(t, s.PartnerID, s.YearMonth)
	require.NotNil(t, current.PaymentRef)
	require.Equal(t, "WIRE-FIRST", *current.PaymentRef)
}

func TestTransitionPaidIsTerminal(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	_, s := allocateOne(t, f)

	for _, step := range []settlementdomain.TransitionRequest{
		{SettlementID: s.ID.String(), To: settlementdomain.StatusConfirmed},
		{SettlementID: s.ID.String(), To: settlementdomain.StatusPaid, PaymentRef: "WIRE-9"},
	} {
		_, err := f.svc.Transition(ctx, step)
		require.NoError(t, err)
	}

	_, err := f.svc.Transition(ctx, settlementdomain.TransitionRequest{
		SettlementID: s.ID.String(),
		To:           settlementdomain.StatusPaid,
		PaymentRef:   "WIRE-10",
	})
	require.ErrorIs(t, err, settlementdomain.ErrInvalidTransition)
}
