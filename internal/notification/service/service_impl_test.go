package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tunebridge/tunebridge/internal/clock"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	"github.com/tunebridge/tunebridge/internal/notification/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupNotificationService(t *testing.T) (notificationdomain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&notificationdomain.SettlementNotification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestEmitValidation(t *testing.T) {
	svc, node := setupNotificationService(t)
	ctx := context.Background()

	_, err := svc.Emit(ctx, notificationdomain.EmitRequest{
		Type:  notificationdomain.TypeGeneral,
		Title: "hello",
	})
	require.ErrorIs(t, err, notificationdomain.ErrInvalidPartner)

	_, err = svc.Emit(ctx, notificationdomain.EmitRequest{
		PartnerID: node.Generate(),
		Type:      "push",
		Title:     "hello",
	})
	require.ErrorIs(t, err, notificationdomain.ErrInvalidType)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, node := setupNotificationService(t)
	ctx := context.Background()

	partnerID := node.Generate()
	emitted, err := svc.Emit(ctx, notificationdomain.EmitRequest{
		PartnerID:           partnerID,
		PartnerSettlementID: node.Generate(),
		Type:                notificationdomain.TypeSettlementReady,
		Title:               "Settlement ready for 2025-07",
		Message:             "ready",
	})
	require.NoError(t, err)
	require.False(t, emitted.Read)

	first, err := svc.MarkRead(ctx, emitted.ID.String())
	require.NoError(t, err)
	require.True(t, first.Read)
	require.NotNil(t, first.ReadAt)

	second, err := svc.MarkRead(ctx, emitted.ID.String())
	require.NoError(t, err)
	require.True(t, second.Read)
	require.Equal(t, first.ReadAt.Unix(), second.ReadAt.Unix())

	unread, err := svc.ListForPartner(ctx, partnerID.String(), true)
	require.NoError(t, err)
	require.Empty(t, unread)

	all, err := svc.ListForPartner(ctx, partnerID.String(), false)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestMarkReadUnknown(t *testing.T) {
	svc, node := setupNotificationService(t)

	_, err := svc.MarkRead(context.Background(), node.Generate().String())
	require.ErrorIs(t, err, notificationdomain.ErrNotFound)
}
