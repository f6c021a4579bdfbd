package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/database"
	"github.com/dmorenov/cajadesk/internal/database/testutil"
	"github.com/dmorenov/cajadesk/internal/models"
	"github.com/dmorenov/cajadesk/internal/notifications"
	apperrors "github.com/dmorenov/cajadesk/pkg/errors"
)

func newTestLedger(t *testing.T, db *gorm.DB) *notifications.Ledger {
	t.Helper()

	settings, err := database.NewSettings(db)
	require.NoError(t, err)

	config, err := notifications.NewConfigService(settings)
	require.NoError(t, err)
	require.NoError(t, config.Load(context.Background()))

	ledger, err := notifications.NewLedger(db, config, notifications.NewToastChannel())
	require.NoError(t, err)
	return ledger
}

func newTestRequestService(t *testing.T) (*RequestService, *notifications.Ledger) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	ledger := newTestLedger(t, db)
	svc, err := NewRequestService(db, ledger)
	require.NoError(t, err)
	return svc, ledger
}

func TestRequestCreateValidation(t *testing.T) {
	svc, _ := newTestRequestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequestInput{RequestedBy: "u1"})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateRequestInput{RegisterID: "caja-1"})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateRequestInput{RegisterID: "caja-1", RequestedBy: "u1", AmountCents: -5})
	require.Error(t, err)
}

func TestRequestCreateAnnouncesToApprovers(t *testing.T) {
	svc, ledger := newTestRequestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequestInput{
		RegisterID:  "caja-1",
		RequestedBy: "u1",
		Reason:      "apertura de turno",
		AmountCents: 100000,
	})
	require.NoError(t, err)
	require.Equal(t, models.RequestPending, created.Status)
	require.NotEmpty(t, created.ID)

	rows, err := ledger.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.CategoryRequest, rows[0].Category)
	require.Equal(t, "Nueva Solicitud de Apertura", rows[0].Title)
}

func TestRequestApproveLifecycle(t *testing.T) {
	svc, ledger := newTestRequestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequestInput{RegisterID: "caja-1", RequestedBy: "u1"})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, created.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, models.RequestApproved, approved.Status)
	require.Equal(t, "admin", approved.ResolvedBy)
	require.NotNil(t, approved.ProcessedAt)
	require.True(t, approved.Resolved())

	// The requester received the targeted approval notice.
	rows, err := ledger.List(ctx, "u1")
	require.NoError(t, err)

	var titles []string
	for _, row := range rows {
		titles = append(titles, row.Title)
	}
	require.Contains(t, titles, "Solicitud Aprobada")

	// Resolution is final.
	_, err = svc.Approve(ctx, created.ID, "admin")
	require.ErrorIs(t, err, ErrRequestResolved)
	_, err = svc.Reject(ctx, created.ID, "admin")
	require.ErrorIs(t, err, ErrRequestResolved)
}

func TestRequestRejectLifecycle(t *testing.T) {
	svc, ledger := newTestRequestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequestInput{RegisterID: "caja-2", RequestedBy: "u1"})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, created.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, models.RequestRejected, rejected.Status)

	rows, err := ledger.List(ctx, "u1")
	require.NoError(t, err)

	var titles []string
	for _, row := range rows {
		titles = append(titles, row.Title)
	}
	require.Contains(t, titles, "Solicitud Rechazada")
}

func TestRequestResolveUnknownID(t *testing.T) {
	svc, _ := newTestRequestService(t)

	_, err := svc.Approve(context.Background(), "no-such-id", "admin")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRequestListFiltersByStatus(t *testing.T) {
	svc, _ := newTestRequestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateRequestInput{RegisterID: "caja-1", RequestedBy: "u1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequestInput{RegisterID: "caja-2", RequestedBy: "u2"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID, "admin")
	require.NoError(t, err)

	pending, err := svc.List(ctx, models.RequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "caja-2", pending[0].RegisterID)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestRequestGet(t *testing.T) {
	svc, _ := newTestRequestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequestInput{RegisterID: "caja-1", RequestedBy: "u1"})
	require.NoError(t, err)

	loaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, loaded.ID)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
