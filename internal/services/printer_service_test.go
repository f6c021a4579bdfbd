package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmorenov/cajadesk/internal/database/testutil"
	"github.com/dmorenov/cajadesk/internal/models"
	apperrors "github.com/dmorenov/cajadesk/pkg/errors"
)

func newTestPrinterService(t *testing.T) *PrinterService {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := NewPrinterService(db, newTestLedger(t, db))
	require.NoError(t, err)
	return svc
}

func TestPrinterCreate(t *testing.T) {
	svc := newTestPrinterService(t)
	ctx := context.Background()

	printer, err := svc.Create(ctx, CreatePrinterInput{Name: " Caja 1 ", Location: "mostrador"})
	require.NoError(t, err)
	require.Equal(t, "Caja 1", printer.Name)
	require.True(t, printer.IsOnline)

	_, err = svc.Create(ctx, CreatePrinterInput{Name: " "})
	require.Error(t, err)
}

func TestPrinterSetOnlineNotifiesOnChangeOnly(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ledger := newTestLedger(t, db)
	svc, err := NewPrinterService(db, ledger)
	require.NoError(t, err)
	ctx := context.Background()

	printer, err := svc.Create(ctx, CreatePrinterInput{Name: "Caja 1"})
	require.NoError(t, err)

	// Setting the current state is a no-op.
	_, err = svc.SetOnline(ctx, printer.ID, true)
	require.NoError(t, err)

	rows, err := ledger.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, rows)

	updated, err := svc.SetOnline(ctx, printer.ID, false)
	require.NoError(t, err)
	require.False(t, updated.IsOnline)

	rows, err = ledger.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.CategoryWarning, rows[0].Category)
	require.Equal(t, "Estado de Impresora", rows[0].Title)

	_, err = svc.SetOnline(ctx, "missing", true)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPrinterListOrderedByName(t *testing.T) {
	svc := newTestPrinterService(t)
	ctx := context.Background()

	for _, name := range []string{"Bodega", "Acceso", "Caja 1"} {
		_, err := svc.Create(ctx, CreatePrinterInput{Name: name})
		require.NoError(t, err)
	}

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Acceso", rows[0].Name)
}

func TestPrinterDelete(t *testing.T) {
	svc := newTestPrinterService(t)
	ctx := context.Background()

	printer, err := svc.Create(ctx, CreatePrinterInput{Name: "Caja 1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, printer.ID))
	require.ErrorIs(t, svc.Delete(ctx, printer.ID), apperrors.ErrNotFound)
}
