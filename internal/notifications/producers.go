package notifications

import (
	"context"
	"fmt"

	"github.com/dmorenov/cajadesk/internal/models"
)

// Convenience producers. Each is a stateless formatting wrapper around
// Append; collaborator screens and services call these instead of building
// AppendInput by hand.

// NotifyNewRequest announces a pending opening request to every approver
// surface (broadcast, no owner).
func (l *Ledger) NotifyNewRequest(ctx context.Context, req models.OpeningRequest) error {
	_, err := l.Append(ctx, AppendInput{
		Category: models.CategoryRequest,
		Title:    "Nueva Solicitud de Apertura",
		Message:  fmt.Sprintf("Caja %s solicita apertura por $%.2f", req.RegisterID, float64(req.AmountCents)/100),
		Metadata: map[string]any{
			"request_id":  req.ID,
			"register_id": req.RegisterID,
		},
	})
	return err
}

// NotifyApproval tells the requester their opening was authorized.
func (l *Ledger) NotifyApproval(ctx context.Context, req models.OpeningRequest) error {
	_, err := l.Append(ctx, AppendInput{
		Category: models.CategoryApproval,
		Title:    "Solicitud Aprobada",
		Message:  fmt.Sprintf("La apertura de la caja %s fue autorizada", req.RegisterID),
		OwnerID:  req.RequestedBy,
		Metadata: map[string]any{
			"request_id":  req.ID,
			"register_id": req.RegisterID,
			"resolved_by": req.ResolvedBy,
		},
	})
	return err
}

// NotifyRejection tells the requester their opening was denied.
func (l *Ledger) NotifyRejection(ctx context.Context, req models.OpeningRequest) error {
	_, err := l.Append(ctx, AppendInput{
		Category: models.CategoryWarning,
		Title:    "Solicitud Rechazada",
		Message:  fmt.Sprintf("La apertura de la caja %s fue rechazada", req.RegisterID),
		OwnerID:  req.RequestedBy,
		Metadata: map[string]any{
			"request_id":  req.ID,
			"register_id": req.RegisterID,
			"resolved_by": req.ResolvedBy,
		},
	})
	return err
}

// NotifySystemEvent records a broadcast system notice.
func (l *Ledger) NotifySystemEvent(ctx context.Context, title, message string) error {
	_, err := l.Append(ctx, AppendInput{
		Category: models.CategoryInfo,
		Title:    title,
		Message:  message,
	})
	return err
}

// NotifyPrinterStatus announces a printer coming online or dropping off.
func (l *Ledger) NotifyPrinterStatus(ctx context.Context, printer models.Printer) error {
	category := models.CategorySuccess
	message := fmt.Sprintf("La impresora %s está en línea", printer.Name)
	if !printer.IsOnline {
		category = models.CategoryWarning
		message = fmt.Sprintf("La impresora %s está fuera de línea", printer.Name)
	}

	_, err := l.Append(ctx, AppendInput{
		Category: category,
		Title:    "Estado de Impresora",
		Message:  message,
		Metadata: map[string]any{"printer_id": printer.ID},
	})
	return err
}
