package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/models"
	"github.com/dmorenov/cajadesk/internal/notifications"
	apperrors "github.com/dmorenov/cajadesk/pkg/errors"
	"github.com/dmorenov/cajadesk/pkg/logger"
)

// CreatePrinterInput defines attributes for a new printer.
type CreatePrinterInput struct {
	Name      string
	Location  string
	Model     string
	IsDefault bool
}

// PrinterService manages configured printers. Like users, printers are a
// fingerprinted realtime domain.
type PrinterService struct {
	db     *gorm.DB
	ledger *notifications.Ledger
	log    *zap.Logger
}

// NewPrinterService constructs a PrinterService.
func NewPrinterService(db *gorm.DB, ledger *notifications.Ledger) (*PrinterService, error) {
	if db == nil {
		return nil, errors.New("printer service: db is required")
	}
	return &PrinterService{
		db:     db,
		ledger: ledger,
		log:    logger.WithComponent("printers"),
	}, nil
}

// Create registers a printer.
func (s *PrinterService) Create(ctx context.Context, input CreatePrinterInput) (*models.Printer, error) {
	ctx = ensureContext(ctx)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("printer name is required")
	}

	printer := models.Printer{
		Name:      name,
		Location:  strings.TrimSpace(input.Location),
		Model:     strings.TrimSpace(input.Model),
		IsDefault: input.IsDefault,
		IsOnline:  true,
	}

	if err := s.db.WithContext(ctx).Create(&printer).Error; err != nil {
		return nil, fmt.Errorf("printer service: create: %w", err)
	}
	return &printer, nil
}

// List returns every printer ordered by name.
func (s *PrinterService) List(ctx context.Context) ([]models.Printer, error) {
	ctx = ensureContext(ctx)

	var rows []models.Printer
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("printer service: list: %w", err)
	}
	return rows, nil
}

// SetOnline updates a printer's availability and raises a status
// notification when the state actually changed.
func (s *PrinterService) SetOnline(ctx context.Context, id string, online bool) (*models.Printer, error) {
	ctx = ensureContext(ctx)

	var printer models.Printer
	if err := s.db.WithContext(ctx).Take(&printer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("printer service: load: %w", err)
	}

	if printer.IsOnline == online {
		return &printer, nil
	}

	if err := s.db.WithContext(ctx).Model(&printer).Update("is_online", online).Error; err != nil {
		return nil, fmt.Errorf("printer service: set online: %w", err)
	}
	printer.IsOnline = online

	if s.ledger != nil {
		if err := s.ledger.NotifyPrinterStatus(ctx, printer); err != nil {
			s.log.Warn("printer status notification failed",
				zap.String("printer_id", printer.ID),
				zap.Error(err))
		}
	}
	return &printer, nil
}

// Delete removes a printer.
func (s *PrinterService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Printer{})
	if result.Error != nil {
		return fmt.Errorf("printer service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
