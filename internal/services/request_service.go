package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/models"
	"github.com/dmorenov/cajadesk/internal/notifications"
	apperrors "github.com/dmorenov/cajadesk/pkg/errors"
	"github.com/dmorenov/cajadesk/pkg/logger"
)

// ErrRequestResolved is returned when approving or rejecting a request that
// already left the pending state.
var ErrRequestResolved = apperrors.New("REQUEST_RESOLVED", "Opening request already resolved", http.StatusConflict)

// CreateRequestInput defines attributes for a new opening request.
type CreateRequestInput struct {
	RegisterID  string
	RequestedBy string
	Reason      string
	AmountCents int64
}

// RequestService manages cash-register opening requests. Writes land in the
// shared store where the poller's request differ observes them; resolutions
// additionally notify the requester through the ledger producers.
type RequestService struct {
	db     *gorm.DB
	ledger *notifications.Ledger
	now    func() time.Time
	log    *zap.Logger
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, ledger *notifications.Ledger) (*RequestService, error) {
	if db == nil {
		return nil, errors.New("request service: db is required")
	}
	return &RequestService{
		db:     db,
		ledger: ledger,
		now:    time.Now,
		log:    logger.WithComponent("requests"),
	}, nil
}

// Create registers a pending opening request and announces it to approvers.
func (s *RequestService) Create(ctx context.Context, input CreateRequestInput) (*models.OpeningRequest, error) {
	ctx = ensureContext(ctx)
	registerID := strings.TrimSpace(input.RegisterID)
	if registerID == "" {
		return nil, apperrors.NewBadRequest("register id is required")
	}
	requestedBy := strings.TrimSpace(input.RequestedBy)
	if requestedBy == "" {
		return nil, apperrors.NewBadRequest("requesting user is required")
	}
	if input.AmountCents < 0 {
		return nil, apperrors.NewBadRequest("amount must not be negative")
	}

	request := models.OpeningRequest{
		RegisterID:  registerID,
		RequestedBy: requestedBy,
		Reason:      strings.TrimSpace(input.Reason),
		AmountCents: input.AmountCents,
		Status:      models.RequestPending,
	}

	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("request service: create: %w", err)
	}

	s.announce(ctx, request, "")
	return &request, nil
}

// List returns opening requests, newest first, optionally filtered by status.
func (s *RequestService) List(ctx context.Context, status string) ([]models.OpeningRequest, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("created_at DESC")
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []models.OpeningRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: list: %w", err)
	}
	return rows, nil
}

// Get loads a single opening request.
func (s *RequestService) Get(ctx context.Context, id string) (*models.OpeningRequest, error) {
	ctx = ensureContext(ctx)

	var request models.OpeningRequest
	if err := s.db.WithContext(ctx).Take(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("request service: get: %w", err)
	}
	return &request, nil
}

// Approve authorizes a pending request and notifies the requester.
func (s *RequestService) Approve(ctx context.Context, id, resolvedBy string) (*models.OpeningRequest, error) {
	return s.resolve(ctx, id, resolvedBy, models.RequestApproved)
}

// Reject denies a pending request and notifies the requester.
func (s *RequestService) Reject(ctx context.Context, id, resolvedBy string) (*models.OpeningRequest, error) {
	return s.resolve(ctx, id, resolvedBy, models.RequestRejected)
}

func (s *RequestService) resolve(ctx context.Context, id, resolvedBy, status string) (*models.OpeningRequest, error) {
	ctx = ensureContext(ctx)

	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Resolved() {
		return nil, ErrRequestResolved
	}

	now := s.now().UTC()
	request.Status = status
	request.ResolvedBy = strings.TrimSpace(resolvedBy)
	request.ProcessedAt = &now

	if err := s.db.WithContext(ctx).Model(request).
		Updates(map[string]any{
			"status":       request.Status,
			"resolved_by":  request.ResolvedBy,
			"processed_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("request service: resolve: %w", err)
	}

	s.announce(ctx, *request, status)
	return request, nil
}

// announce reports request lifecycle changes through the ledger producers.
// Notification failures are logged but never fail the write itself.
func (s *RequestService) announce(ctx context.Context, request models.OpeningRequest, status string) {
	if s.ledger == nil {
		return
	}

	var err error
	switch status {
	case models.RequestApproved:
		err = s.ledger.NotifyApproval(ctx, request)
	case models.RequestRejected:
		err = s.ledger.NotifyRejection(ctx, request)
	default:
		err = s.ledger.NotifyNewRequest(ctx, request)
	}
	if err != nil {
		s.log.Warn("request notification failed",
			zap.String("request_id", request.ID),
			zap.Error(err))
	}
}
