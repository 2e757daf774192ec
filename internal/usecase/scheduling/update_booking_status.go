package scheduling

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type BookingAction string

const (
	ActionConfirm  BookingAction = "confirm"
	ActionStart    BookingAction = "start"
	ActionComplete BookingAction = "complete"
	ActionCancel   BookingAction = "cancel"
	ActionNoShow   BookingAction = "no_show"
)

type UpdateBookingStatusInput struct {
	SalonID   uint
	UserID    uint
	BookingID uint
	Action    BookingAction
}

type UpdateBookingStatus struct {
	repo  domain.Repository
	cache domain.SlotCache
	audit *audit.Dispatcher
	clock clock.Clock
}

func NewUpdateBookingStatus(
	repo domain.Repository,
	cache domain.SlotCache,
	audit *audit.Dispatcher,
	clk clock.Clock,
) *UpdateBookingStatus {
	return &UpdateBookingStatus{
		repo:  repo,
		cache: cache,
		audit: audit,
		clock: clk,
	}
}

func (uc *UpdateBookingStatus) Execute(
	ctx context.Context,
	in UpdateBookingStatusInput,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForSalon(ctx, in.BookingID, in.SalonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("booking_not_found", "booking not found")
	}
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	switch in.Action {
	case ActionConfirm:
		err = domain.Confirm(b)
	case ActionStart:
		err = domain.Start(b)
	case ActionComplete:
		err = domain.Complete(b, now)
	case ActionCancel:
		err = domain.Cancel(b, now)
	case ActionNoShow:
		err = domain.MarkNoShow(b)
	default:
		return nil, httperr.Validation("invalid_action", "unknown booking action")
	}
	if err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(b.Status)

	// Cancelling frees capacity.
	if in.Action == ActionCancel {
		invalidate(ctx, uc.cache, b.ServiceID)
	}

	uc.audit.Dispatch(audit.Event{
		SalonID:  in.SalonID,
		UserID:   &in.UserID,
		Action:   "booking_" + b.Status,
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
