package attendance

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Repository interface {
	// -------- Staff / Salon --------
	GetStaffByUserID(
		ctx context.Context,
		userID uint,
		salonID uint,
	) (*models.Staff, error)

	GetSalon(
		ctx context.Context,
		id uint,
	) (*models.Salon, error)

	// -------- Sessions --------
	FindActiveSession(
		ctx context.Context,
		staffID uint,
		workDate string,
	) (*models.WorkSession, error)

	// CreateSession inserts an active session. A second active session for
	// the same staff and date is a conflict.
	CreateSession(
		ctx context.Context,
		s *models.WorkSession,
	) error

	// CloseSession persists a completed session only if it is still active
	// in the store. A non-nil openBreak (with EndedAt set) is ended and its
	// minutes added to the session in the same transaction.
	CloseSession(
		ctx context.Context,
		s *models.WorkSession,
		openBreak *models.WorkBreak,
	) error

	AddBreakMinutes(
		ctx context.Context,
		sessionID uint,
		minutes int,
	) error

	ListSessionsForDate(
		ctx context.Context,
		staffID uint,
		workDate string,
	) ([]models.WorkSession, error)

	ListSessionsInRange(
		ctx context.Context,
		staffID uint,
		fromDate string,
		toDate string,
		page int,
		pageSize int,
	) ([]models.WorkSession, int64, error)

	ListAllSessionsInRange(
		ctx context.Context,
		staffID uint,
		fromDate string,
		toDate string,
	) ([]models.WorkSession, error)

	// -------- Bookings --------
	ListStaffBookingsForDate(
		ctx context.Context,
		staffID uint,
		date string,
	) ([]models.Booking, error)

	// -------- Breaks --------
	FindOpenBreak(
		ctx context.Context,
		sessionID uint,
	) (*models.WorkBreak, error)

	CreateBreak(
		ctx context.Context,
		b *models.WorkBreak,
	) error

	CloseBreak(
		ctx context.Context,
		b *models.WorkBreak,
		endedAt time.Time,
	) error
}
