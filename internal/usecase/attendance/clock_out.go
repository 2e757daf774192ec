package attendance

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type ClockOut struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock.Clock

	// Commission percentage used when neither staff nor salon define one.
	defaultRate float64
}

func NewClockOut(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clk clock.Clock,
	defaultRate float64,
) *ClockOut {
	return &ClockOut{
		repo:        repo,
		audit:       audit,
		clock:       clk,
		defaultRate: defaultRate,
	}
}

func (uc *ClockOut) Execute(
	ctx context.Context,
	in ClockInput,
) (*domain.WorkStatus, error) {

	st, err := uc.execute(ctx, in)
	metrics.IncClockAction("clock_out", result(err))
	return st, err
}

func (uc *ClockOut) execute(
	ctx context.Context,
	in ClockInput,
) (*domain.WorkStatus, error) {

	sc, err := loadStaff(ctx, uc.repo, in.StaffRef)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	date, err := sc.workDate(in.WorkDate, now)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateWorkDate(date, now, sc.loc); err != nil {
		return nil, err
	}
	day := timezone.FormatDate(date, sc.loc)

	session, err := uc.repo.FindActiveSession(ctx, sc.staff.ID, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.Validation("not_clocked_in", "there is no active work session for this date")
	}
	if err != nil {
		return nil, err
	}

	at, err := sc.clockAt(in.ClockTime, date, now)
	if err != nil {
		return nil, err
	}

	if err := domain.Close(session, at, in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	if in.Notes != "" {
		session.Notes = strings.TrimSpace(session.Notes + "\n" + in.Notes)
	}

	openBreak, err := uc.openBreak(ctx, session)
	if err != nil {
		return nil, err
	}

	if err := uc.attributeEarnings(ctx, sc, session); err != nil {
		return nil, err
	}

	// Conditional on the row still being active; the open break is closed
	// in the same transaction.
	if err := uc.repo.CloseSession(ctx, session, openBreak); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		SalonID:  sc.salon.ID,
		UserID:   &in.UserID,
		Action:   "clock_out",
		Entity:   "work_session",
		EntityID: &session.ID,
		Metadata: map[string]any{
			"workDate":      day,
			"actualMinutes": session.ActualMinutes,
			"services":      session.ServicesCompleted,
		},
	})

	return status(ctx, uc.repo, sc, date, now)
}

// openBreak returns the session's running break ended at clock-out, or nil.
func (uc *ClockOut) openBreak(ctx context.Context, session *models.WorkSession) (*models.WorkBreak, error) {
	br, err := uc.repo.FindOpenBreak(ctx, session.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	endedAt := *session.ClockOutTime
	if endedAt.Before(br.StartedAt) {
		endedAt = br.StartedAt
	}
	br.EndedAt = &endedAt
	return br, nil
}

// attributeEarnings records the day's completed bookings on the session,
// minus what earlier sessions of the same day already claimed.
func (uc *ClockOut) attributeEarnings(ctx context.Context, sc *staffContext, session *models.WorkSession) error {
	bookings, err := uc.repo.ListStaffBookingsForDate(ctx, sc.staff.ID, session.WorkDate)
	if err != nil {
		return err
	}

	sessions, err := uc.repo.ListSessionsForDate(ctx, sc.staff.ID, session.WorkDate)
	if err != nil {
		return err
	}

	earlier := make([]models.WorkSession, 0, len(sessions))
	for _, s := range sessions {
		if s.ID != session.ID {
			earlier = append(earlier, s)
		}
	}

	rate := domain.ResolveCommissionRate(sc.staff, sc.salon, uc.defaultRate)
	e := domain.Attribute(domain.DayEarnings(bookings, rate), earlier, rate)

	session.ServicesCompleted = e.Services
	session.RevenueGenerated = e.Revenue
	session.CommissionEarned = e.Commission
	return nil
}
