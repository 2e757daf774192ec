package attendance

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ClockInput is shared by clock-in and clock-out. WorkDate defaults to
// today. ClockTime is HH:MM on the work date (or an instant on that date)
// and defaults to now, which is only allowed when the work date is today.
type ClockInput struct {
	StaffRef

	WorkDate  string
	ClockTime string
	Latitude  *float64
	Longitude *float64
	Notes     string
}

type ClockIn struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock.Clock
}

func NewClockIn(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clk clock.Clock,
) *ClockIn {
	return &ClockIn{
		repo:  repo,
		audit: audit,
		clock: clk,
	}
}

func (uc *ClockIn) Execute(
	ctx context.Context,
	in ClockInput,
) (*domain.WorkStatus, error) {

	st, err := uc.execute(ctx, in)
	metrics.IncClockAction("clock_in", result(err))
	return st, err
}

func (uc *ClockIn) execute(
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

	_, err = uc.repo.FindActiveSession(ctx, sc.staff.ID, day)
	switch {
	case err == nil:
		return nil, httperr.Conflict("already_clocked_in", "staff member already has an active work session for this date")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	at, err := sc.clockAt(in.ClockTime, date, now)
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(domain.ClockIn{
		StaffID:   sc.staff.ID,
		WorkDate:  day,
		At:        at,
		Shift:     sc.shift,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Notes:     in.Notes,
	}, sc.salon)

	// The unique index turns a concurrent duplicate into the same conflict.
	if err := uc.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		SalonID:  sc.salon.ID,
		UserID:   &in.UserID,
		Action:   "clock_in",
		Entity:   "work_session",
		EntityID: &session.ID,
		Metadata: map[string]any{
			"workDate": day,
			"location": session.ClockInLocation,
		},
	})

	return status(ctx, uc.repo, sc, date, now)
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := httperr.KindOf(err); ok {
		return "rejected"
	}
	return "error"
}
