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
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// Breaks records explicit pauses inside today's active session. They add
// to breakMinutes but never change the derived status.
type Breaks struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock.Clock
}

func NewBreaks(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clk clock.Clock,
) *Breaks {
	return &Breaks{
		repo:  repo,
		audit: audit,
		clock: clk,
	}
}

func (uc *Breaks) activeSession(
	ctx context.Context,
	ref StaffRef,
) (*staffContext, *models.WorkSession, error) {

	sc, err := loadStaff(ctx, uc.repo, ref)
	if err != nil {
		return nil, nil, err
	}

	day := timezone.FormatDate(uc.clock.Now(), sc.loc)

	session, err := uc.repo.FindActiveSession(ctx, sc.staff.ID, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, httperr.Validation("not_clocked_in", "there is no active work session for today")
	}
	if err != nil {
		return nil, nil, err
	}
	return sc, session, nil
}

func (uc *Breaks) Start(
	ctx context.Context,
	ref StaffRef,
) (*domain.WorkStatus, error) {

	sc, session, err := uc.activeSession(ctx, ref)
	if err != nil {
		metrics.IncClockAction("break_start", result(err))
		return nil, err
	}

	_, err = uc.repo.FindOpenBreak(ctx, session.ID)
	switch {
	case err == nil:
		err = httperr.Conflict("break_already_started", "a break is already in progress")
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = nil
	}
	if err != nil {
		metrics.IncClockAction("break_start", result(err))
		return nil, err
	}

	now := uc.clock.Now()
	br := &models.WorkBreak{SessionID: session.ID, StartedAt: now}
	if err := uc.repo.CreateBreak(ctx, br); err != nil {
		metrics.IncClockAction("break_start", result(err))
		return nil, err
	}
	metrics.IncClockAction("break_start", "ok")

	uc.audit.Dispatch(audit.Event{
		SalonID:  sc.salon.ID,
		UserID:   &ref.UserID,
		Action:   "break_started",
		Entity:   "work_session",
		EntityID: &session.ID,
	})

	return status(ctx, uc.repo, sc, now, now)
}

func (uc *Breaks) End(
	ctx context.Context,
	ref StaffRef,
) (*domain.WorkStatus, error) {

	sc, session, err := uc.activeSession(ctx, ref)
	if err != nil {
		metrics.IncClockAction("break_end", result(err))
		return nil, err
	}

	br, err := uc.repo.FindOpenBreak(ctx, session.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = httperr.Validation("no_open_break", "there is no break in progress")
	}
	if err != nil {
		metrics.IncClockAction("break_end", result(err))
		return nil, err
	}

	now := uc.clock.Now()
	if err := uc.repo.CloseBreak(ctx, br, now); err != nil {
		metrics.IncClockAction("break_end", result(err))
		return nil, err
	}

	minutes := int(now.Sub(br.StartedAt).Minutes())
	if err := uc.repo.AddBreakMinutes(ctx, session.ID, minutes); err != nil {
		return nil, err
	}
	metrics.IncClockAction("break_end", "ok")

	uc.audit.Dispatch(audit.Event{
		SalonID:  sc.salon.ID,
		UserID:   &ref.UserID,
		Action:   "break_ended",
		Entity:   "work_session",
		EntityID: &session.ID,
		Metadata: map[string]any{"minutes": minutes},
	})

	return status(ctx, uc.repo, sc, now, now)
}
