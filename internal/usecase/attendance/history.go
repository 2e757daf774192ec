package attendance

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 366

	defaultPageSize = 20
	maxPageSize     = 100
)

type HistoryInput struct {
	StaffRef

	FromDate string
	ToDate   string
	Page     int
	PageSize int
}

type HistoryOutput struct {
	Sessions []models.WorkSession
	Total    int64
	Page     int
	PageSize int
	Summary  domain.Summary
}

type History struct {
	repo  domain.Repository
	clock clock.Clock
}

func NewHistory(repo domain.Repository, clk clock.Clock) *History {
	return &History{repo: repo, clock: clk}
}

// Execute pages through the sessions of [FromDate, ToDate] and summarizes
// the whole range. The range defaults to the last 30 days.
func (uc *History) Execute(
	ctx context.Context,
	in HistoryInput,
) (*HistoryOutput, error) {

	sc, err := loadStaff(ctx, uc.repo, in.StaffRef)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	to, err := sc.workDate(in.ToDate, now)
	if err != nil {
		return nil, err
	}

	from := to.AddDate(0, 0, -(defaultHistoryDays - 1))
	if in.FromDate != "" {
		if from, err = sc.workDate(in.FromDate, now); err != nil {
			return nil, err
		}
	}

	span := timezone.DaysBetween(from, to, sc.loc)
	if span < 0 {
		return nil, httperr.Validation("invalid_date_range", "fromDate must not be after toDate")
	}
	if span >= maxHistoryDays {
		return nil, httperr.Validation("invalid_date_range", "date range is limited to one year")
	}

	page := max(in.Page, 1)
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	fromDay := timezone.FormatDate(from, sc.loc)
	toDay := timezone.FormatDate(to, sc.loc)

	sessions, total, err := uc.repo.ListSessionsInRange(ctx, sc.staff.ID, fromDay, toDay, page, pageSize)
	if err != nil {
		return nil, err
	}

	all, err := uc.repo.ListAllSessionsInRange(ctx, sc.staff.ID, fromDay, toDay)
	if err != nil {
		return nil, err
	}

	return &HistoryOutput{
		Sessions: sessions,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Summary:  domain.Summarize(all, from, to, sc.loc),
	}, nil
}
