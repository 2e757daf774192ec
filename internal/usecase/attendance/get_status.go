package attendance

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
)

type GetStatus struct {
	repo  domain.Repository
	clock clock.Clock
}

func NewGetStatus(repo domain.Repository, clk clock.Clock) *GetStatus {
	return &GetStatus{repo: repo, clock: clk}
}

// Execute reports the live status for today, or the historical minutes of
// any other date.
func (uc *GetStatus) Execute(
	ctx context.Context,
	ref StaffRef,
	date string,
) (*domain.WorkStatus, error) {

	sc, err := loadStaff(ctx, uc.repo, ref)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	d, err := sc.workDate(date, now)
	if err != nil {
		return nil, err
	}

	return status(ctx, uc.repo, sc, d, now)
}
