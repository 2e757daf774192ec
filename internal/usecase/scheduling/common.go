package scheduling

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// loadActiveService resolves a bookable service. Missing and inactive
// services are indistinguishable to callers.
func loadActiveService(
	ctx context.Context,
	repo domain.Repository,
	serviceID uint,
) (*models.Service, error) {

	svc, err := repo.GetService(ctx, serviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("service_not_found", "service not found")
	}
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, httperr.NotFoundErr("service_not_found", "service not found")
	}
	return svc, nil
}

// checkStaff ignores the filter for services that do not need a staff
// member and otherwise requires the staff member to be specialized.
func checkStaff(
	ctx context.Context,
	repo domain.Repository,
	svc *models.Service,
	staffID *uint,
) (*uint, error) {

	if staffID == nil || !svc.RequiresStaff {
		return nil, nil
	}

	ok, err := repo.IsStaffSpecialized(ctx, *staffID, svc.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.Validation("staff_not_specialized", "staff member does not perform this service")
	}
	return staffID, nil
}

func invalidate(ctx context.Context, cache domain.SlotCache, serviceID uint) {
	if cache != nil {
		cache.Invalidate(ctx, serviceID)
	}
}
