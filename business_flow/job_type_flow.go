package businessflow

import (
	"context"

	"github.com/fieldserve/estimator/app/dto"
	"github.com/fieldserve/estimator/repository"
	"github.com/fieldserve/estimator/utils"
)

// JobTypeFlow defines job type listing and default selection.
type JobTypeFlow interface {
	ListJobTypes(ctx context.Context, companyUUID string, metadata *ClientMetadata) (*dto.ListJobTypesResponse, error)
	SetDefaultJobType(ctx context.Context, jobTypeUUID string, metadata *ClientMetadata) (*dto.SetDefaultJobTypeResponse, error)
}

// JobTypeFlowImpl implements JobTypeFlow.
type JobTypeFlowImpl struct {
	jobTypeRepo  repository.JobTypeRepository
	settingsRepo repository.CompanySettingsRepository
	techCostFlow TechCostFlow
}

// NewJobTypeFlow creates a new job type flow.
func NewJobTypeFlow(
	jobTypeRepo repository.JobTypeRepository,
	settingsRepo repository.CompanySettingsRepository,
	techCostFlow TechCostFlow,
) JobTypeFlow {
	return &JobTypeFlowImpl{
		jobTypeRepo:  jobTypeRepo,
		settingsRepo: settingsRepo,
		techCostFlow: techCostFlow,
	}
}

func (f *JobTypeFlowImpl) ListJobTypes(ctx context.Context, companyUUID string, metadata *ClientMetadata) (*dto.ListJobTypesResponse, error) {
	settings, err := f.settingsRepo.ByUUID(ctx, companyUUID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_FETCH_FAILED", "failed to load company settings", err)
	}
	if settings == nil {
		return nil, NewBusinessError("SETTINGS_NOT_FOUND", "company settings not found", ErrCompanySettingsNotFound)
	}

	rows, err := f.jobTypeRepo.ListByCompany(ctx, settings.CompanyID)
	if err != nil {
		return nil, NewBusinessError("JOB_TYPES_FETCH_FAILED", "failed to load job types", err)
	}

	items := make([]dto.JobTypeItem, 0, len(rows))
	for _, jt := range rows {
		items = append(items, dto.JobTypeItem{
			ID:                 jt.ID,
			UUID:               jt.UUID.String(),
			Name:               jt.Name,
			BillingMode:        string(jt.BillingMode),
			GrossMarginPercent: jt.GrossMarginPercent,
			EfficiencyPercent:  jt.EfficiencyPercent,
			AllowDiscounts:     utils.IsTrue(jt.AllowDiscounts),
			Enabled:            utils.IsTrue(jt.Enabled),
			IsDefault:          utils.IsTrue(jt.IsDefault),
		})
	}

	return &dto.ListJobTypesResponse{
		Message: "Job types retrieved",
		Items:   items,
	}, nil
}

func (f *JobTypeFlowImpl) SetDefaultJobType(ctx context.Context, jobTypeUUID string, metadata *ClientMetadata) (*dto.SetDefaultJobTypeResponse, error) {
	jt, err := f.jobTypeRepo.ByUUID(ctx, jobTypeUUID)
	if err != nil {
		return nil, NewBusinessError("JOB_TYPE_FETCH_FAILED", "failed to load job type", err)
	}
	if jt == nil {
		return nil, NewBusinessError("JOB_TYPE_NOT_FOUND", "job type not found", ErrJobTypeNotFound)
	}
	if !utils.IsTrue(jt.Enabled) {
		return nil, NewBusinessError("JOB_TYPE_DISABLED", "a disabled job type cannot be the default", ErrJobTypeDisabled)
	}

	if err := f.jobTypeRepo.SetDefault(ctx, jt.CompanyID, jt.ID); err != nil {
		return nil, NewBusinessError("SET_DEFAULT_FAILED", "failed to set default job type", err)
	}

	// Cached breakdowns for the old default are now stale.
	if f.techCostFlow != nil {
		_ = f.techCostFlow.InvalidateTechCost(ctx, jt.CompanyID)
	}

	return &dto.SetDefaultJobTypeResponse{
		Message:   "Default job type updated",
		JobTypeID: jt.ID,
	}, nil
}
