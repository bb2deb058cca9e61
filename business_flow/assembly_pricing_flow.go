package businessflow

import (
	"context"

	"github.com/fieldserve/estimator/app/dto"
	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/pricing"
	"github.com/fieldserve/estimator/repository"
	"github.com/fieldserve/estimator/utils"
)

// AssemblyPricingFlow defines pricing operations over assemblies.
type AssemblyPricingFlow interface {
	PriceAssembly(ctx context.Context, assemblyUUID string, metadata *ClientMetadata) (*dto.PriceAssemblyResponse, error)
	ApplyAdminRules(ctx context.Context, assemblyUUID string, metadata *ClientMetadata) (*dto.PriceAssemblyResponse, error)
}

// AssemblyPricingFlowImpl implements AssemblyPricingFlow.
type AssemblyPricingFlowImpl struct {
	assemblyRepo repository.AssemblyRepository
	materialRepo repository.MaterialRepository
	jobTypeRepo  repository.JobTypeRepository
	settingsRepo repository.CompanySettingsRepository
	ruleRepo     repository.AdminRuleRepository
}

// NewAssemblyPricingFlow creates a new assembly pricing flow.
func NewAssemblyPricingFlow(
	assemblyRepo repository.AssemblyRepository,
	materialRepo repository.MaterialRepository,
	jobTypeRepo repository.JobTypeRepository,
	settingsRepo repository.CompanySettingsRepository,
	ruleRepo repository.AdminRuleRepository,
) AssemblyPricingFlow {
	return &AssemblyPricingFlowImpl{
		assemblyRepo: assemblyRepo,
		materialRepo: materialRepo,
		jobTypeRepo:  jobTypeRepo,
		settingsRepo: settingsRepo,
		ruleRepo:     ruleRepo,
	}
}

func (f *AssemblyPricingFlowImpl) PriceAssembly(ctx context.Context, assemblyUUID string, metadata *ClientMetadata) (*dto.PriceAssemblyResponse, error) {
	asm, snap, materials, jobTypes, err := f.loadAssemblyContext(ctx, assemblyUUID)
	if err != nil {
		return nil, err
	}

	result := pricing.ComputeAssemblyPricing(assemblySnapshot(asm), materials, jobTypes, snap)
	if result.JobTypeID == 0 {
		return nil, NewBusinessError("NO_JOB_TYPE", "no job type could be resolved for pricing", ErrNoJobTypeResolved)
	}

	return &dto.PriceAssemblyResponse{
		Message:      "Assembly priced successfully",
		AssemblyUUID: asm.UUID.String(),
		Pricing:      toAssemblyPricingDTO(result),
	}, nil
}

func (f *AssemblyPricingFlowImpl) ApplyAdminRules(ctx context.Context, assemblyUUID string, metadata *ClientMetadata) (*dto.PriceAssemblyResponse, error) {
	asm, snap, materials, jobTypes, err := f.loadAssemblyContext(ctx, assemblyUUID)
	if err != nil {
		return nil, err
	}

	asmSnap := assemblySnapshot(asm)
	result := pricing.ComputeAssemblyPricing(asmSnap, materials, jobTypes, snap)
	if result.JobTypeID == 0 {
		return nil, NewBusinessError("NO_JOB_TYPE", "no job type could be resolved for pricing", ErrNoJobTypeResolved)
	}

	rules, err := f.ruleRepo.ListEnabledByCompany(ctx, asm.CompanyID)
	if err != nil {
		return nil, NewBusinessError("RULES_FETCH_FAILED", "failed to load admin rules", err)
	}

	metrics := pricing.BuildExpectedMetrics(asmSnap.Items, result.MaterialCostTotal, result.LaborMinutesExpected)
	targetID, matched := pricing.EvaluateAdminRules(normalizedRules(rules), pricing.RuleScopeAssembly, metrics)

	message := "No admin rule matched"
	if matched && targetID != result.JobTypeID {
		if err := f.assemblyRepo.SetRuleLockedJobType(ctx, asm.ID, utils.ToPtr(targetID)); err != nil {
			return nil, NewBusinessError("RULE_LOCK_FAILED", "failed to persist rule locked job type", err)
		}
		asmSnap.RuleLockedJobTypeID = utils.ToPtr(targetID)
		result = pricing.ComputeAssemblyPricing(asmSnap, materials, jobTypes, snap)
		message = "Admin rule applied"
	}

	return &dto.PriceAssemblyResponse{
		Message:      message,
		AssemblyUUID: asm.UUID.String(),
		Pricing:      toAssemblyPricingDTO(result),
	}, nil
}

func (f *AssemblyPricingFlowImpl) loadAssemblyContext(ctx context.Context, assemblyUUID string) (asm *models.Assembly, snap pricing.CompanySnapshot, materials map[uint]pricing.MaterialSnapshot, jobTypes map[uint]pricing.JobTypeSnapshot, err error) {
	row, err := f.assemblyRepo.ByUUID(ctx, assemblyUUID)
	if err != nil {
		return nil, snap, nil, nil, NewBusinessError("ASSEMBLY_FETCH_FAILED", "failed to load assembly", err)
	}
	if row == nil {
		return nil, snap, nil, nil, NewBusinessError("ASSEMBLY_NOT_FOUND", "assembly not found", ErrAssemblyNotFound)
	}

	settings, err := f.settingsRepo.ByCompanyID(ctx, row.CompanyID)
	if err != nil {
		return nil, snap, nil, nil, NewBusinessError("SETTINGS_FETCH_FAILED", "failed to load company settings", err)
	}
	if settings == nil {
		return nil, snap, nil, nil, NewBusinessError("SETTINGS_NOT_FOUND", "company settings not found", ErrCompanySettingsNotFound)
	}

	jobTypeRows, err := f.jobTypeRepo.ListEnabledByCompany(ctx, row.CompanyID)
	if err != nil {
		return nil, snap, nil, nil, NewBusinessError("JOB_TYPES_FETCH_FAILED", "failed to load job types", err)
	}

	var materialIDs []uint
	for _, item := range row.Items {
		if item.MaterialID != nil {
			materialIDs = appendUnique(materialIDs, *item.MaterialID)
		}
	}
	materialRows, err := f.materialRepo.ListByIDs(ctx, materialIDs)
	if err != nil {
		return nil, snap, nil, nil, NewBusinessError("MATERIALS_FETCH_FAILED", "failed to load materials", err)
	}

	return row, companySnapshot(settings), materialMap(materialRows), jobTypeMap(jobTypeRows), nil
}
