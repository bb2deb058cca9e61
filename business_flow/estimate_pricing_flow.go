package businessflow

import (
	"context"
	"time"

	"github.com/fieldserve/estimator/app/dto"
	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/pricing"
	"github.com/fieldserve/estimator/repository"
	"github.com/fieldserve/estimator/utils"
)

// EstimatePricingFlow defines pricing operations over estimates.
type EstimatePricingFlow interface {
	PriceEstimate(ctx context.Context, estimateUUID string, req *dto.PriceEstimateRequest, metadata *ClientMetadata) (*dto.PriceEstimateResponse, error)
	ApplyAdminRules(ctx context.Context, estimateUUID string, metadata *ClientMetadata) (*dto.ApplyAdminRulesResponse, error)
}

// EstimatePricingFlowImpl implements EstimatePricingFlow.
type EstimatePricingFlowImpl struct {
	estimateRepo repository.EstimateRepository
	assemblyRepo repository.AssemblyRepository
	materialRepo repository.MaterialRepository
	jobTypeRepo  repository.JobTypeRepository
	settingsRepo repository.CompanySettingsRepository
	ruleRepo     repository.AdminRuleRepository
}

// NewEstimatePricingFlow creates a new estimate pricing flow.
func NewEstimatePricingFlow(
	estimateRepo repository.EstimateRepository,
	assemblyRepo repository.AssemblyRepository,
	materialRepo repository.MaterialRepository,
	jobTypeRepo repository.JobTypeRepository,
	settingsRepo repository.CompanySettingsRepository,
	ruleRepo repository.AdminRuleRepository,
) EstimatePricingFlow {
	return &EstimatePricingFlowImpl{
		estimateRepo: estimateRepo,
		assemblyRepo: assemblyRepo,
		materialRepo: materialRepo,
		jobTypeRepo:  jobTypeRepo,
		settingsRepo: settingsRepo,
		ruleRepo:     ruleRepo,
	}
}

// estimateContext is everything one pricing pass needs, loaded up front.
type estimateContext struct {
	estimate   *models.Estimate
	option     *models.EstimateOption
	settings   *models.CompanySettings
	snapshot   pricing.CompanySnapshot
	materials  map[uint]pricing.MaterialSnapshot
	assemblies map[uint]pricing.AssemblySnapshot
	jobTypes   map[uint]pricing.JobTypeSnapshot
}

func (f *EstimatePricingFlowImpl) PriceEstimate(ctx context.Context, estimateUUID string, req *dto.PriceEstimateRequest, metadata *ClientMetadata) (*dto.PriceEstimateResponse, error) {
	var optionID *uint
	if req != nil {
		optionID = req.OptionID
	}

	ec, err := f.loadEstimateContext(ctx, estimateUUID, optionID)
	if err != nil {
		return nil, err
	}

	result := pricing.ComputeEstimatePricing(estimateSnapshot(ec.option), ec.materials, ec.assemblies, ec.jobTypes, ec.snapshot)
	if result.JobTypeID == 0 {
		return nil, NewBusinessError("NO_JOB_TYPE", "no job type could be resolved for pricing", ErrNoJobTypeResolved)
	}

	// Each pricing pass on an open estimate restarts the validity window.
	var expiresAt *time.Time
	if ec.estimate.IsEditable() {
		expiry := utils.EndOfValidity(ec.settings.EstimateValidityDays)
		if err := f.estimateRepo.SetExpiry(ctx, ec.estimate.ID, expiry); err != nil {
			return nil, NewBusinessError("EXPIRY_UPDATE_FAILED", "failed to update estimate expiry", err)
		}
		expiresAt = &expiry
	}

	return &dto.PriceEstimateResponse{
		Message:      "Estimate priced successfully",
		EstimateUUID: ec.estimate.UUID.String(),
		OptionID:     ec.option.ID,
		ExpiresAt:    expiresAt,
		Pricing:      toEstimatePricingDTO(result),
	}, nil
}

func (f *EstimatePricingFlowImpl) ApplyAdminRules(ctx context.Context, estimateUUID string, metadata *ClientMetadata) (*dto.ApplyAdminRulesResponse, error) {
	ec, err := f.loadEstimateContext(ctx, estimateUUID, nil)
	if err != nil {
		return nil, err
	}
	if !ec.estimate.IsEditable() {
		return nil, NewBusinessError("ESTIMATE_NOT_EDITABLE", "rules can only be applied to draft estimates", ErrEstimateNotEditable)
	}

	snap := estimateSnapshot(ec.option)
	result := pricing.ComputeEstimatePricing(snap, ec.materials, ec.assemblies, ec.jobTypes, ec.snapshot)
	if result.JobTypeID == 0 {
		return nil, NewBusinessError("NO_JOB_TYPE", "no job type could be resolved for pricing", ErrNoJobTypeResolved)
	}

	rules, err := f.ruleRepo.ListEnabledByCompany(ctx, ec.estimate.CompanyID)
	if err != nil {
		return nil, NewBusinessError("RULES_FETCH_FAILED", "failed to load admin rules", err)
	}

	metrics := pricing.BuildExpectedMetrics(snap.Items, result.MaterialCost, result.LaborMinutesExpected)
	targetID, matched := pricing.EvaluateAdminRules(normalizedRules(rules), pricing.RuleScopeEstimate, metrics)

	resp := &dto.ApplyAdminRulesResponse{
		Message:      "No admin rule matched",
		EstimateUUID: ec.estimate.UUID.String(),
		OptionID:     ec.option.ID,
		RuleMatched:  matched,
		Pricing:      toEstimatePricingDTO(result),
	}
	if !matched || targetID == result.JobTypeID {
		return resp, nil
	}

	// One re-pricing pass with the lock; the lock wins on every later pass,
	// so rules cannot flip the job type back and forth.
	if err := f.estimateRepo.SetOptionRuleLockedJobType(ctx, ec.option.ID, utils.ToPtr(targetID)); err != nil {
		return nil, NewBusinessError("RULE_LOCK_FAILED", "failed to persist rule locked job type", err)
	}
	snap.RuleLockedJobTypeID = utils.ToPtr(targetID)
	relocked := pricing.ComputeEstimatePricing(snap, ec.materials, ec.assemblies, ec.jobTypes, ec.snapshot)

	resp.Message = "Admin rule applied"
	resp.TargetJobTypeID = utils.ToPtr(targetID)
	resp.Pricing = toEstimatePricingDTO(relocked)
	return resp, nil
}

// loadEstimateContext loads an estimate, picks the option to price, and
// resolves every referenced entity into engine snapshots.
func (f *EstimatePricingFlowImpl) loadEstimateContext(ctx context.Context, estimateUUID string, optionID *uint) (*estimateContext, error) {
	estimate, err := f.estimateRepo.ByUUID(ctx, estimateUUID)
	if err != nil {
		return nil, NewBusinessError("ESTIMATE_FETCH_FAILED", "failed to load estimate", err)
	}
	if estimate == nil {
		return nil, NewBusinessError("ESTIMATE_NOT_FOUND", "estimate not found", ErrEstimateNotFound)
	}

	option := pickOption(estimate, optionID)
	if option == nil {
		if optionID != nil {
			return nil, NewBusinessError("OPTION_NOT_FOUND", "estimate option not found", ErrOptionNotFound)
		}
		return nil, NewBusinessError("NO_ACTIVE_OPTION", "estimate has no active option", ErrNoActiveOption)
	}

	settings, err := f.settingsRepo.ByCompanyID(ctx, estimate.CompanyID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_FETCH_FAILED", "failed to load company settings", err)
	}
	if settings == nil {
		return nil, NewBusinessError("SETTINGS_NOT_FOUND", "company settings not found", ErrCompanySettingsNotFound)
	}

	jobTypes, err := f.jobTypeRepo.ListEnabledByCompany(ctx, estimate.CompanyID)
	if err != nil {
		return nil, NewBusinessError("JOB_TYPES_FETCH_FAILED", "failed to load job types", err)
	}

	materialIDs, assemblyIDs := referencedIDs(option.Items)
	assemblies, err := f.assemblyRepo.ListByIDsWithItems(ctx, assemblyIDs)
	if err != nil {
		return nil, NewBusinessError("ASSEMBLIES_FETCH_FAILED", "failed to load assemblies", err)
	}
	assemblyMap := make(map[uint]pricing.AssemblySnapshot, len(assemblies))
	for _, a := range assemblies {
		assemblyMap[a.ID] = assemblySnapshot(a)
		for _, item := range a.Items {
			if item.MaterialID != nil {
				materialIDs = appendUnique(materialIDs, *item.MaterialID)
			}
		}
	}

	materials, err := f.materialRepo.ListByIDs(ctx, materialIDs)
	if err != nil {
		return nil, NewBusinessError("MATERIALS_FETCH_FAILED", "failed to load materials", err)
	}

	return &estimateContext{
		estimate:   estimate,
		option:     option,
		settings:   settings,
		snapshot:   companySnapshot(settings),
		materials:  materialMap(materials),
		assemblies: assemblyMap,
		jobTypes:   jobTypeMap(jobTypes),
	}, nil
}

func pickOption(estimate *models.Estimate, optionID *uint) *models.EstimateOption {
	if optionID != nil {
		for i := range estimate.Options {
			if estimate.Options[i].ID == *optionID {
				return &estimate.Options[i]
			}
		}
		return nil
	}
	return estimate.ActiveOption()
}

func referencedIDs(items []models.EstimateLineItem) (materialIDs, assemblyIDs []uint) {
	for _, item := range items {
		switch item.Kind {
		case models.LineItemKindMaterial:
			if item.MaterialID != nil {
				materialIDs = appendUnique(materialIDs, *item.MaterialID)
			}
		case models.LineItemKindAssembly:
			if item.AssemblyID != nil {
				assemblyIDs = appendUnique(assemblyIDs, *item.AssemblyID)
			}
		}
	}
	return materialIDs, assemblyIDs
}

func appendUnique(ids []uint, id uint) []uint {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
