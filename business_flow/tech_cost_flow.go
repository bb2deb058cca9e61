package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldserve/estimator/app/dto"
	"github.com/fieldserve/estimator/config"
	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/pricing"
	"github.com/fieldserve/estimator/repository"
	"github.com/fieldserve/estimator/utils"
	"github.com/redis/go-redis/v9"
)

// TechCostFlow defines capacity and required revenue computations for dashboards.
type TechCostFlow interface {
	TechCost(ctx context.Context, companyUUID string, jobTypeID *uint, metadata *ClientMetadata) (*dto.TechCostResponse, error)
	RequiredRevenue(ctx context.Context, companyUUID string, jobTypeID *uint, metadata *ClientMetadata) (*dto.RequiredRevenueResponse, error)
	InvalidateTechCost(ctx context.Context, companyID uint) error
}

// TechCostFlowImpl implements TechCostFlow.
type TechCostFlowImpl struct {
	settingsRepo repository.CompanySettingsRepository
	jobTypeRepo  repository.JobTypeRepository
	rc           *redis.Client
	cacheConfig  *config.CacheConfig
}

// NewTechCostFlow creates a new tech cost flow.
func NewTechCostFlow(
	settingsRepo repository.CompanySettingsRepository,
	jobTypeRepo repository.JobTypeRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) TechCostFlow {
	return &TechCostFlowImpl{
		settingsRepo: settingsRepo,
		jobTypeRepo:  jobTypeRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
	}
}

func redisKey(cfg config.CacheConfig, key string) string {
	if cfg.RedisPrefix == "" {
		return key
	}
	return cfg.RedisPrefix + ":" + key
}

func techCostCacheKey(cfg config.CacheConfig, companyID, jobTypeID uint) string {
	return redisKey(cfg, fmt.Sprintf("%s:%d:%d", utils.TechCostCacheKeyPrefix, companyID, jobTypeID))
}

func (f *TechCostFlowImpl) TechCost(ctx context.Context, companyUUID string, jobTypeID *uint, metadata *ClientMetadata) (*dto.TechCostResponse, error) {
	settings, jt, err := f.loadCompanyAndJobType(ctx, companyUUID, jobTypeID)
	if err != nil {
		return nil, err
	}

	resp := &dto.TechCostResponse{
		Message:     "Tech cost breakdown computed",
		CompanyUUID: settings.UUID.String(),
		JobTypeID:   jt.ID,
	}

	cacheKey := techCostCacheKey(*f.cacheConfig, settings.CompanyID, jt.ID)
	if f.cacheEnabled() {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.TechCostDTO
			if err := json.Unmarshal(bs, &cached); err == nil {
				resp.Message = "Tech cost breakdown retrieved from cache"
				resp.Cached = true
				resp.Breakdown = cached
				return resp, nil
			}
		}
	}

	breakdown := pricing.ComputeTechCostBreakdown(companySnapshot(settings), jobTypeSnapshot(jt))
	resp.Breakdown = toTechCostDTO(breakdown)

	if f.cacheEnabled() {
		if bs, err := json.Marshal(resp.Breakdown); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, f.cacheConfig.DefaultTTL).Err()
		}
	}

	return resp, nil
}

func (f *TechCostFlowImpl) RequiredRevenue(ctx context.Context, companyUUID string, jobTypeID *uint, metadata *ClientMetadata) (*dto.RequiredRevenueResponse, error) {
	tc, err := f.TechCost(ctx, companyUUID, jobTypeID, metadata)
	if err != nil {
		return nil, err
	}

	return &dto.RequiredRevenueResponse{
		Message:                "Required revenue computed",
		CompanyUUID:            tc.CompanyUUID,
		JobTypeID:              tc.JobTypeID,
		RequiredRevenuePerHour: tc.Breakdown.RequiredRevenuePerHour,
		RevenueGoalPerMonth:    tc.Breakdown.RevenueGoalPerMonth,
		LoadedLaborRate:        tc.Breakdown.LoadedLaborRate,
		BillableHoursPerMonth:  tc.Breakdown.BillableHoursPerMonth,
	}, nil
}

// InvalidateTechCost drops all cached breakdowns for a company. Called after
// settings or job type updates so stale rates never reach an estimate.
func (f *TechCostFlowImpl) InvalidateTechCost(ctx context.Context, companyID uint) error {
	if !f.cacheEnabled() {
		return nil
	}
	pattern := redisKey(*f.cacheConfig, fmt.Sprintf("%s:%d:*", utils.TechCostCacheKeyPrefix, companyID))
	iter := f.rc.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := f.rc.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (f *TechCostFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled
}

func (f *TechCostFlowImpl) loadCompanyAndJobType(ctx context.Context, companyUUID string, jobTypeID *uint) (*models.CompanySettings, *models.JobType, error) {
	settings, err := f.settingsRepo.ByUUID(ctx, companyUUID)
	if err != nil {
		return nil, nil, NewBusinessError("SETTINGS_FETCH_FAILED", "failed to load company settings", err)
	}
	if settings == nil {
		return nil, nil, NewBusinessError("SETTINGS_NOT_FOUND", "company settings not found", ErrCompanySettingsNotFound)
	}

	var jt *models.JobType
	if jobTypeID != nil {
		jt, err = f.jobTypeRepo.ByID(ctx, *jobTypeID)
		if err != nil {
			return nil, nil, NewBusinessError("JOB_TYPE_FETCH_FAILED", "failed to load job type", err)
		}
		if jt == nil || jt.CompanyID != settings.CompanyID {
			return nil, nil, NewBusinessError("JOB_TYPE_NOT_FOUND", "job type not found", ErrJobTypeNotFound)
		}
		if !utils.IsTrue(jt.Enabled) {
			return nil, nil, NewBusinessError("JOB_TYPE_DISABLED", "job type is disabled", ErrJobTypeDisabled)
		}
	} else {
		jt, err = f.jobTypeRepo.DefaultForCompany(ctx, settings.CompanyID)
		if err != nil {
			return nil, nil, NewBusinessError("JOB_TYPE_FETCH_FAILED", "failed to load default job type", err)
		}
		if jt == nil {
			return nil, nil, NewBusinessError("NO_DEFAULT_JOB_TYPE", "company has no default job type", ErrNoJobTypeResolved)
		}
	}

	return settings, jt, nil
}
