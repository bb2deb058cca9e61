// Package testing provides test utilities and database setup for testing the estimating system
package testing

import (
	"fmt"
	"math/rand"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCompanySettings creates company settings with a realistic economic model
func (tf *TestFixtures) CreateTestCompanySettings(companyID uint) (*models.CompanySettings, error) {
	settings := &models.CompanySettings{
		CompanyID:           companyID,
		TechnicianCount:     2,
		WorkdaysPerWeek:     5,
		HoursPerDay:         8,
		VacationDaysPerYear: 10,
		SickDaysPerYear:     5,
		JobsPerTechPerDay:   2,
		TechnicianWages: models.TechnicianWageList{
			{Name: "Senior Tech", HourlyRate: 35},
			{Name: "Junior Tech", HourlyRate: 22},
		},
		PurchaseTaxPercent:      8.25,
		MiscMaterialPercent:     5,
		DefaultDiscountPercent:  10,
		ProcessingFeePercent:    3,
		MinBillableLaborMinutes: 30,
		MarkupTiers: models.MarkupTierList{
			{Min: 0, Max: 25, Percent: 100},
			{Min: 25.01, Max: 100, Percent: 75},
			{Min: 100.01, Max: 1000000, Percent: 50},
		},
		MiscAppliesWhenCustomerSupplies: utils.ToPtr(false),
		EstimateValidityDays:            30,
		StartingEstimateNumber:          1000,
		BusinessExpenseMonthly:          12000,
		BusinessExpenseItemized:         utils.ToPtr(false),
		PersonalExpenseMonthly:          6000,
		PersonalExpenseItemized:         utils.ToPtr(false),
		NetProfitGoalMode:               models.NetProfitGoalModePercent,
		NetProfitGoalValue:              20,
	}

	if err := tf.DB.DB.Create(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create test company settings: %w", err)
	}

	return settings, nil
}

// CreateTestJobType creates a job type for the given company
func (tf *TestFixtures) CreateTestJobType(companyID uint, name string, isDefault bool) (*models.JobType, error) {
	jobType := &models.JobType{
		CompanyID:          companyID,
		Name:               name,
		BillingMode:        models.BillingModeFlat,
		GrossMarginPercent: 60,
		EfficiencyPercent:  85,
		AllowDiscounts:     utils.ToPtr(true),
		Enabled:            utils.ToPtr(true),
		IsDefault:          utils.ToPtr(isDefault),
		MaterialMarkupMode: models.MaterialMarkupModeCompany,
	}

	if err := tf.DB.DB.Create(jobType).Error; err != nil {
		return nil, fmt.Errorf("failed to create test job type %s: %w", name, err)
	}

	return jobType, nil
}

// CreateTestHourlyJobType creates an hourly-billed job type with a fixed material markup
func (tf *TestFixtures) CreateTestHourlyJobType(companyID uint, name string, markupPercent float64) (*models.JobType, error) {
	jobType := &models.JobType{
		CompanyID:             companyID,
		Name:                  name,
		BillingMode:           models.BillingModeHourly,
		GrossMarginPercent:    50,
		EfficiencyPercent:     90,
		AllowDiscounts:        utils.ToPtr(true),
		Enabled:               utils.ToPtr(true),
		IsDefault:             utils.ToPtr(false),
		MaterialMarkupMode:    models.MaterialMarkupModeFixed,
		MaterialMarkupPercent: markupPercent,
	}

	if err := tf.DB.DB.Create(jobType).Error; err != nil {
		return nil, fmt.Errorf("failed to create test hourly job type %s: %w", name, err)
	}

	return jobType, nil
}

// CreateTestMaterial creates a catalog material
func (tf *TestFixtures) CreateTestMaterial(companyID uint, name string, baseCost, laborMinutes float64) (*models.Material, error) {
	material := &models.Material{
		CompanyID:     companyID,
		LibraryKind:   models.LibraryKindCompany,
		Name:          name,
		BaseCost:      baseCost,
		UseCustomCost: utils.ToPtr(false),
		Taxable:       utils.ToPtr(true),
		LaborMinutes:  laborMinutes,
	}

	if err := tf.DB.DB.Create(material).Error; err != nil {
		return nil, fmt.Errorf("failed to create test material %s: %w", name, err)
	}

	return material, nil
}

// CreateTestAssembly creates an assembly with a catalog material line and a labor line
func (tf *TestFixtures) CreateTestAssembly(companyID uint, name string, materialID uint, jobTypeID *uint) (*models.Assembly, error) {
	assembly := &models.Assembly{
		CompanyID:                 companyID,
		LibraryKind:               models.LibraryKindCompany,
		Name:                      name,
		JobTypeID:                 jobTypeID,
		CustomerSuppliesMaterials: utils.ToPtr(false),
		Items: []models.AssemblyItem{
			{
				Kind:       models.LineItemKindMaterial,
				Position:   0,
				MaterialID: &materialID,
				Quantity:   2,
				Taxable:    utils.ToPtr(true),
			},
			{
				Kind:         models.LineItemKindLabor,
				Position:     1,
				Quantity:     1,
				Taxable:      utils.ToPtr(false),
				LaborMinutes: 45,
			},
		},
	}

	if err := tf.DB.DB.Create(assembly).Error; err != nil {
		return nil, fmt.Errorf("failed to create test assembly %s: %w", name, err)
	}

	return assembly, nil
}

// CreateTestEstimate creates a draft estimate with one active option containing
// a catalog material line
func (tf *TestFixtures) CreateTestEstimate(companyID uint, materialID uint) (*models.Estimate, error) {
	estimate := &models.Estimate{
		CompanyID:    companyID,
		Number:       1000 + rand.Intn(9000),
		CustomerName: "Jane Customer",
		Status:       models.EstimateStatusDraft,
		Options: []models.EstimateOption{
			{
				Name:                      "Option 1",
				IsActive:                  utils.ToPtr(true),
				CustomerSuppliesMaterials: utils.ToPtr(false),
				DiscountEnabled:           utils.ToPtr(false),
				ProcessingFeeEnabled:      utils.ToPtr(false),
				Items: []models.EstimateLineItem{
					{
						Kind:           models.LineItemKindMaterial,
						Position:       0,
						MaterialID:     &materialID,
						Quantity:       3,
						Taxable:        utils.ToPtr(true),
						QuantityFactor: 1,
					},
				},
			},
		},
	}

	if err := tf.DB.DB.Create(estimate).Error; err != nil {
		return nil, fmt.Errorf("failed to create test estimate: %w", err)
	}

	return estimate, nil
}

// CreateTestAdminRule creates an enabled threshold rule targeting the given job type
func (tf *TestFixtures) CreateTestAdminRule(companyID, targetJobTypeID uint, metric, operator string, threshold float64) (*models.AdminRule, error) {
	rule := &models.AdminRule{
		CompanyID:         companyID,
		Name:              fmt.Sprintf("Rule %s %s %.0f", metric, operator, threshold),
		Enabled:           utils.ToPtr(true),
		Scope:             models.RuleScopeBoth,
		Priority:          100,
		ConditionMetric:   &metric,
		ConditionOperator: &operator,
		Threshold:         &threshold,
		TargetJobTypeID:   targetJobTypeID,
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin rule: %w", err)
	}

	return rule, nil
}

// CreateLegacyAdminRule creates a rule row in the shape written before the
// condition columns existed
func (tf *TestFixtures) CreateLegacyAdminRule(companyID, targetJobTypeID uint, minLaborMinutes, minMaterialCost float64) (*models.AdminRule, error) {
	rule := &models.AdminRule{
		CompanyID:       companyID,
		Name:            "Legacy threshold rule",
		Enabled:         utils.ToPtr(true),
		Scope:           models.RuleScopeBoth,
		Priority:        100,
		MinLaborMinutes: &minLaborMinutes,
		MinMaterialCost: &minMaterialCost,
		TargetJobTypeID: targetJobTypeID,
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create legacy admin rule: %w", err)
	}

	return rule, nil
}
