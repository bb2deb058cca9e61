// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/fieldserve/estimator/models"
	testingutil "github.com/fieldserve/estimator/testing"
	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanySettings(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreateCompanySettings", func(t *testing.T) {
			settings, err := fixtures.CreateTestCompanySettings(1)
			require.NoError(t, err)
			assert.NotZero(t, settings.ID)
			assert.NotEqual(t, uuid.Nil, settings.UUID)
			assert.Equal(t, 2, settings.TechnicianCount)
			assert.Len(t, settings.TechnicianWages, 2)
			assert.Len(t, settings.MarkupTiers, 3)
			assert.False(t, utils.IsTrue(settings.BusinessExpenseItemized))
		})

		t.Run("JSONBRoundTrip", func(t *testing.T) {
			settings, err := fixtures.CreateTestCompanySettings(2)
			require.NoError(t, err)

			var reloaded models.CompanySettings
			err = testDB.DB.First(&reloaded, settings.ID).Error
			require.NoError(t, err)

			assert.Equal(t, settings.TechnicianWages, reloaded.TechnicianWages)
			assert.Equal(t, settings.MarkupTiers, reloaded.MarkupTiers)
			assert.Equal(t, 35.0, reloaded.TechnicianWages[0].HourlyRate)
		})

		t.Run("UniqueCompanyConstraint", func(t *testing.T) {
			_, err := fixtures.CreateTestCompanySettings(3)
			require.NoError(t, err)

			_, err = fixtures.CreateTestCompanySettings(3)
			assert.Error(t, err) // Should fail due to unique constraint on company_id
		})

		t.Run("MarkupTierValidation", func(t *testing.T) {
			valid := models.MarkupTierList{
				{Min: 0, Max: 25, Percent: 100},
				{Min: 25.01, Max: 100, Percent: 75},
			}
			assert.NoError(t, valid.Validate())

			overlapping := models.MarkupTierList{
				{Min: 0, Max: 50, Percent: 100},
				{Min: 40, Max: 100, Percent: 75},
			}
			assert.Error(t, overlapping.Validate())

			inverted := models.MarkupTierList{
				{Min: 100, Max: 50, Percent: 75},
			}
			assert.Error(t, inverted.Validate())
		})

		t.Run("ExpenseFrequencyValid", func(t *testing.T) {
			assert.True(t, models.ExpenseFrequencyMonthly.Valid())
			assert.True(t, models.ExpenseFrequencyAnnual.Valid())
			assert.False(t, models.ExpenseFrequency("weekly").Valid())
		})

		t.Run("TableName", func(t *testing.T) {
			settings := &models.CompanySettings{}
			assert.Equal(t, "company_settings", settings.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestJobType(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreateJobType", func(t *testing.T) {
			jobType, err := fixtures.CreateTestJobType(1, "Standard Service", true)
			require.NoError(t, err)
			assert.NotZero(t, jobType.ID)
			assert.NotEqual(t, uuid.Nil, jobType.UUID)
			assert.Equal(t, models.BillingModeFlat, jobType.BillingMode)
			assert.True(t, utils.IsTrue(jobType.IsDefault))
			assert.True(t, utils.IsTrue(jobType.Enabled))
		})

		t.Run("HourlyJobTypeMarkupOverride", func(t *testing.T) {
			jobType, err := fixtures.CreateTestHourlyJobType(1, "Hourly Service", 40)
			require.NoError(t, err)
			assert.Equal(t, models.BillingModeHourly, jobType.BillingMode)
			assert.Equal(t, models.MaterialMarkupModeFixed, jobType.MaterialMarkupMode)
			assert.Equal(t, 40.0, jobType.MaterialMarkupPercent)
		})

		t.Run("BillingModeValid", func(t *testing.T) {
			assert.True(t, models.BillingModeFlat.Valid())
			assert.True(t, models.BillingModeHourly.Valid())
			assert.False(t, models.BillingMode("retainer").Valid())
		})

		t.Run("TableName", func(t *testing.T) {
			jobType := &models.JobType{}
			assert.Equal(t, "job_types", jobType.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestMaterial(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreateMaterial", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(1, "Copper Pipe", 12.50, 30)
			require.NoError(t, err)
			assert.NotZero(t, material.ID)
			assert.Equal(t, models.LibraryKindCompany, material.LibraryKind)
			assert.True(t, utils.IsTrue(material.Taxable))
		})

		t.Run("TotalLaborMinutes", func(t *testing.T) {
			material := &models.Material{LaborMinutes: 45}
			assert.Equal(t, 45.0, material.TotalLaborMinutes())

			material = &models.Material{LaborHours: 1, LaborMinutes: 15}
			assert.Equal(t, 75.0, material.TotalLaborMinutes())
		})

		t.Run("TableName", func(t *testing.T) {
			material := &models.Material{}
			assert.Equal(t, "materials", material.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAssembly(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreateAssemblyWithItems", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(1, "Water Heater", 450, 120)
			require.NoError(t, err)

			assembly, err := fixtures.CreateTestAssembly(1, "Heater Install", material.ID, nil)
			require.NoError(t, err)
			assert.NotZero(t, assembly.ID)
			assert.Len(t, assembly.Items, 2)

			var reloaded models.Assembly
			err = testDB.DB.Preload("Items").First(&reloaded, assembly.ID).Error
			require.NoError(t, err)
			assert.Len(t, reloaded.Items, 2)
			assert.Equal(t, models.LineItemKindMaterial, reloaded.Items[0].Kind)
			assert.Equal(t, models.LineItemKindLabor, reloaded.Items[1].Kind)
		})

		t.Run("CascadeDeleteItems", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(1, "Valve", 18, 20)
			require.NoError(t, err)

			assembly, err := fixtures.CreateTestAssembly(1, "Valve Swap", material.ID, nil)
			require.NoError(t, err)

			err = testDB.DB.Delete(&models.Assembly{}, assembly.ID).Error
			require.NoError(t, err)

			var count int64
			err = testDB.DB.Model(&models.AssemblyItem{}).Where("assembly_id = ?", assembly.ID).Count(&count).Error
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("LineItemKindValid", func(t *testing.T) {
			assert.True(t, models.LineItemKindMaterial.Valid())
			assert.True(t, models.LineItemKindAdHoc.Valid())
			assert.True(t, models.LineItemKindLabor.Valid())
			assert.True(t, models.LineItemKindAssembly.Valid())
			assert.False(t, models.LineItemKind("misc").Valid())
		})

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "assemblies", models.Assembly{}.TableName())
			assert.Equal(t, "assembly_items", models.AssemblyItem{}.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEstimate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreateEstimateWithActiveOption", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(1, "Breaker", 35, 25)
			require.NoError(t, err)

			estimate, err := fixtures.CreateTestEstimate(1, material.ID)
			require.NoError(t, err)
			assert.NotZero(t, estimate.ID)
			assert.Equal(t, models.EstimateStatusDraft, estimate.Status)

			active := estimate.ActiveOption()
			require.NotNil(t, active)
			assert.Equal(t, "Option 1", active.Name)
			assert.Len(t, active.Items, 1)
		})

		t.Run("StatusTransitions", func(t *testing.T) {
			estimate := &models.Estimate{Status: models.EstimateStatusDraft}
			assert.True(t, estimate.CanTransitionTo(models.EstimateStatusSent))
			assert.False(t, estimate.CanTransitionTo(models.EstimateStatusApproved))

			estimate.Status = models.EstimateStatusSent
			assert.True(t, estimate.CanTransitionTo(models.EstimateStatusApproved))
			assert.True(t, estimate.CanTransitionTo(models.EstimateStatusDeclined))

			estimate.Status = models.EstimateStatusApproved
			assert.False(t, estimate.CanTransitionTo(models.EstimateStatusDeclined))
		})

		t.Run("IsEditable", func(t *testing.T) {
			assert.True(t, (&models.Estimate{Status: models.EstimateStatusDraft}).IsEditable())
			assert.True(t, (&models.Estimate{Status: models.EstimateStatusSent}).IsEditable())
			assert.False(t, (&models.Estimate{Status: models.EstimateStatusApproved}).IsEditable())
			assert.False(t, (&models.Estimate{Status: models.EstimateStatusDeclined}).IsEditable())
		})

		t.Run("ActiveOptionNoneMarked", func(t *testing.T) {
			estimate := &models.Estimate{
				Options: []models.EstimateOption{
					{Name: "A", IsActive: utils.ToPtr(false)},
					{Name: "B", IsActive: utils.ToPtr(false)},
				},
			}
			assert.Nil(t, estimate.ActiveOption())
		})

		t.Run("UpdatedAtSetOnUpdate", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(1, "Outlet", 3, 10)
			require.NoError(t, err)

			estimate, err := fixtures.CreateTestEstimate(1, material.ID)
			require.NoError(t, err)
			assert.Nil(t, estimate.UpdatedAt)

			estimate.CustomerName = "Renamed Customer"
			err = testDB.DB.Save(estimate).Error
			require.NoError(t, err)
			require.NotNil(t, estimate.UpdatedAt)
			assert.WithinDuration(t, time.Now().UTC(), *estimate.UpdatedAt, time.Minute)
		})

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "estimates", models.Estimate{}.TableName())
			assert.Equal(t, "estimate_options", models.EstimateOption{}.TableName())
			assert.Equal(t, "estimate_line_items", models.EstimateLineItem{}.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminRule(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreateRule", func(t *testing.T) {
			jobType, err := fixtures.CreateTestJobType(1, "Heavy Install", false)
			require.NoError(t, err)

			rule, err := fixtures.CreateTestAdminRule(1, jobType.ID, "labor_minutes", ">=", 240)
			require.NoError(t, err)
			assert.NotZero(t, rule.ID)
			assert.Equal(t, models.RuleScopeBoth, rule.Scope)
			require.NotNil(t, rule.ConditionMetric)
			assert.Equal(t, "labor_minutes", *rule.ConditionMetric)
		})

		t.Run("LegacyRuleShape", func(t *testing.T) {
			jobType, err := fixtures.CreateTestJobType(1, "Legacy Target", false)
			require.NoError(t, err)

			rule, err := fixtures.CreateLegacyAdminRule(1, jobType.ID, 120, 500)
			require.NoError(t, err)
			assert.Nil(t, rule.ConditionMetric)
			require.NotNil(t, rule.MinLaborMinutes)
			assert.Equal(t, 120.0, *rule.MinLaborMinutes)
		})

		t.Run("RuleScopeValid", func(t *testing.T) {
			assert.True(t, models.RuleScopeEstimate.Valid())
			assert.True(t, models.RuleScopeAssembly.Valid())
			assert.True(t, models.RuleScopeBoth.Valid())
			assert.False(t, models.RuleScope("none").Valid())
		})

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "admin_rules", models.AdminRule{}.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}
