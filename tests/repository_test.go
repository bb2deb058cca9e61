package tests

import (
	"context"
	"testing"
	"time"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/repository"
	testingutil "github.com/fieldserve/estimator/testing"
	"github.com/fieldserve/estimator/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCompanySettingsRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewCompanySettingsRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByCompanyID", func(t *testing.T) {
			created, err := fixtures.CreateTestCompanySettings(10)
			require.NoError(t, err)

			found, err := repo.ByCompanyID(ctx, 10)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, created.ID, found.ID)
			assert.Equal(t, 8.25, found.PurchaseTaxPercent)
		})

		t.Run("ByCompanyIDNotFound", func(t *testing.T) {
			found, err := repo.ByCompanyID(ctx, 99999)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByUUID", func(t *testing.T) {
			created, err := fixtures.CreateTestCompanySettings(11)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, created.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, created.CompanyID, found.CompanyID)
		})

		t.Run("ByUUIDInvalid", func(t *testing.T) {
			_, err := repo.ByUUID(ctx, "not-a-uuid")
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestJobTypeRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewJobTypeRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ListByCompanyScoped", func(t *testing.T) {
			_, err := fixtures.CreateTestJobType(20, "Service Call", true)
			require.NoError(t, err)
			_, err = fixtures.CreateTestJobType(20, "Remodel", false)
			require.NoError(t, err)
			_, err = fixtures.CreateTestJobType(21, "Other Company", true)
			require.NoError(t, err)

			listed, err := repo.ListByCompany(ctx, 20)
			require.NoError(t, err)
			assert.Len(t, listed, 2)
		})

		t.Run("ListEnabledByCompany", func(t *testing.T) {
			enabled, err := fixtures.CreateTestJobType(22, "Enabled", true)
			require.NoError(t, err)

			disabled, err := fixtures.CreateTestJobType(22, "Disabled", false)
			require.NoError(t, err)
			disabled.Enabled = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(disabled).Error)

			listed, err := repo.ListEnabledByCompany(ctx, 22)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, enabled.ID, listed[0].ID)
		})

		t.Run("DefaultForCompany", func(t *testing.T) {
			def, err := fixtures.CreateTestJobType(23, "Default", true)
			require.NoError(t, err)
			_, err = fixtures.CreateTestJobType(23, "Secondary", false)
			require.NoError(t, err)

			found, err := repo.DefaultForCompany(ctx, 23)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, def.ID, found.ID)
		})

		t.Run("SetDefaultClearsPrevious", func(t *testing.T) {
			oldDefault, err := fixtures.CreateTestJobType(24, "Old Default", true)
			require.NoError(t, err)
			newDefault, err := fixtures.CreateTestJobType(24, "New Default", false)
			require.NoError(t, err)

			err = repo.SetDefault(ctx, 24, newDefault.ID)
			require.NoError(t, err)

			found, err := repo.DefaultForCompany(ctx, 24)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, newDefault.ID, found.ID)

			var reloaded models.JobType
			require.NoError(t, testDB.DB.First(&reloaded, oldDefault.ID).Error)
			assert.False(t, utils.IsTrue(reloaded.IsDefault))
		})

		t.Run("SetDefaultMissingJobType", func(t *testing.T) {
			err := repo.SetDefault(ctx, 24, 99999)
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestMaterialRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewMaterialRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			created, err := fixtures.CreateTestMaterial(30, "Drain Pipe", 22, 40)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, created.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Drain Pipe", found.Name)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, uuid.New().String())
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ListByIDs", func(t *testing.T) {
			first, err := fixtures.CreateTestMaterial(31, "Elbow", 2, 5)
			require.NoError(t, err)
			second, err := fixtures.CreateTestMaterial(31, "Tee", 3, 5)
			require.NoError(t, err)

			listed, err := repo.ListByIDs(ctx, []uint{first.ID, second.ID})
			require.NoError(t, err)
			assert.Len(t, listed, 2)
		})

		t.Run("ListByIDsEmpty", func(t *testing.T) {
			listed, err := repo.ListByIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, listed)
		})

		t.Run("ListByCompanyPagination", func(t *testing.T) {
			for i := 0; i < 5; i++ {
				_, err := fixtures.CreateTestMaterial(32, "Bulk Item", 1, 1)
				require.NoError(t, err)
			}

			page, err := repo.ListByCompany(ctx, 32, 3, 0)
			require.NoError(t, err)
			assert.Len(t, page, 3)

			rest, err := repo.ListByCompany(ctx, 32, 3, 3)
			require.NoError(t, err)
			assert.Len(t, rest, 2)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAssemblyRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewAssemblyRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByIDWithItemsOrdered", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(40, "Disposal Unit", 120, 60)
			require.NoError(t, err)
			created, err := fixtures.CreateTestAssembly(40, "Disposal Install", material.ID, nil)
			require.NoError(t, err)

			found, err := repo.ByIDWithItems(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			require.Len(t, found.Items, 2)
			assert.Equal(t, 0, found.Items[0].Position)
			assert.Equal(t, 1, found.Items[1].Position)
		})

		t.Run("ReplaceItems", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(41, "Faucet", 85, 45)
			require.NoError(t, err)
			created, err := fixtures.CreateTestAssembly(41, "Faucet Swap", material.ID, nil)
			require.NoError(t, err)

			err = repo.ReplaceItems(ctx, created.ID, []*models.AssemblyItem{
				{
					AssemblyID: created.ID,
					Kind:       models.LineItemKindAdHoc,
					Position:   0,
					Name:       utils.ToPtr("Shutoff valve"),
					UnitCost:   utils.ToPtr(14.0),
					Quantity:   1,
					Taxable:    utils.ToPtr(true),
				},
			})
			require.NoError(t, err)

			found, err := repo.ByIDWithItems(ctx, created.ID)
			require.NoError(t, err)
			require.Len(t, found.Items, 1)
			assert.Equal(t, models.LineItemKindAdHoc, found.Items[0].Kind)
		})

		t.Run("SetRuleLockedJobType", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(42, "Panel", 300, 180)
			require.NoError(t, err)
			jobType, err := fixtures.CreateTestJobType(42, "Panel Work", false)
			require.NoError(t, err)
			created, err := fixtures.CreateTestAssembly(42, "Panel Upgrade", material.ID, nil)
			require.NoError(t, err)

			err = repo.SetRuleLockedJobType(ctx, created.ID, &jobType.ID)
			require.NoError(t, err)

			found, err := repo.ByIDWithItems(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, found.RuleLockedJobTypeID)
			assert.Equal(t, jobType.ID, *found.RuleLockedJobTypeID)

			err = repo.SetRuleLockedJobType(ctx, created.ID, nil)
			require.NoError(t, err)

			found, err = repo.ByIDWithItems(ctx, created.ID)
			require.NoError(t, err)
			assert.Nil(t, found.RuleLockedJobTypeID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEstimateRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewEstimateRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUIDWithOptions", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(50, "Thermostat", 60, 30)
			require.NoError(t, err)
			created, err := fixtures.CreateTestEstimate(50, material.ID)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, created.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			require.Len(t, found.Options, 1)
			assert.Len(t, found.Options[0].Items, 1)
		})

		t.Run("NextNumberFloorsAtCompanyStart", func(t *testing.T) {
			settings, err := fixtures.CreateTestCompanySettings(51)
			require.NoError(t, err)

			next, err := repo.NextNumber(ctx, 51, settings.StartingEstimateNumber)
			require.NoError(t, err)
			assert.Equal(t, settings.StartingEstimateNumber, next)
		})

		t.Run("NextNumberCustomCompanyStart", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(56, "Relay", 8, 10)
			require.NoError(t, err)
			created, err := fixtures.CreateTestEstimate(56, material.ID)
			require.NoError(t, err)

			next, err := repo.NextNumber(ctx, 56, created.Number+4000)
			require.NoError(t, err)
			assert.Equal(t, created.Number+4000, next)
		})

		t.Run("NextNumberDefaultWhenStartUnset", func(t *testing.T) {
			next, err := repo.NextNumber(ctx, 57, 0)
			require.NoError(t, err)
			assert.Equal(t, utils.DefaultStartingEstimateNumber, next)
		})

		t.Run("NextNumberIncrements", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(52, "Igniter", 25, 20)
			require.NoError(t, err)
			created, err := fixtures.CreateTestEstimate(52, material.ID)
			require.NoError(t, err)

			next, err := repo.NextNumber(ctx, 52, utils.DefaultStartingEstimateNumber)
			require.NoError(t, err)
			assert.Equal(t, created.Number+1, next)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(53, "Filter", 10, 5)
			require.NoError(t, err)
			created, err := fixtures.CreateTestEstimate(53, material.ID)
			require.NoError(t, err)

			err = repo.UpdateStatus(ctx, created.ID, models.EstimateStatusSent)
			require.NoError(t, err)

			found, err := repo.ByIDWithOptions(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, models.EstimateStatusSent, found.Status)
		})

		t.Run("SetExpiry", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(58, "Damper", 55, 35)
			require.NoError(t, err)
			created, err := fixtures.CreateTestEstimate(58, material.ID)
			require.NoError(t, err)

			expiry := utils.EndOfValidity(30)
			err = repo.SetExpiry(ctx, created.ID, expiry)
			require.NoError(t, err)

			found, err := repo.ByIDWithOptions(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, found.ExpiresAt)
			assert.WithinDuration(t, expiry, *found.ExpiresAt, time.Second)
		})

		t.Run("SetExpiryMissing", func(t *testing.T) {
			err := repo.SetExpiry(ctx, 99999, utils.EndOfValidity(30))
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		})

		t.Run("UpdateStatusMissing", func(t *testing.T) {
			err := repo.UpdateStatus(ctx, 99999, models.EstimateStatusSent)
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		})

		t.Run("ReplaceOptionItems", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(54, "Ballast", 40, 30)
			require.NoError(t, err)
			created, err := fixtures.CreateTestEstimate(54, material.ID)
			require.NoError(t, err)
			optionID := created.Options[0].ID

			err = repo.ReplaceOptionItems(ctx, optionID, []*models.EstimateLineItem{
				{
					OptionID:       optionID,
					Kind:           models.LineItemKindLabor,
					Position:       0,
					Quantity:       1,
					QuantityFactor: 1,
					Taxable:        utils.ToPtr(false),
					LaborMinutes:   90,
				},
			})
			require.NoError(t, err)

			found, err := repo.ByIDWithOptions(ctx, created.ID)
			require.NoError(t, err)
			require.Len(t, found.Options[0].Items, 1)
			assert.Equal(t, models.LineItemKindLabor, found.Options[0].Items[0].Kind)
		})

		t.Run("SetOptionRuleLockedJobType", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(55, "Compressor", 600, 240)
			require.NoError(t, err)
			jobType, err := fixtures.CreateTestJobType(55, "HVAC Major", false)
			require.NoError(t, err)
			created, err := fixtures.CreateTestEstimate(55, material.ID)
			require.NoError(t, err)
			optionID := created.Options[0].ID

			err = repo.SetOptionRuleLockedJobType(ctx, optionID, &jobType.ID)
			require.NoError(t, err)

			found, err := repo.ByIDWithOptions(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, found.Options[0].RuleLockedJobTypeID)
			assert.Equal(t, jobType.ID, *found.Options[0].RuleLockedJobTypeID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminRuleRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewAdminRuleRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ListEnabledByCompany", func(t *testing.T) {
			jobType, err := fixtures.CreateTestJobType(60, "Rule Target", false)
			require.NoError(t, err)

			enabled, err := fixtures.CreateTestAdminRule(60, jobType.ID, "labor_minutes", ">=", 120)
			require.NoError(t, err)

			disabled, err := fixtures.CreateTestAdminRule(60, jobType.ID, "material_cost", ">", 1000)
			require.NoError(t, err)
			disabled.Enabled = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(disabled).Error)

			listed, err := repo.ListEnabledByCompany(ctx, 60)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, enabled.ID, listed[0].ID)
		})

		t.Run("ListByCompanyIncludesLegacy", func(t *testing.T) {
			jobType, err := fixtures.CreateTestJobType(61, "Legacy Target", false)
			require.NoError(t, err)

			_, err = fixtures.CreateTestAdminRule(61, jobType.ID, "total_cost", ">=", 2500)
			require.NoError(t, err)
			_, err = fixtures.CreateLegacyAdminRule(61, jobType.ID, 120, 500)
			require.NoError(t, err)

			listed, err := repo.ListByCompany(ctx, 61)
			require.NoError(t, err)
			assert.Len(t, listed, 2)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestWithTransactionRollback(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("RollbackOnError", func(t *testing.T) {
			material, err := fixtures.CreateTestMaterial(70, "Transient", 5, 5)
			require.NoError(t, err)

			materialRepo := repository.NewMaterialRepository(testDB.DB)
			ctx := testingutil.CreateTestContext()

			err = repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				material.BaseCost = 500
				if err := materialRepo.Update(txCtx, material); err != nil {
					return err
				}
				return assert.AnError
			})
			assert.Error(t, err)

			var reloaded models.Material
			require.NoError(t, testDB.DB.First(&reloaded, material.ID).Error)
			assert.Equal(t, 5.0, reloaded.BaseCost)
		})

		return nil
	})
	require.NoError(t, err)
}
