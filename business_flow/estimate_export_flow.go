package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fieldserve/estimator/models"
	"github.com/fieldserve/estimator/pricing"
	"github.com/fieldserve/estimator/repository"
	"github.com/xuri/excelize/v2"
)

// EstimateExportFlow renders a priced estimate as an Excel workbook,
// one sheet per option.
type EstimateExportFlow interface {
	ExportEstimate(ctx context.Context, estimateUUID string, metadata *ClientMetadata) (string, []byte, error)
}

// EstimateExportFlowImpl implements EstimateExportFlow.
type EstimateExportFlowImpl struct {
	estimateRepo repository.EstimateRepository
	assemblyRepo repository.AssemblyRepository
	materialRepo repository.MaterialRepository
	jobTypeRepo  repository.JobTypeRepository
	settingsRepo repository.CompanySettingsRepository
}

// NewEstimateExportFlow creates a new estimate export flow.
func NewEstimateExportFlow(
	estimateRepo repository.EstimateRepository,
	assemblyRepo repository.AssemblyRepository,
	materialRepo repository.MaterialRepository,
	jobTypeRepo repository.JobTypeRepository,
	settingsRepo repository.CompanySettingsRepository,
) EstimateExportFlow {
	return &EstimateExportFlowImpl{
		estimateRepo: estimateRepo,
		assemblyRepo: assemblyRepo,
		materialRepo: materialRepo,
		jobTypeRepo:  jobTypeRepo,
		settingsRepo: settingsRepo,
	}
}

func (f *EstimateExportFlowImpl) ExportEstimate(ctx context.Context, estimateUUID string, metadata *ClientMetadata) (string, []byte, error) {
	estimate, err := f.estimateRepo.ByUUID(ctx, estimateUUID)
	if err != nil {
		return "", nil, NewBusinessError("ESTIMATE_FETCH_FAILED", "failed to load estimate", err)
	}
	if estimate == nil {
		return "", nil, NewBusinessError("ESTIMATE_NOT_FOUND", "estimate not found", ErrEstimateNotFound)
	}

	settings, err := f.settingsRepo.ByCompanyID(ctx, estimate.CompanyID)
	if err != nil {
		return "", nil, NewBusinessError("SETTINGS_FETCH_FAILED", "failed to load company settings", err)
	}
	if settings == nil {
		return "", nil, NewBusinessError("SETTINGS_NOT_FOUND", "company settings not found", ErrCompanySettingsNotFound)
	}

	jobTypeRows, err := f.jobTypeRepo.ListEnabledByCompany(ctx, estimate.CompanyID)
	if err != nil {
		return "", nil, NewBusinessError("JOB_TYPES_FETCH_FAILED", "failed to load job types", err)
	}

	// Collect every material and assembly any option references, once.
	var materialIDs, assemblyIDs []uint
	for i := range estimate.Options {
		mids, aids := referencedIDs(estimate.Options[i].Items)
		for _, id := range mids {
			materialIDs = appendUnique(materialIDs, id)
		}
		for _, id := range aids {
			assemblyIDs = appendUnique(assemblyIDs, id)
		}
	}
	assemblies, err := f.assemblyRepo.ListByIDsWithItems(ctx, assemblyIDs)
	if err != nil {
		return "", nil, NewBusinessError("ASSEMBLIES_FETCH_FAILED", "failed to load assemblies", err)
	}
	assemblyMap := make(map[uint]pricing.AssemblySnapshot, len(assemblies))
	assemblyNames := make(map[uint]string, len(assemblies))
	for _, a := range assemblies {
		assemblyMap[a.ID] = assemblySnapshot(a)
		assemblyNames[a.ID] = a.Name
		for _, item := range a.Items {
			if item.MaterialID != nil {
				materialIDs = appendUnique(materialIDs, *item.MaterialID)
			}
		}
	}
	materialRows, err := f.materialRepo.ListByIDs(ctx, materialIDs)
	if err != nil {
		return "", nil, NewBusinessError("MATERIALS_FETCH_FAILED", "failed to load materials", err)
	}
	materialNames := make(map[uint]string, len(materialRows))
	for _, m := range materialRows {
		materialNames[m.ID] = m.Name
	}

	snap := companySnapshot(settings)
	materials := materialMap(materialRows)
	jobTypes := jobTypeMap(jobTypeRows)

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	usedNames := map[string]bool{}
	for i := range estimate.Options {
		opt := &estimate.Options[i]

		baseName := sanitizeSheetName(opt.Name)
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			name = truncateSheetName(fmt.Sprintf("%s_%d", baseName, idx))
		}
		usedNames[name] = true
		if i == 0 {
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}

		header := []string{"kind", "name", "quantity", "unit_cost", "labor_minutes"}
		_ = xl.SetSheetRow(name, "A1", &header)

		row := 2
		for _, item := range opt.Items {
			record := []string{
				string(item.Kind),
				lineItemName(item, materialNames, assemblyNames),
				strconv.FormatFloat(item.Quantity, 'f', -1, 64),
				formatOptionalFloat(item.UnitCost),
				strconv.FormatFloat(item.LaborMinutes, 'f', -1, 64),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, row)
			_ = xl.SetSheetRow(name, cellRef, &record)
			row++
		}

		result := pricing.ComputeEstimatePricing(estimateSnapshot(opt), materials, assemblyMap, jobTypes, snap)
		row++
		totals := [][]string{
			{"material price", money(result.MaterialPrice)},
			{"labor price", money(result.LaborPrice)},
			{"misc material", money(result.MiscMaterial)},
			{"subtotal", money(result.NetSubtotal)},
			{"discount", money(result.DiscountAmount)},
			{"processing fee", money(result.ProcessingFee)},
			{"total", money(result.Total)},
		}
		for _, t := range totals {
			cellRef, _ := excelize.CoordinatesToCellName(1, row)
			line := t
			_ = xl.SetSheetRow(name, cellRef, &line)
			row++
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("estimate_%d.xlsx", estimate.Number)
	return filename, buf.Bytes(), nil
}

func lineItemName(item models.EstimateLineItem, materialNames, assemblyNames map[uint]string) string {
	if item.Name != nil && *item.Name != "" {
		return *item.Name
	}
	if item.MaterialID != nil {
		return materialNames[*item.MaterialID]
	}
	if item.AssemblyID != nil {
		return assemblyNames[*item.AssemblyID]
	}
	return ""
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \\ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

func truncateSheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	if name == "" {
		return "Sheet"
	}
	return name
}
