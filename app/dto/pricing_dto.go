package dto

import "time"

// EstimatePricingDTO is the full priced view of an estimate option.
type EstimatePricingDTO struct {
	MaterialCost  float64 `json:"material_cost"`
	MaterialPrice float64 `json:"material_price"`
	LaborPrice    float64 `json:"labor_price"`
	MiscMaterial  float64 `json:"misc_material"`

	NetSubtotal              float64 `json:"net_subtotal"`
	PreDiscountTotal         float64 `json:"pre_discount_total"`
	DiscountAmount           float64 `json:"discount_amount"`
	DiscountPercent          float64 `json:"discount_percent"`
	SubtotalBeforeProcessing float64 `json:"subtotal_before_processing"`
	ProcessingFee            float64 `json:"processing_fee"`
	Total                    float64 `json:"total"`

	GrossMarginTargetPercent   float64 `json:"gross_margin_target_percent"`
	GrossMarginExpectedPercent float64 `json:"gross_margin_expected_percent"`

	LaborMinutesActual   float64 `json:"labor_minutes_actual"`
	LaborMinutesExpected float64 `json:"labor_minutes_expected"`
	HourlySellRate       float64 `json:"hourly_sell_rate"`
	JobTypeID            uint    `json:"job_type_id"`
}

// PriceEstimateRequest selects which option of an estimate to price.
// When OptionID is omitted the active option is used.
type PriceEstimateRequest struct {
	OptionID *uint `json:"option_id,omitempty" validate:"omitempty,gt=0"`
}

// PriceEstimateResponse is the result of pricing an estimate option.
type PriceEstimateResponse struct {
	Message      string             `json:"message"`
	EstimateUUID string             `json:"estimate_uuid"`
	OptionID     uint               `json:"option_id"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
	Pricing      EstimatePricingDTO `json:"pricing"`
}

// ApplyAdminRulesResponse reports the outcome of an admin rule pass over an estimate option.
type ApplyAdminRulesResponse struct {
	Message         string             `json:"message"`
	EstimateUUID    string             `json:"estimate_uuid"`
	OptionID        uint               `json:"option_id"`
	RuleMatched     bool               `json:"rule_matched"`
	TargetJobTypeID *uint              `json:"target_job_type_id,omitempty"`
	Pricing         EstimatePricingDTO `json:"pricing"`
}

// AssemblyPricingDTO is the priced view of a single assembly.
type AssemblyPricingDTO struct {
	MaterialCostTotal  float64 `json:"material_cost_total"`
	MaterialPriceTotal float64 `json:"material_price_total"`
	LaborPriceTotal    float64 `json:"labor_price_total"`
	MiscMaterialPrice  float64 `json:"misc_material_price"`
	TotalPrice         float64 `json:"total_price"`

	LaborMinutesActual   float64 `json:"labor_minutes_actual"`
	LaborMinutesExpected float64 `json:"labor_minutes_expected"`
	HourlySellRate       float64 `json:"hourly_sell_rate"`
	JobTypeID            uint    `json:"job_type_id"`
}

// PriceAssemblyResponse is the result of pricing an assembly.
type PriceAssemblyResponse struct {
	Message      string             `json:"message"`
	AssemblyUUID string             `json:"assembly_uuid"`
	Pricing      AssemblyPricingDTO `json:"pricing"`
}
