package dto

// JobTypeItem is one job type in a listing.
type JobTypeItem struct {
	ID                 uint    `json:"id"`
	UUID               string  `json:"uuid"`
	Name               string  `json:"name"`
	BillingMode        string  `json:"billing_mode"`
	GrossMarginPercent float64 `json:"gross_margin_percent"`
	EfficiencyPercent  float64 `json:"efficiency_percent"`
	AllowDiscounts     bool    `json:"allow_discounts"`
	Enabled            bool    `json:"enabled"`
	IsDefault          bool    `json:"is_default"`
}

// ListJobTypesResponse lists a company's job types.
type ListJobTypesResponse struct {
	Message string        `json:"message"`
	Items   []JobTypeItem `json:"items"`
}

// SetDefaultJobTypeResponse confirms a default job type change.
type SetDefaultJobTypeResponse struct {
	Message   string `json:"message"`
	JobTypeID uint   `json:"job_type_id"`
}
