package utils

// Context keys used by handlers when building request-scoped contexts for
// business flows.
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Estimating defaults applied when a company has not configured a value.
const (
	// DefaultEstimateValidityDays is how long an estimate stays open for
	// acceptance when the company has not set its own window.
	DefaultEstimateValidityDays = 30

	// DefaultStartingEstimateNumber seeds the per-company estimate counter.
	DefaultStartingEstimateNumber = 1000

	// MaxMarkupTiers caps the markup tier table; the lookup is a linear
	// scan and company tables are expected to stay small.
	MaxMarkupTiers = 25
)

// Cache key fragments for computed tech-cost breakdowns.
const (
	TechCostCacheKeyPrefix = "techcost"
)

// HTTP constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
