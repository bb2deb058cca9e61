// Package businessflow contains the core business logic and use cases for estimate pricing workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Company-related errors
	ErrCompanySettingsNotFound = errors.New("company settings not found")

	// Job type errors
	ErrJobTypeNotFound   = errors.New("job type not found")
	ErrJobTypeDisabled   = errors.New("job type is disabled")
	ErrNoJobTypeResolved = errors.New("no job type could be resolved")

	// Estimate errors
	ErrEstimateNotFound    = errors.New("estimate not found")
	ErrEstimateNotEditable = errors.New("estimate is not editable")
	ErrOptionNotFound      = errors.New("estimate option not found")
	ErrNoActiveOption      = errors.New("estimate has no active option")

	// Assembly errors
	ErrAssemblyNotFound = errors.New("assembly not found")

	// Material errors
	ErrMaterialNotFound = errors.New("material not found")

	// Cache errors
	ErrCacheNotAvailable = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCompanySettingsNotFound(err error) bool {
	return errors.Is(err, ErrCompanySettingsNotFound)
}

func IsJobTypeNotFound(err error) bool {
	return errors.Is(err, ErrJobTypeNotFound)
}

func IsJobTypeDisabled(err error) bool {
	return errors.Is(err, ErrJobTypeDisabled)
}

func IsNoJobTypeResolved(err error) bool {
	return errors.Is(err, ErrNoJobTypeResolved)
}

func IsEstimateNotFound(err error) bool {
	return errors.Is(err, ErrEstimateNotFound)
}

func IsEstimateNotEditable(err error) bool {
	return errors.Is(err, ErrEstimateNotEditable)
}

func IsOptionNotFound(err error) bool {
	return errors.Is(err, ErrOptionNotFound)
}

func IsNoActiveOption(err error) bool {
	return errors.Is(err, ErrNoActiveOption)
}

func IsAssemblyNotFound(err error) bool {
	return errors.Is(err, ErrAssemblyNotFound)
}

func IsMaterialNotFound(err error) bool {
	return errors.Is(err, ErrMaterialNotFound)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
