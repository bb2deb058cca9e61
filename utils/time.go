// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// EndOfValidity computes the expiry timestamp for an estimate issued now,
// given the company's validity window in days.
func EndOfValidity(validityDays int) time.Time {
	if validityDays <= 0 {
		validityDays = DefaultEstimateValidityDays
	}
	return UTCNow().AddDate(0, 0, validityDays)
}
