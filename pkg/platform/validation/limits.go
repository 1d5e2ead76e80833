// Package validation holds the size limits applied to request bodies before
// they reach a service.
package validation

import (
	"fmt"

	dErrors "aurum/pkg/domain-errors"
)

// MaxSourceAccounts bounds the accounts one harvest or withdrawal may sweep.
// Each source is loaded and written inside a single transaction.
const MaxSourceAccounts = 64

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckRequired rejects an empty list.
func CheckRequired(fieldName string, count int) error {
	if count == 0 {
		return dErrors.New(dErrors.CodeValidation, fieldName+" are required")
	}
	return nil
}
