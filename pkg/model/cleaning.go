// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single recovered data cleaning operation
type CleaningOperation struct {
	RunID             string      // Pipeline run that produced the operation
	TableName         string      // Target table name
	ColumnName        string      // Column that was cleaned
	OriginalValue     interface{} // Original value (may be nil)
	NewValue          string      // New value after cleaning, empty when the value became missing
	RowIdentifier     string      // ID that identifies the row (usually the id column)
	CleaningOperation string      // Type of cleaning performed (e.g., "phone_normalization")
	CleaningReason    string      // Reason for cleaning (e.g., "short_number_padded")
	CleanedAt         time.Time   // When the cleaning occurred
}

// Cleaning operation types
const (
	OpDeduplicate         = "deduplicate"
	OpPhoneNormalization  = "phone_normalization"
	OpFillMissing         = "fill_missing"
	OpYearCoercion        = "year_coercion"
	OpTimestampNormalize  = "timestamp_normalization"
	OpCurrencyConversion  = "currency_conversion"
	OpPaidPriceDerivation = "paid_price_derivation"
	OpQuantityStandardize = "quantity_standardization"
)
