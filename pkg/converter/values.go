// pkg/converter/values.go
package converter

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IsNull determines if a source value should be treated as missing
func IsNull(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == "" || v == "NULL"
	case float64:
		return v != v // NaN
	case sql.NullString:
		return !v.Valid
	case sql.NullInt64:
		return !v.Valid
	case sql.NullFloat64:
		return !v.Valid
	case sql.NullTime:
		return !v.Valid
	}
	return false
}

// ToText renders a source value as text. Missing values render as "".
func ToText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return ToText(float64(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return fmt.Sprintf("%v", v)
	case time.Time:
		return v.Format(time.RFC3339)
	case sql.NullString:
		if !v.Valid {
			return ""
		}
		return v.String
	case sql.NullInt64:
		if !v.Valid {
			return ""
		}
		return strconv.FormatInt(v.Int64, 10)
	case sql.NullFloat64:
		if !v.Valid {
			return ""
		}
		return strconv.FormatFloat(v.Float64, 'f', -1, 64)
	case sql.NullTime:
		if !v.Valid {
			return ""
		}
		return v.Time.Format(time.RFC3339)
	default:
		// Try JSON marshaling for complex types
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(jsonBytes)
	}
}

// ToInt converts a source value to int64
func ToInt(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, fmt.Errorf("nil value")
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("non-integral value %v", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", value)
	}
}

// StoreValue converts a cleaned value into a driver argument.
// Null wrappers become nil so every driver sees a plain NULL.
func (c *TypeConverter) StoreValue(value interface{}) interface{} {
	switch v := value.(type) {
	case sql.NullString:
		if !v.Valid {
			return nil
		}
		return v.String
	case sql.NullInt64:
		if !v.Valid {
			return nil
		}
		return v.Int64
	case sql.NullFloat64:
		if !v.Valid {
			return nil
		}
		return v.Float64
	case sql.NullTime:
		if !v.Valid {
			return nil
		}
		return v.Time
	default:
		return v
	}
}
