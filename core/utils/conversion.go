package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToString converts various types to string.
// nil becomes the empty string and times are formatted as RFC 3339.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IsEmpty reports whether a field value carries nothing: nil, an empty
// string or the zero time.
func IsEmpty(val any) bool {
	switch v := val.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return len(v) == 0
	case time.Time:
		return v.IsZero()
	default:
		return false
	}
}
