package util

import (
	"fmt"
	"strconv"
)

// Uint64ToString converts uint64 to string
func Uint64ToString(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// StringToUint64 converts string to uint64
func StringToUint64(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse uint64: %w", err)
	}
	return n, nil
}

// ParseSnowflake validates a Discord ID and returns its canonical string form.
// Zero is not a valid snowflake.
func ParseSnowflake(s string) (string, error) {
	n, err := StringToUint64(s)
	if err != nil {
		return "", fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	if n == 0 {
		return "", fmt.Errorf("invalid snowflake %q: zero", s)
	}
	return Uint64ToString(n), nil
}
