package core

// convert.go turns the messy cells of user-provided tables into roster values.
//
// Spreadsheet cells arrive in several shapes: plain text, Excel formula
// prefixes (="100"), numbers rendered as floats ("100.0") and stray quotes or
// whitespace. The helpers here clean those up and coerce ids.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// integralFloatRegex matches a non-negative integer written with a zero
// fractional part, the way spreadsheets render numeric cells ("100.0").
var integralFloatRegex = regexp.MustCompile(`^(\d+)\.0*$`)

// ParseID coerces v to an enrollment number. Accepted: non-negative integers
// of any Go integer kind, integral non-negative floats, and strings holding
// only digits (after CleanCell), optionally with a zero fractional part.
// Anything else fails with ErrInvalidInput.
func ParseID(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return checkID(int64(x), v)
	case int32:
		return checkID(int64(x), v)
	case int64:
		return checkID(x, v)
	case uint32:
		return int64(x), nil
	case float64:
		if x < 0 || x != math.Trunc(x) || x >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: id %v is not a non-negative integer", ErrInvalidInput, v)
		}
		return int64(x), nil
	case string:
		return parseIDString(x)
	case nil:
		return 0, fmt.Errorf("%w: id is required", ErrInvalidInput)
	default:
		return parseIDString(fmt.Sprint(x))
	}
}

func checkID(id int64, raw any) (int64, error) {
	if id < 0 {
		return 0, fmt.Errorf("%w: id %v is negative", ErrInvalidInput, raw)
	}
	return id, nil
}

func parseIDString(raw string) (int64, error) {
	s := CleanCell(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	if m := integralFloatRegex.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if !isAllDigits(s) {
		return 0, fmt.Errorf("%w: id %q must contain only digits", ErrInvalidInput, raw)
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is out of range", ErrInvalidInput, raw)
	}
	return id, nil
}

// isAllDigits reports whether s is non-empty and made of ASCII digits only.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// IsEmptyRow reports whether every cell of row is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
