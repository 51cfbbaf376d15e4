package core

// convert.go provides the default string coercions used when importing cells.
//
// These functions handle the messy reality of hand-edited spreadsheets:
//   - Multiple date formats (the export format, ISO, US, EU, Excel serials)
//   - Currency symbols and thousand separators in numbers
//   - Various boolean representations (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value")
//
// Every Parse* function returns an error whose text starts with the category
// ("invalid number", "invalid date", ...) so MapError can classify it.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05", "2006/01/02 15:04:05", "2006-01-02T15:04:05",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// cleanNumber strips currency symbols and thousands separators and turns
// accounting format "(123.45)" into "-123.45".
func cleanNumber(s string) (string, error) {
	s = CleanCell(s)
	orig := s

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, "¥", "") // Yen/Yuan
	s = strings.ReplaceAll(s, "￥", "") // Fullwidth Yuan
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return "", fmt.Errorf("invalid number: %q", orig)
	}
	return s, nil
}

// ParseInt converts a cell to an integer. A decimal value is accepted only
// when it has no fractional part, so "12.0" and "1.2E+3" parse.
func ParseInt(s string) (int64, error) {
	clean, err := cleanNumber(s)
	if err != nil {
		return 0, err
	}
	if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %q", s)
	}
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("invalid number: %q is not a whole number", s)
	}
	return int64(f), nil
}

// ParseFloat converts a cell to a float64.
func ParseFloat(s string) (float64, error) {
	clean, err := cleanNumber(s)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %q", s)
	}
	return f, nil
}

// ParseBool accepts various representations: true/false, yes/no, t/f, y/n, 1/0.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(CleanCell(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool: %q", s)
	}
}

// ParseTime converts a cell to a time. The layouts are tried first, then the
// built-in 4-digit and 2-digit year layouts, then an Excel serial number.
func ParseTime(s string, layouts ...string) (time.Time, error) {
	s = CleanCell(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid date: empty")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Round(time.Millisecond), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

// SplitList splits a comma separated cell into trimmed, non-empty items.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// asInt64 converts an assigned value to int64 without losing information.
func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return checkedUint(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return checkedUint(x)
	case float32:
		return asInt64(float64(x))
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, fmt.Errorf("invalid number: %v is not a whole number", x)
		}
		return int64(x), nil
	case string:
		return ParseInt(x)
	default:
		return 0, mismatch(v, KindInt)
	}
}

func checkedUint(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("invalid number: %d overflows int64", u)
	}
	return int64(u), nil
}

// asFloat64 converts an assigned value to float64.
func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		return ParseFloat(x)
	default:
		i, err := asInt64(v)
		if err != nil {
			return 0, mismatch(v, KindFloat)
		}
		return float64(i), nil
	}
}
