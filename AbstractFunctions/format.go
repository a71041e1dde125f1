package AbstractFunctions

import (
	"strconv"
	"strings"
	"unicode"
)

// KmSeparator groups odometer digits for display, e.g. 15000 -> "15.000".
const KmSeparator = "."

func onlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatKm strips anything that is not a digit, drops leading zeros and
// renders the remaining number with a thousands separator.
func FormatKm(value string) string {
	digits := onlyDigits(value)
	if digits == "" {
		return ""
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(KmSeparator)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseKm returns the integer held in a (possibly formatted) km field, or nil
// when the field carries no digits.
func ParseKm(value string) *int64 {
	return ParseDigits(value)
}

// ParseDigits reads every digit in value as one integer ("11 4567-8901" -> 1145678901).
func ParseDigits(value string) *int64 {
	digits := onlyDigits(value)
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// FormatKmInt renders a stored odometer value the way the editor displays it.
func FormatKmInt(km int64) string {
	return FormatKm(strconv.FormatInt(km, 10))
}

// CleanPlate keeps letters and digits only, upper-cased.
func CleanPlate(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// FormatPlate masks a plate the way it is stored:
// 7 characters -> ##-###-##, 6 characters -> ###-###, anything else unchanged.
func FormatPlate(value string) string {
	raw := CleanPlate(value)
	switch len(raw) {
	case 7:
		return raw[0:2] + "-" + raw[2:5] + "-" + raw[5:7]
	case 6:
		return raw[0:3] + "-" + raw[3:6]
	}
	return raw
}

// TrimOrNil trims value and returns nil when nothing is left.
func TrimOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringOrNil is TrimOrNil for plain strings.
func StringOrNil(value string) *string {
	return TrimOrNil(&value)
}
