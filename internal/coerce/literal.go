package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/psantana5/vaultmod/pkg/models"
)

// HexPrefix marks a hexadecimal literal
const HexPrefix = "0x"

// invariantSpace is the whitespace allowed around numeric literals
const invariantSpace = " \t\n\v\f\r"

var (
	errSyntax   = errors.New("invalid syntax")
	errRange    = errors.New("value out of range")
	errNoPrefix = errors.New("missing 0x prefix")
)

// parseHex32 parses a 0x-prefixed unsigned 32-bit hexadecimal literal.
// The remainder must be bare hex digits: no sign, no whitespace, no separators.
func parseHex32(literal string) (uint32, error) {
	if !strings.HasPrefix(literal, HexPrefix) {
		return 0, errNoPrefix
	}
	v, err := strconv.ParseUint(literal[len(HexPrefix):], 16, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, errRange
		}
		return 0, errSyntax
	}
	return uint32(v), nil
}

// parseInteger parses a culture-invariant decimal integer: optional
// surrounding whitespace, optional leading sign, ASCII digits.
func parseInteger(literal string, kind models.PrimitiveKind) (any, error) {
	s := strings.Trim(literal, invariantSpace)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return nil, errSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, errSyntax
		}
	}

	bits := kind.BitSize()
	if !kind.IsSigned() {
		if negative {
			// "-0" is the only negative spelling an unsigned kind accepts
			if strings.Trim(s, "0") != "" {
				return nil, errRange
			}
			s = "0"
		}
		u, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return nil, errRange
		}
		return narrowUnsigned(u, kind), nil
	}

	if negative {
		s = "-" + s
	}
	i, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return nil, errRange
	}
	return narrowSigned(i, kind), nil
}

// parseFloat parses a culture-invariant floating point literal: optional
// surrounding whitespace and sign, ',' group separators in the integral
// part, '.' decimal point, optional exponent, or the Infinity/NaN symbols.
// Overflow saturates to infinity.
func parseFloat(literal string, kind models.PrimitiveKind) (any, error) {
	s := strings.Trim(literal, invariantSpace)
	bits := kind.BitSize()

	switch strings.ToLower(s) {
	case "infinity", "+infinity":
		return narrowFloat(math.Inf(1), bits), nil
	case "-infinity":
		return narrowFloat(math.Inf(-1), bits), nil
	case "nan":
		return narrowFloat(math.NaN(), bits), nil
	}

	clean, ok := normalizeFloat(s)
	if !ok {
		return nil, errSyntax
	}
	f, err := strconv.ParseFloat(clean, bits)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return nil, errSyntax
		}
		// ParseFloat already returns ±Inf or ±0 for range errors
	}
	return narrowFloat(f, bits), nil
}

// normalizeFloat validates the invariant float grammar and strips group
// separators, returning a string strconv accepts.
func normalizeFloat(s string) (string, bool) {
	var b strings.Builder
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		b.WriteByte(s[i])
		i++
	}

	digits := 0
	for i < len(s) && (isDigit(s[i]) || (s[i] == ',' && digits > 0)) {
		if s[i] != ',' {
			b.WriteByte(s[i])
			digits++
		}
		i++
	}
	if i < len(s) && s[i] == '.' {
		b.WriteByte('.')
		i++
		for i < len(s) && isDigit(s[i]) {
			b.WriteByte(s[i])
			digits++
			i++
		}
	}
	if digits == 0 {
		return "", false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		b.WriteByte('e')
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			b.WriteByte(s[i])
			i++
		}
		expDigits := 0
		for i < len(s) && isDigit(s[i]) {
			b.WriteByte(s[i])
			expDigits++
			i++
		}
		if expDigits == 0 {
			return "", false
		}
	}
	return b.String(), i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseBool accepts true/false in any case, with surrounding whitespace
func parseBool(literal string) (bool, error) {
	s := strings.Trim(literal, invariantSpace+"\x00")
	switch {
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	return false, errSyntax
}

// parseInvariant parses a literal as the given non-enum kind
func parseInvariant(literal string, kind models.PrimitiveKind) (any, error) {
	switch {
	case kind.IsInteger():
		return parseInteger(literal, kind)
	case kind.IsFloat():
		return parseFloat(literal, kind)
	case kind == models.KindBool:
		return parseBool(literal)
	case kind == models.KindString:
		return literal, nil
	}
	return nil, fmt.Errorf("unsupported kind %q", kind)
}

// convertUint32 converts a parsed hex value to kind with overflow checking
func convertUint32(v uint32, kind models.PrimitiveKind) (any, error) {
	switch kind {
	case models.KindUint8:
		if v > math.MaxUint8 {
			return nil, errRange
		}
		return uint8(v), nil
	case models.KindInt8:
		if v > math.MaxInt8 {
			return nil, errRange
		}
		return int8(v), nil
	case models.KindUint16:
		if v > math.MaxUint16 {
			return nil, errRange
		}
		return uint16(v), nil
	case models.KindInt16:
		if v > math.MaxInt16 {
			return nil, errRange
		}
		return int16(v), nil
	case models.KindUint32:
		return v, nil
	case models.KindInt32:
		if v > math.MaxInt32 {
			return nil, errRange
		}
		return int32(v), nil
	case models.KindUint64:
		return uint64(v), nil
	case models.KindInt64:
		return int64(v), nil
	case models.KindFloat32:
		return float32(v), nil
	case models.KindFloat64:
		return float64(v), nil
	case models.KindBool:
		return v != 0, nil
	case models.KindString:
		return strconv.FormatUint(uint64(v), 10), nil
	}
	return nil, fmt.Errorf("unsupported kind %q", kind)
}

func narrowUnsigned(u uint64, kind models.PrimitiveKind) any {
	switch kind {
	case models.KindUint8:
		return uint8(u)
	case models.KindUint16:
		return uint16(u)
	case models.KindUint32:
		return uint32(u)
	default:
		return u
	}
}

func narrowSigned(i int64, kind models.PrimitiveKind) any {
	switch kind {
	case models.KindInt8:
		return int8(i)
	case models.KindInt16:
		return int16(i)
	case models.KindInt32:
		return int32(i)
	default:
		return i
	}
}

func narrowFloat(f float64, bits int) any {
	if bits == 32 {
		return float32(f)
	}
	return f
}
