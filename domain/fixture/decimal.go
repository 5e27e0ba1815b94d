package fixture

import "math"

// ParseDecimal parses line the way the C atoi function does, followed by a
// conversion to an unsigned 32 bit value: leading whitespace is skipped, an
// optional sign is accepted and digits are consumed up to the first non-digit.
// The value saturates at the 64 bit signed range and keeps its low 32 bits, so
// negative values wrap around.
//
// A line without digits parses to 0 and FieldMalformed, as does a line with
// trailing garbage or a value that does not fit in 32 bits.
func ParseDecimal(line []byte) (uint32, FieldState) {
	i := 0
	for i < len(line) && isSpace(line[i]) {
		i++
	}

	negative := false
	if i < len(line) && (line[i] == '-' || line[i] == '+') {
		negative = line[i] == '-'
		i++
	}

	// strtol saturates at LONG_MAX, or at LONG_MIN for negative input.
	limit := uint64(math.MaxInt64)
	if negative {
		limit++
	}

	state := FieldParsed
	digits := 0
	var magnitude uint64
	for ; i < len(line) && '0' <= line[i] && line[i] <= '9'; i++ {
		digits++
		digit := uint64(line[i] - '0')
		if magnitude > (limit-digit)/10 {
			magnitude = limit
			continue
		}
		magnitude = magnitude*10 + digit
	}
	if digits == 0 {
		return 0, FieldMalformed
	}
	if magnitude > math.MaxUint32 {
		state = FieldMalformed
	}

	for ; i < len(line); i++ {
		if !isSpace(line[i]) && line[i] != 0 {
			state = FieldMalformed
			break
		}
	}

	value := magnitude
	if negative {
		value = -value
	}
	return uint32(value), state
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
