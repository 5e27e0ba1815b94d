package fixture

const (
	// MaxLineLength is the maximum number of bytes a single hex line decodes
	// into. Longer lines are truncated.
	MaxLineLength = 10000

	// MaxRawLineLength is the size of the raw line buffer. A single read
	// consumes at most MaxRawLineLength-1 bytes of a line, the remainder is
	// consumed by the following read.
	MaxRawLineLength = 20000
)

// DecodeHexLine decodes line two characters at a time into at most maxLength
// bytes. Decoding stops at the first newline or NUL character, once maxLength
// bytes were produced, or at the end of line. The end of line reads as a NUL,
// so a trailing unpaired digit still decodes into a byte of its own.
//
// Decoding never fails. A pair starting with a non-hex character decodes to
// 0, and a pair whose second character is not a hex digit decodes to the value
// of its first digit alone. wellFormed is false if either happened.
func DecodeHexLine(line []byte, maxLength int) (decoded []byte, wellFormed bool) {
	capacity := (len(line) + 1) / 2
	if capacity > maxLength {
		capacity = maxLength
	}
	decoded = make([]byte, 0, capacity)
	wellFormed = true

	for i := 0; i < len(line) && len(decoded) < maxLength; i += 2 {
		if line[i] == '\n' || line[i] == 0 {
			break
		}
		high, ok := hexDigit(line[i])
		if !ok {
			decoded = append(decoded, 0)
			wellFormed = false
			continue
		}
		var next byte
		if i+1 < len(line) {
			next = line[i+1]
		}
		low, ok := hexDigit(next)
		if !ok {
			decoded = append(decoded, high)
			wellFormed = false
			continue
		}
		decoded = append(decoded, high<<4|low)
	}

	return decoded, wellFormed
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
