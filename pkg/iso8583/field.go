package iso8583

import (
	"fmt"
	"strings"
)

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// charClassOK checks a value against a field type's character class.
// Padded values are accepted: space is legal in the textual classes.
func charClassOK(value string, t FieldType) bool {
	switch t {
	case Numeric:
		return isDigits(value)
	case Alpha:
		for i := 0; i < len(value); i++ {
			c := value[i]
			if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') && c != ' ' {
				return false
			}
		}
		return true
	case Alphanumeric:
		for i := 0; i < len(value); i++ {
			c := value[i]
			if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') && c != ' ' {
				return false
			}
		}
		return true
	case AlphaSpecial, LLVar, LLLVar:
		for i := 0; i < len(value); i++ {
			if value[i] < 0x20 || value[i] > 0x7E {
				return false
			}
		}
		return true
	case Binary:
		return isHex(value) && len(value)%2 == 0
	case Track2:
		eq := strings.IndexByte(value, '=')
		if eq <= 0 || eq > 19 {
			return false
		}
		return isDigits(value[:eq]) && isDigits(value[eq+1:])
	default:
		return false
	}
}

// wireWidth is the on-wire character count of a fixed field's body.
// Binary bytes travel as two hex characters each.
func wireWidth(def FieldDefinition) int {
	if def.Type == Binary {
		return def.MaxLength * 2
	}
	return def.MaxLength
}

// decodeField reads one field from data starting at pos and returns the
// stored value and the advanced cursor. Fixed-length values keep their
// wire padding.
func decodeField(data string, pos, num int, def FieldDefinition) (string, int, error) {
	if def.IsVariable() {
		prefix := 2
		if def.Type == LLLVar {
			prefix = 3
		}
		if pos+prefix > len(data) {
			return "", pos, &ParseError{Field: num, Err: fmt.Errorf("%w: truncated length prefix", ErrInvalidLength)}
		}
		lenStr := data[pos : pos+prefix]
		if !isDigits(lenStr) {
			return "", pos, &ParseError{Field: num, Err: fmt.Errorf("%w: prefix %q is not decimal", ErrInvalidLength, lenStr)}
		}
		length := 0
		for i := 0; i < prefix; i++ {
			length = length*10 + int(lenStr[i]-'0')
		}
		if length > def.MaxLength {
			return "", pos, &ParseError{Field: num, Err: fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidLength, length, def.MaxLength)}
		}
		pos += prefix
		if pos+length > len(data) {
			return "", pos, &ParseError{Field: num, Err: fmt.Errorf("%w: payload truncated", ErrInvalidLength)}
		}
		value := data[pos : pos+length]
		if !charClassOK(value, def.Type) {
			return "", pos, &ParseError{Field: num, Err: ErrInvalidCharClass}
		}
		return value, pos + length, nil
	}

	width := wireWidth(def)
	if pos+width > len(data) {
		return "", pos, &ParseError{Field: num, Err: fmt.Errorf("%w: need %d chars, have %d", ErrInvalidLength, width, len(data)-pos)}
	}
	value := data[pos : pos+width]
	if !charClassOK(value, def.Type) {
		return "", pos, &ParseError{Field: num, Err: ErrInvalidCharClass}
	}
	if def.Type == Binary {
		value = strings.ToUpper(value)
	}
	return value, pos + width, nil
}

// formatValue canonicalises a value for its definition: fixed textual
// fields are padded to full width, binary is upper-cased. Values longer
// than the definition allows are rejected.
func formatValue(num int, value string, def FieldDefinition) (string, error) {
	if def.IsVariable() {
		if len(value) > def.MaxLength {
			return "", fmt.Errorf("field %d: %w: %d > %d", num, ErrValueTooLong, len(value), def.MaxLength)
		}
		return value, nil
	}

	if def.Type == Binary {
		if len(value) != wireWidth(def) {
			if len(value) > wireWidth(def) {
				return "", fmt.Errorf("field %d: %w: %d hex chars > %d", num, ErrValueTooLong, len(value), wireWidth(def))
			}
			return "", fmt.Errorf("field %d: %w: binary value must be exactly %d hex chars", num, ErrInvalidLength, wireWidth(def))
		}
		return strings.ToUpper(value), nil
	}

	if len(value) > def.MaxLength {
		return "", fmt.Errorf("field %d: %w: %d > %d", num, ErrValueTooLong, len(value), def.MaxLength)
	}
	if len(value) == def.MaxLength {
		return value, nil
	}

	pad, dir := def.PadChar, def.PadDirection
	if pad == 0 {
		// Padding defaults by class.
		switch def.Type {
		case Numeric:
			pad, dir = '0', PadLeft
		case Alpha, Alphanumeric, AlphaSpecial:
			pad, dir = ' ', PadRight
		default:
			return "", fmt.Errorf("field %d: %w: value must be exactly %d chars", num, ErrInvalidLength, def.MaxLength)
		}
	}
	filler := strings.Repeat(string(pad), def.MaxLength-len(value))
	if dir == PadLeft {
		return filler + value, nil
	}
	return value + filler, nil
}

// encodeField produces the wire form of a canonical value: the value
// itself for fixed fields, a zero-padded decimal length prefix plus the
// value for variable fields.
func encodeField(num int, value string, def FieldDefinition) (string, error) {
	if !def.IsVariable() {
		return value, nil
	}
	if len(value) > def.MaxLength {
		return "", fmt.Errorf("field %d: %w: %d > %d", num, ErrValueTooLong, len(value), def.MaxLength)
	}
	if def.Type == LLVar {
		return fmt.Sprintf("%02d%s", len(value), value), nil
	}
	return fmt.Sprintf("%03d%s", len(value), value), nil
}
