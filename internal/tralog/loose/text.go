package loose

import (
	"bytes"
	"encoding/json"
)

// String is a text field that older clients sometimes stored as a number or a
// boolean. Scalars keep their JSON text; null, objects and arrays become "".
type String string

func (s *String) UnmarshalJSON(data []byte) error {
	*s = String(Text(data))
	return nil
}

// Text returns the scalar JSON value in data as a string.
func Text(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ""
		}
		return s
	case 'n', '{', '[':
		return ""
	default:
		// numbers and booleans, as written
		return string(data)
	}
}

// StrictText returns data only when it is a JSON string.
func StrictText(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return ""
	}
	return Text(data)
}

// Elements splits a JSON array into its raw elements. Anything that is not an
// array has no elements.
func Elements(data []byte) []json.RawMessage {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	return elems
}

// IsObject reports whether data holds a JSON object.
func IsObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
