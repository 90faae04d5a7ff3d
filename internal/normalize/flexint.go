package normalize

import (
	"encoding/json"
	"strconv"
)

// FlexInt decodes a JSON number, a numeric string, or null.
// Valid is false for null, empty strings and anything non-numeric.
type FlexInt struct {
	Value int
	Valid bool
}

// UnmarshalJSON never fails; unusable input leaves the value invalid.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	f.Value, f.Valid = scoreFromJSON(data)
	return nil
}

// MarshalJSON writes the number, or null when invalid.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// Ptr returns the value as an optional int.
func (f FlexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

var _ json.Unmarshaler = (*FlexInt)(nil)
