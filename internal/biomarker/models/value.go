package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a lab value that arrives either as a JSON number or as free text
// ("negative", "<0.01"). It keeps the form it was received in.
type Value struct {
	Number *float64
	Text   string
}

func NumberValue(f float64) Value {
	return Value{Number: &f}
}

func TextValue(s string) Value {
	return Value{Text: s}
}

func (v Value) IsNumeric() bool {
	return v.Number != nil
}

func (v Value) IsZero() bool {
	return v.Number == nil && v.Text == ""
}

// String renders the value for display.
func (v Value) String() string {
	if v.Number != nil {
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	}
	return v.Text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Number != nil {
		return json.Marshal(*v.Number)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("value must be a number or string: %w", err)
	}
	*v = NumberValue(f)
	return nil
}
