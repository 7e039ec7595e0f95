package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Text is a display string the backend sometimes sends as a JSON number,
// e.g. a weight of 500 instead of "500g".
type Text string

// UnmarshalJSON accepts a JSON string, number or null
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("catalog: text must be a string or number: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// String returns the text
func (t Text) String() string {
	return string(t)
}
