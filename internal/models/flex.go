package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt decodes a JSON number or a numeric string. Strings holding a
// range such as "42-45" decode to their first number; anything else
// decodes to 0.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if idx := strings.IndexAny(s, "-:,"); idx > 0 {
			s = s[:idx]
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*n = 0
			return nil
		}
		*n = FlexInt(v)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = FlexInt(int(f))
	return nil
}

// FlexString decodes a JSON string, number or boolean into its text form.
// null decodes to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}

	*s = FlexString(data)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}
