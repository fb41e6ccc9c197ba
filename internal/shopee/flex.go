package shopee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var null = []byte("null")

// flexInt decodes a JSON number, a numeric string or null
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw, err := flexString(data)
	if err != nil {
		return err
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexInt(math.Round(v))
	return nil
}

// flexFloat decodes a JSON number, a numeric string or null
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexPercent decodes 20, "20" or "20%"
type flexPercent int

func (f *flexPercent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strconv.Quote(strings.TrimSuffix(strings.TrimSpace(s), "%")))
	}
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexPercent(math.Round(v))
	return nil
}

// flexString returns the number text of a bare or quoted value, "" for null
func flexString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return "", nil
	}
	if data[0] != '"' {
		return string(data), nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func parseFlexNumber(data []byte) (float64, error) {
	raw, err := flexString(data)
	if err != nil || raw == "" {
		return 0, err
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q", raw)
	}
	return v, nil
}

// categoryList decodes categories given as names or as objects with a
// display_name.
type categoryList []string

type wireCategory struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
}

func (c *categoryList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), null) {
		*c = nil
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	names := lo.FilterMap(raws, func(raw json.RawMessage, _ int) (string, bool) {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			name = strings.TrimSpace(name)
			return name, name != ""
		}
		var obj wireCategory
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", false
		}
		name = strings.TrimSpace(lo.Ternary(obj.DisplayName != "", obj.DisplayName, obj.Name))
		return name, name != ""
	})

	*c = names
	return nil
}
