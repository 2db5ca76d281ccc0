package dto

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexFloat is a float that also accepts a numeric JSON string such as "1200.50".
// Listing forms post their inputs as strings.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Ptr converts an optional FlexFloat to *float64
func (f *FlexFloat) Ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// FlexInt is an integer that also accepts a JSON string such as "2".
// Integral floats like 2.0 are accepted; fractional values are not.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return fmt.Errorf("%s is not a whole number", strings.TrimSpace(string(data)))
	}
	*n = FlexInt(v)
	return nil
}

func parseFlexNumber(data []byte) (float64, error) {
	raw := strings.TrimSpace(string(data))
	text := raw
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid number %s", raw)
		}
		text = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s is not a number", raw)
	}
	return v, nil
}
