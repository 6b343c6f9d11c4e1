package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// CanonicalID normalizes an id to the single string form used for every set
// comparison. The catalog hands out numeric ids while persisted state and UI
// callers use strings, so 42 and "42" must collapse to the same entry.
func CanonicalID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case int:
		return strconv.FormatInt(int64(id), 10)
	case int8:
		return strconv.FormatInt(int64(id), 10)
	case int16:
		return strconv.FormatInt(int64(id), 10)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint8:
		return strconv.FormatUint(uint64(id), 10)
	case uint16:
		return strconv.FormatUint(uint64(id), 10)
	case uint32:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float32:
		return formatFloat(float64(id))
	case float64:
		return formatFloat(id)
	case json.Number:
		return canonicalNumber(id)
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// formatFloat renders integral floats without a fractional part ("42", not "42.0")
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return formatFloat(f)
	}
	return n.String()
}

// FlexID is a canonical id that decodes from either a JSON string or a JSON number.
type FlexID string

// UnmarshalJSON accepts 42, "42" and null.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytesReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*f = FlexID(CanonicalID(raw))
	return nil
}

func (f FlexID) String() string { return string(f) }
