package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	camelFirstCap = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelAllCap   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	temperatureRe = regexp.MustCompile(`^temperature_(internal|adapter|relay)([0-9]*)$`)
)

// NormalizeSection turns a raw JSON value into a Section. Anything that is
// not an object becomes an empty Section.
func NormalizeSection(raw any) Section {
	switch v := raw.(type) {
	case Section:
		if v == nil {
			return Section{}
		}
		return v
	case map[string]any:
		if v == nil {
			return Section{}
		}
		return Section(v)
	default:
		return Section{}
	}
}

// AsFloat decodes numbers and numeric strings. Booleans are not numbers.
func AsFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// AsInt truncates numeric values toward zero. Values outside the int range
// are absent.
func AsInt(v any) (int, bool) {
	f, ok := AsFloat(v)
	if !ok || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

func AsBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "on", "1":
			return true, true
		case "false", "off", "0":
			return false, true
		}
		return false, false
	default:
		if f, ok := AsFloat(v); ok {
			return f != 0, true
		}
		return false, false
	}
}

// Temperature resolves temperature_internal, temperature_adapter{1,2,3} and
// temperature_relay{1,2} against status.temperatures.
func Temperature(status Section, key string) (float64, bool) {
	m := temperatureRe.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	temps := status.Object("temperatures")
	probe, ok := temps.Get(m[1])
	if !ok {
		return 0, false
	}
	if m[1] == "internal" {
		if m[2] != "" {
			return 0, false
		}
		return AsFloat(probe)
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil || idx < 1 {
		return 0, false
	}
	list, ok := probe.([]any)
	if !ok || idx > len(list) {
		return 0, false
	}
	if list[idx-1] == nil {
		return 0, false
	}
	return AsFloat(list[idx-1])
}

// CamelToSnake maps device field names such as isThreePhaseModeEnable to
// is_three_phase_mode_enable.
func CamelToSnake(name string) string {
	s := camelFirstCap.ReplaceAllString(name, "${1}_${2}")
	s = camelAllCap.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}
