package domain

import (
	"math"
	"sort"
)

const (
	MIN_CURRENT      = 6
	MAX_CURRENT      = 32
	DEFAULT_CURRENCY = "EUR"

	KEY_CHARGER_TYPE = "chargerType"
	KEY_MAX_CURRENT  = "maxCurrent"
	KEY_CURRENCY     = "currency"
)

// Maximum per-phase current by charger type code.
var CHARGER_TYPE_MAX_CURRENT = map[int]int{
	0: 16,
	1: 32,
}

// Device currency codes.
var CURRENCY_MAP = map[int]string{
	0: "CZK",
	1: "EUR",
	2: "USD",
}

// ChargerTypeMaxCurrent only accepts integral type codes.
func ChargerTypeMaxCurrent(typeInfo Section) int {
	f, ok := typeInfo.Float(KEY_CHARGER_TYPE)
	if !ok || f != math.Trunc(f) {
		return MAX_CURRENT
	}
	code, ok := AsInt(f)
	if !ok {
		return MAX_CURRENT
	}
	if max, ok := CHARGER_TYPE_MAX_CURRENT[code]; ok {
		return max
	}
	return MAX_CURRENT
}

// DynamicCurrentMax is the lower of the charger type cap and the configured
// maxCurrent setting, never below MIN_CURRENT.
func DynamicCurrentMax(settings, typeInfo Section) int {
	typeMax := ChargerTypeMaxCurrent(typeInfo)
	configured, ok := settings.Int(KEY_MAX_CURRENT)
	if !ok {
		return typeMax
	}
	return max(min(configured, typeMax), MIN_CURRENT)
}

func Clamp(value, lo, hi int) int {
	return max(lo, min(value, hi))
}

// CurrencyISO falls back to EUR for absent or unknown codes.
func CurrencyISO(settings Section) string {
	code, ok := settings.Int(KEY_CURRENCY)
	if !ok {
		return DEFAULT_CURRENCY
	}
	if iso, ok := CURRENCY_MAP[code]; ok {
		return iso
	}
	return DEFAULT_CURRENCY
}

// CurrencyCode matches the ISO string exactly.
func CurrencyCode(iso string) (int, bool) {
	for code, name := range CURRENCY_MAP {
		if name == iso {
			return code, true
		}
	}
	return 0, false
}

func CurrencyOptions() []string {
	codes := make([]int, 0, len(CURRENCY_MAP))
	for code := range CURRENCY_MAP {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	options := make([]string, 0, len(codes))
	for _, code := range codes {
		options = append(options, CURRENCY_MAP[code])
	}
	return options
}
