package domain

const (
	KEY_ACTUAL_POWER               = "actualPower"
	KEY_IS_CHARGING                = "isCharging"
	KEY_IS_VEHICLE_CONNECTED       = "isVehicleConnected"
	KEY_IS_CHARGING_ENABLE         = "isChargingEnable"
	KEY_IS_THREE_PHASE_MODE_ENABLE = "isThreePhaseModeEnable"
	KEY_TARGET_CURRENT             = "targetCurrent"
	KEY_BOOST_CURRENT              = "boostCurrent"
	KEY_BOOST_TIME                 = "boostTime"
	KEY_KWH_PRICE                  = "kwhPrice"

	BOOST_TIME_MAX_SECONDS = 86340
	KWH_PRICE_MAX          = 999.99
)

func dynamicCurrentMax(snap *Snapshot) float64 {
	return float64(DynamicCurrentMax(snap.Section(SECTION_SETTINGS), snap.Section(SECTION_TYPE_INFO)))
}

func chargerTypeCurrentMax(snap *Snapshot) float64 {
	return float64(ChargerTypeMaxCurrent(snap.Section(SECTION_TYPE_INFO)))
}

func kwhPriceUnit(snap *Snapshot) string {
	return CurrencyISO(snap.Section(SECTION_SETTINGS)) + "/kWh"
}

func temperaturePoint(key, name string) Point {
	return Point{
		Key:            key,
		Name:           name,
		Kind:           POINT_KIND_SENSOR,
		Category:       POINT_CATEGORY_TELEMETRY,
		Section:        SECTION_STATUS,
		Unit:           "°C",
		DeviceClass:    DEVICE_CLASS_TEMPERATURE,
		StateClass:     STATE_CLASS_MEASUREMENT,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		Decimals:       1,
		Decode:         decodeTemperature,
	}
}

func currentPoint(key, name, icon string, maxFunc func(*Snapshot) float64) Point {
	return Point{
		Key:         key,
		Name:        name,
		Kind:        POINT_KIND_NUMBER,
		Category:    POINT_CATEGORY_SETTING,
		Section:     SECTION_SETTINGS,
		Unit:        "A",
		DeviceClass: DEVICE_CLASS_CURRENT,
		Icon:        icon,
		Min:         MIN_CURRENT,
		Max:         MAX_CURRENT,
		MaxFunc:     maxFunc,
		Step:        1,
		Mode:        INPUT_NUMBER_MODE_SLIDER,
		Decode:      decodeFloat(1),
		Encode:      encodeCurrent,
	}
}

func switchPoint(key, name, icon string) Point {
	return Point{
		Key:            key,
		Name:           name,
		Kind:           POINT_KIND_SWITCH,
		Category:       POINT_CATEGORY_SETTING,
		Section:        SECTION_SETTINGS,
		Icon:           icon,
		EntityCategory: ENTITY_CLASS_CONFIG,
		Decode:         decodeBool,
		Encode:         encodeBool,
	}
}

// ChargerPoints is the fixed point catalog. Ids are derived from the device
// keys with CamelToSnake.
func ChargerPoints() []Point {
	points := []Point{
		{
			Key:         KEY_ACTUAL_POWER,
			Name:        "Actual power",
			Kind:        POINT_KIND_SENSOR,
			Category:    POINT_CATEGORY_TELEMETRY,
			Section:     SECTION_STATUS,
			Unit:        "W",
			DeviceClass: DEVICE_CLASS_POWER,
			StateClass:  STATE_CLASS_MEASUREMENT,
			Icon:        "mdi:flash",
			Decimals:    0,
			// kW on the wire
			Decode: decodeFloat(1000),
		},
		temperaturePoint("temperature_internal", "Internal temperature"),
		temperaturePoint("temperature_adapter1", "Adapter 1 temperature"),
		temperaturePoint("temperature_adapter2", "Adapter 2 temperature"),
		temperaturePoint("temperature_adapter3", "Adapter 3 temperature"),
		temperaturePoint("temperature_relay1", "Relay 1 temperature"),
		temperaturePoint("temperature_relay2", "Relay 2 temperature"),
		{
			Key:         KEY_IS_CHARGING,
			Name:        "Charging",
			Kind:        POINT_KIND_BINARY_SENSOR,
			Category:    POINT_CATEGORY_TELEMETRY,
			Section:     SECTION_STATUS,
			DeviceClass: DEVICE_CLASS_BATTERY_CHARGING,
			Icon:        "mdi:battery-charging-60",
			Decode:      decodeBool,
		},
		{
			Key:         KEY_IS_VEHICLE_CONNECTED,
			Name:        "Vehicle connected",
			Kind:        POINT_KIND_BINARY_SENSOR,
			Category:    POINT_CATEGORY_TELEMETRY,
			Section:     SECTION_STATUS,
			DeviceClass: DEVICE_CLASS_PLUG,
			Icon:        "mdi:ev-plug-type2",
			Decode:      decodeBool,
		},
		switchPoint(KEY_IS_CHARGING_ENABLE, "Charging enabled", "mdi:ev-station"),
		switchPoint(KEY_IS_THREE_PHASE_MODE_ENABLE, "Three phase mode", "mdi:numeric-3-circle"),
		currentPoint(KEY_TARGET_CURRENT, "Target current", "mdi:current-ac", dynamicCurrentMax),
		currentPoint(KEY_BOOST_CURRENT, "Boost current", "mdi:lightning-bolt", dynamicCurrentMax),
		currentPoint(KEY_MAX_CURRENT, "Max current", "mdi:lightning-bolt-outline", chargerTypeCurrentMax),
		{
			Key:      KEY_BOOST_TIME,
			Name:     "Boost time",
			Kind:     POINT_KIND_NUMBER,
			Category: POINT_CATEGORY_SETTING,
			Section:  SECTION_SETTINGS,
			Unit:     "s",
			Icon:     "mdi:clock-fast",
			Min:      0,
			Max:      BOOST_TIME_MAX_SECONDS,
			Step:     60,
			Mode:     INPUT_NUMBER_MODE_BOX,
			Decode:   decodeFloat(1),
			Encode:   encodeInt,
		},
		{
			Key:      KEY_KWH_PRICE,
			Name:     "Energy price",
			Kind:     POINT_KIND_NUMBER,
			Category: POINT_CATEGORY_SETTING,
			Section:  SECTION_SETTINGS,
			UnitFunc: kwhPriceUnit,
			Icon:     "mdi:cash-multiple",
			Min:      0,
			Max:      KWH_PRICE_MAX,
			Step:     0.01,
			Decimals: 2,
			Mode:     INPUT_NUMBER_MODE_BOX,
			Decode:   decodeFloat(1),
			Encode:   encodePrice,
		},
		{
			Key:            KEY_CURRENCY,
			Name:           "Currency",
			Kind:           POINT_KIND_SELECT,
			Category:       POINT_CATEGORY_SETTING,
			Section:        SECTION_SETTINGS,
			Icon:           "mdi:cash-multiple",
			EntityCategory: ENTITY_CLASS_CONFIG,
			Options:        CurrencyOptions(),
			Decode:         decodeCurrency,
			Encode:         encodeCurrency,
		},
	}
	for i := range points {
		points[i].Id = CamelToSnake(points[i].Key)
	}
	return points
}
