package domain

const (
	STATE_CLASS_MEASUREMENT       = "measurement"
	STATE_CLASS_TOTAL_INCREASING  = "total_increasing"
	DEVICE_CLASS_BATTERY_CHARGING = "battery_charging"
	DEVICE_CLASS_CONNECTIVITY     = "connectivity"
	DEVICE_CLASS_CURRENT          = "current"
	DEVICE_CLASS_PLUG             = "plug"
	DEVICE_CLASS_POWER            = "power"
	DEVICE_CLASS_TEMPERATURE      = "temperature"
	ENTITY_CLASS_DIAGNOSTIC       = "diagnostic"
	ENTITY_CLASS_CONFIG           = "config"
	SENSOR_TYPE_SENSOR            = "sensor"
	SENSOR_TYPE_BINARY            = "binary_sensor"
	INPUT_NUMBER_MODE_BOX         = "box"
	INPUT_NUMBER_MODE_SLIDER      = "slider"
	SENSOR_ID_BRIDGE_STATE        = "bridge"
	SENSOR_ID_CHARGER_STATE       = "charger"
)

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
	SerialNumber string
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, total_increasing
	DeviceClass       string // power, temperature, plug, battery_charging
	EntityCategory    string // diagnostic, config, nil
	EnabledByDefault  *bool
	Icon              string
}

type GenericSwitch struct {
	Device         Device
	Id             string
	Name           string
	UniqueId       string
	Icon           string
	EntityCategory string
}

type GenericInputNumber struct {
	Device            Device
	Id                string
	Name              string
	UniqueId          string
	Icon              string
	UnitOfMeasurement string
	DeviceClass       string
	Max               float64
	Min               float64
	Step              float64
	Mode              string
}

type GenericSelect struct {
	Device         Device
	Id             string
	Name           string
	UniqueId       string
	Icon           string
	EntityCategory string
	Options        []string
}
