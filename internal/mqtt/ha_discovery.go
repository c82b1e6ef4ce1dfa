package mqtt

import (
	"fmt"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
)

const (
	AVAILABILITY_MODE_ALL = "all"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice         `json:"device"`
	StateTopic        string                    `json:"state_topic"`
	CommandTopic      string                    `json:"command_topic,omitempty"`
	StateClass        string                    `json:"state_class,omitempty"`
	DeviceClass       string                    `json:"device_class,omitempty"`
	UnitOfMeasurement string                    `json:"unit_of_measurement,omitempty"`
	Availability      []HADiscoveryAvailability `json:"availability,omitempty"`
	AvailabilityMode  string                    `json:"availability_mode,omitempty"`
	EntityCategory    string                    `json:"entity_category,omitempty"`
	Name              string                    `json:"name"`
	UniqueId          string                    `json:"unique_id"`
	Platform          string                    `json:"platform"`
	EnabledByDefault  *bool                     `json:"enabled_by_default,omitempty"`
	PayloadOn         string                    `json:"payload_on,omitempty"`
	PayloadOff        string                    `json:"payload_off,omitempty"`
	StateOn           string                    `json:"state_on,omitempty"`
	StateOff          string                    `json:"state_off,omitempty"`
	Icon              string                    `json:"icon,omitempty"`
	Min               *float64                  `json:"min,omitempty"`
	Max               *float64                  `json:"max,omitempty"`
	Step              float64                   `json:"step,omitempty"`
	Mode              string                    `json:"mode,omitempty"`
	Options           []string                  `json:"options,omitempty"`
}

type HADiscoveryAvailability struct {
	Topic string `json:"topic"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
}

func (c *MQTTClient) HADiscoverySensorTopic(sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", c.discoveryTopic(), sensor.SensorType, sensor.Device.Id, sensor.Id)
}

func (c *MQTTClient) HADiscoverySwitchTopic(sensor domain.GenericSwitch) string {
	return fmt.Sprintf("%s/switch/%s/%s/config", c.discoveryTopic(), sensor.Device.Id, sensor.Id)
}

func (c *MQTTClient) HADiscoveryInputNumberTopic(sensor domain.GenericInputNumber) string {
	return fmt.Sprintf("%s/number/%s/%s/config", c.discoveryTopic(), sensor.Device.Id, sensor.Id)
}

func (c *MQTTClient) HADiscoverySelectTopic(sel domain.GenericSelect) string {
	return fmt.Sprintf("%s/select/%s/%s/config", c.discoveryTopic(), sel.Device.Id, sel.Id)
}

// availability requires both the bridge and the charger to be online, except
// for the bridge state sensor itself.
func (c *MQTTClient) availability(bridgeOnly bool) []HADiscoveryAvailability {
	av := []HADiscoveryAvailability{{Topic: c.BridgeStateTopic()}}
	if !bridgeOnly {
		av = append(av, HADiscoveryAvailability{Topic: c.ChargerStateTopic()})
	}
	return av
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	dev := device(sensor.Device)
	var topic string
	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.Id == domain.SENSOR_ID_CHARGER_STATE:
		topic = client.ChargerStateTopic()
	case sensor.SensorType == domain.SENSOR_TYPE_SENSOR:
		topic = client.SensorStateTopic(sensor.Id)
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		topic = client.BinarySensorStateTopic(sensor.Id)
	}
	availabilityOnBridge := sensor.Id == domain.SENSOR_ID_BRIDGE_STATE || sensor.Id == domain.SENSOR_ID_CHARGER_STATE
	disConfig := HADiscoveryConfig{
		Device:            dev,
		StateTopic:        topic,
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		Availability:      client.availability(availabilityOnBridge),
		AvailabilityMode:  AVAILABILITY_MODE_ALL,
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}
	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE, sensor.Id == domain.SENSOR_ID_CHARGER_STATE:
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func GenericSwitchToHADiscoveryMessage(client *MQTTClient, _switch domain.GenericSwitch) HADiscoveryConfig {
	dev := device(_switch.Device)
	topic := client.SwitchStateTopic(_switch.Id)
	cmdTopic := client.SwitchCommandTopic(_switch.Id)
	disConfig := HADiscoveryConfig{
		Device:           dev,
		StateTopic:       topic,
		CommandTopic:     cmdTopic,
		Availability:     client.availability(false),
		AvailabilityMode: AVAILABILITY_MODE_ALL,
		EntityCategory:   _switch.EntityCategory,
		Name:             _switch.Name,
		UniqueId:         _switch.UniqueId,
		Icon:             _switch.Icon,
		Platform:         "mqtt",
		PayloadOn:        MQTT_PAYLOAD_ON,
		PayloadOff:       MQTT_PAYLOAD_OFF,
		StateOn:          MQTT_PAYLOAD_ON,
		StateOff:         MQTT_PAYLOAD_OFF,
	}
	return disConfig
}

func GenericInputNumberToHADiscoveryMessage(client *MQTTClient, inputNumber domain.GenericInputNumber) HADiscoveryConfig {
	dev := device(inputNumber.Device)
	topic := client.InputNumberStateTopic(inputNumber.Id)
	cmdTopic := client.InputNumberCommandTopic(inputNumber.Id)
	lo, hi := inputNumber.Min, inputNumber.Max
	disConfig := HADiscoveryConfig{
		Device:            dev,
		StateTopic:        topic,
		CommandTopic:      cmdTopic,
		Availability:      client.availability(false),
		AvailabilityMode:  AVAILABILITY_MODE_ALL,
		Name:              inputNumber.Name,
		UniqueId:          inputNumber.UniqueId,
		Icon:              inputNumber.Icon,
		Platform:          "mqtt",
		UnitOfMeasurement: inputNumber.UnitOfMeasurement,
		DeviceClass:       inputNumber.DeviceClass,
		Min:               &lo,
		Max:               &hi,
		Step:              inputNumber.Step,
		Mode:              inputNumber.Mode,
	}
	return disConfig
}

func GenericSelectToHADiscoveryMessage(client *MQTTClient, sel domain.GenericSelect) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:           device(sel.Device),
		StateTopic:       client.SelectStateTopic(sel.Id),
		CommandTopic:     client.SelectCommandTopic(sel.Id),
		Availability:     client.availability(false),
		AvailabilityMode: AVAILABILITY_MODE_ALL,
		EntityCategory:   sel.EntityCategory,
		Name:             sel.Name,
		UniqueId:         sel.UniqueId,
		Icon:             sel.Icon,
		Platform:         "mqtt",
		Options:          sel.Options,
	}
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
		SerialNumber: d.SerialNumber,
	}
}
