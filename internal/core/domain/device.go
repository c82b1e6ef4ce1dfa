package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/carlmjohnson/versioninfo"
)

const (
	CHARGER_MANUFACTURER = "EcoVolter"
	CHARGER_MODEL        = "EcoVolter II"
)

// Discovery is the full set of Home Assistant components for one bridge.
type Discovery struct {
	Sensors      []GenericSensor
	Switches     []GenericSwitch
	InputNumbers []GenericInputNumber
	Selects      []GenericSelect
}

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("ecovolter_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "ecovolter2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("EcoVolter bridge %s", md5HashShort(baseTopic)),
	}
}

func ChargerDevice(serial string, typeInfo Section) Device {
	model := CHARGER_MODEL
	if _, ok := typeInfo.Int(KEY_CHARGER_TYPE); ok {
		model = fmt.Sprintf("%s (%dA)", CHARGER_MODEL, ChargerTypeMaxCurrent(typeInfo))
	}
	return Device{
		Id:           fmt.Sprintf("ecovolter_%s", md5HashShort(serial)),
		Manufacturer: CHARGER_MANUFACTURER,
		Model:        model,
		Name:         fmt.Sprintf("EcoVolter (%s)", serial),
		SerialNumber: serial,
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	}}
}

func ChargerStateSensor(chargerDevice Device) GenericSensor {
	return GenericSensor{
		Device:         chargerDevice,
		Id:             SENSOR_ID_CHARGER_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Charger reachable",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(chargerDevice.Id, SENSOR_ID_CHARGER_STATE),
	}
}

// BuildDiscovery maps the point catalog into HA components. Number bounds and
// units are taken from snap, so the result must be rebuilt when they move.
func BuildDiscovery(baseTopic, serial string, points []Point, snap *Snapshot) Discovery {
	var d Discovery

	bridgeDevice := BridgeDevice(baseTopic)
	d.Sensors = append(d.Sensors, BridgeSensors(bridgeDevice)...)

	chargerDevice := ChargerDevice(serial, snap.Section(SECTION_TYPE_INFO))
	chargerDevice.ViaDevice = bridgeDevice.Id
	d.Sensors = append(d.Sensors, ChargerStateSensor(chargerDevice))

	// full device info is sent once, the rest only reference it
	dev := IdDevice(chargerDevice)

	for _, p := range points {
		switch p.Kind {
		case POINT_KIND_SENSOR, POINT_KIND_BINARY_SENSOR:
			sensorType := SENSOR_TYPE_SENSOR
			if p.Kind == POINT_KIND_BINARY_SENSOR {
				sensorType = SENSOR_TYPE_BINARY
			}
			d.Sensors = append(d.Sensors, GenericSensor{
				Device:            dev,
				Id:                p.Id,
				SensorType:        sensorType,
				Name:              p.Name,
				UniqueId:          uniqueId(chargerDevice.Id, p.Id),
				UnitOfMeasurement: p.UnitOf(snap),
				StateClass:        p.StateClass,
				DeviceClass:       p.DeviceClass,
				EntityCategory:    p.EntityCategory,
				Icon:              p.Icon,
			})
		case POINT_KIND_SWITCH:
			d.Switches = append(d.Switches, GenericSwitch{
				Device:         dev,
				Id:             p.Id,
				Name:           p.Name,
				UniqueId:       uniqueId(chargerDevice.Id, p.Id),
				Icon:           p.Icon,
				EntityCategory: p.EntityCategory,
			})
		case POINT_KIND_NUMBER:
			d.InputNumbers = append(d.InputNumbers, GenericInputNumber{
				Device:            dev,
				Id:                p.Id,
				Name:              p.Name,
				UniqueId:          uniqueId(chargerDevice.Id, p.Id),
				Icon:              p.Icon,
				UnitOfMeasurement: p.UnitOf(snap),
				DeviceClass:       p.DeviceClass,
				Min:               p.Min,
				Max:               p.MaxOf(snap),
				Step:              p.Step,
				Mode:              p.Mode,
			})
		case POINT_KIND_SELECT:
			d.Selects = append(d.Selects, GenericSelect{
				Device:         dev,
				Id:             p.Id,
				Name:           p.Name,
				UniqueId:       uniqueId(chargerDevice.Id, p.Id),
				Icon:           p.Icon,
				EntityCategory: p.EntityCategory,
				Options:        p.Options,
			})
		}
	}

	// the first charger component carries the full device
	d.Sensors[1].Device = chargerDevice
	return d
}

// DiscoveryFingerprint changes whenever a snapshot-dependent bound, unit or
// the charger model changes.
func DiscoveryFingerprint(points []Point, snap *Snapshot) string {
	var sb strings.Builder
	sb.WriteString(ChargerDevice("", snap.Section(SECTION_TYPE_INFO)).Model)
	sb.WriteByte(';')
	for _, p := range points {
		if p.MaxFunc == nil && p.UnitFunc == nil {
			continue
		}
		sb.WriteString(p.Id)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(p.MaxOf(snap), 'f', -1, 64))
		sb.WriteByte(' ')
		sb.WriteString(p.UnitOf(snap))
		sb.WriteByte(';')
	}
	return sb.String()
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}
