package events

import (
	. "github.com/berfenger/ecovolter2mqtt/internal/core/domain"
)

// SnapshotToUpdateEvents maps every available point into its state event.
// Unavailable points produce nothing; their last state stays on the broker.
func SnapshotToUpdateEvents(points []Point, snap *Snapshot) []SensorUpdateEvent {
	var events []SensorUpdateEvent
	for _, p := range points {
		pv := p.Read(snap)
		if !pv.Available {
			continue
		}
		if ev := PointValueToUpdateEvent(p, pv); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}

func PointValueToUpdateEvent(p Point, pv PointValue) SensorUpdateEvent {
	mixIn := SensorUpdateEventMixIn{
		Id: p.Id,
	}
	switch p.Kind {
	case POINT_KIND_SENSOR:
		v, ok := AsFloat(pv.Value)
		if !ok {
			return nil
		}
		return FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  v,
			Decimals:               p.Decimals,
		}
	case POINT_KIND_BINARY_SENSOR:
		v, ok := pv.Value.(bool)
		if !ok {
			return nil
		}
		return BinarySensorUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  v,
		}
	case POINT_KIND_SWITCH:
		v, ok := pv.Value.(bool)
		if !ok {
			return nil
		}
		return SwitchUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  v,
		}
	case POINT_KIND_NUMBER:
		v, ok := AsFloat(pv.Value)
		if !ok {
			return nil
		}
		return NumberUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  v,
			Decimals:               p.Decimals,
		}
	case POINT_KIND_SELECT:
		v, ok := pv.Value.(string)
		if !ok {
			return nil
		}
		return SelectUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  v,
		}
	}
	return nil
}

func ChargerAvailabilityUpdateEvent(online bool) SensorUpdateEvent {
	return ChargerAvailabilityEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_CHARGER_STATE,
		},
		Online: online,
	}
}
