package domain

// SensorUpdateEvent is a state change of one published entity.
type SensorUpdateEvent interface {
	SensorId() string
	PointKind() PointKind
}

type SensorUpdateEventMixIn struct {
	Id string
}

func (e SensorUpdateEventMixIn) SensorId() string {
	return e.Id
}

type FloatSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals uint
}

func (FloatSensorUpdateEvent) PointKind() PointKind { return POINT_KIND_SENSOR }

type BinarySensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

func (BinarySensorUpdateEvent) PointKind() PointKind { return POINT_KIND_BINARY_SENSOR }

type SwitchUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

func (SwitchUpdateEvent) PointKind() PointKind { return POINT_KIND_SWITCH }

type NumberUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals uint
}

func (NumberUpdateEvent) PointKind() PointKind { return POINT_KIND_NUMBER }

type SelectUpdateEvent struct {
	SensorUpdateEventMixIn
	Value string
}

func (SelectUpdateEvent) PointKind() PointKind { return POINT_KIND_SELECT }

// ChargerAvailabilityEvent follows the outcome of each refresh cycle.
type ChargerAvailabilityEvent struct {
	SensorUpdateEventMixIn
	Online bool
}

func (ChargerAvailabilityEvent) PointKind() PointKind { return POINT_KIND_SENSOR }

// SnapshotUpdatedEvent is published after every successful refresh.
type SnapshotUpdatedEvent struct {
	Snapshot *Snapshot
}
