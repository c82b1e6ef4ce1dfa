package domain

import "math"

type PointKind string

const (
	POINT_KIND_SENSOR        PointKind = "sensor"
	POINT_KIND_BINARY_SENSOR PointKind = "binary_sensor"
	POINT_KIND_SWITCH        PointKind = "switch"
	POINT_KIND_NUMBER        PointKind = "number"
	POINT_KIND_SELECT        PointKind = "select"
)

type PointCategory string

const (
	POINT_CATEGORY_TELEMETRY PointCategory = "telemetry"
	POINT_CATEGORY_SETTING   PointCategory = "setting"
)

type DecodeFunc func(p Point, snap *Snapshot) (any, bool)

// EncodeFunc validates a requested value and returns what is sent to the
// device for Point.Key.
type EncodeFunc func(p Point, snap *Snapshot, value any) (any, error)

// Point describes one projection over a snapshot section. Variants differ by
// Kind and by the Decode/Encode pair.
type Point struct {
	Key            string
	Id             string
	Name           string
	Kind           PointKind
	Category       PointCategory
	Section        string
	Unit           string
	UnitFunc       func(snap *Snapshot) string
	DeviceClass    string
	StateClass     string
	EntityCategory string
	Icon           string
	Min            float64
	Max            float64
	MaxFunc        func(snap *Snapshot) float64
	Step           float64
	Decimals       uint
	Mode           string
	Options        []string
	Decode         DecodeFunc
	Encode         EncodeFunc
}

// PointValue is a point read against one snapshot.
type PointValue struct {
	Id        string    `json:"id"`
	Key       string    `json:"key"`
	Kind      PointKind `json:"kind"`
	Value     any       `json:"value"`
	Available bool      `json:"available"`
	Unit      string    `json:"unit,omitempty"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
	Step      *float64  `json:"step,omitempty"`
	Options   []string  `json:"options,omitempty"`
}

func (p Point) Writable() bool {
	return p.Category == POINT_CATEGORY_SETTING && p.Encode != nil
}

func (p Point) UnitOf(snap *Snapshot) string {
	if p.UnitFunc != nil {
		return p.UnitFunc(snap)
	}
	return p.Unit
}

// MaxOf is recomputed on every call; dynamic bounds depend on live settings.
func (p Point) MaxOf(snap *Snapshot) float64 {
	if p.MaxFunc != nil {
		return p.MaxFunc(snap)
	}
	return p.Max
}

func (p Point) Read(snap *Snapshot) PointValue {
	pv := PointValue{
		Id:      p.Id,
		Key:     p.Key,
		Kind:    p.Kind,
		Unit:    p.UnitOf(snap),
		Options: p.Options,
	}
	if p.Kind == POINT_KIND_NUMBER {
		lo, hi, step := p.Min, p.MaxOf(snap), p.Step
		pv.Min, pv.Max, pv.Step = &lo, &hi, &step
	}
	if snap == nil || p.Decode == nil {
		return pv
	}
	pv.Value, pv.Available = p.Decode(p, snap)
	return pv
}

// decoders

func decodeFloat(scale float64) DecodeFunc {
	return func(p Point, snap *Snapshot) (any, bool) {
		v, ok := snap.Section(p.Section).Float(p.Key)
		if !ok {
			return nil, false
		}
		return v * scale, true
	}
}

func decodeTemperature(p Point, snap *Snapshot) (any, bool) {
	v, ok := Temperature(snap.Section(p.Section), p.Key)
	if !ok {
		return nil, false
	}
	return v, true
}

func decodeBool(p Point, snap *Snapshot) (any, bool) {
	v, ok := snap.Section(p.Section).Bool(p.Key)
	if !ok {
		return nil, false
	}
	return v, true
}

func decodeCurrency(p Point, snap *Snapshot) (any, bool) {
	return CurrencyISO(snap.Section(p.Section)), true
}

// encoders

func encodeBool(p Point, snap *Snapshot, value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, ErrInvalidValue
	}
	return b, nil
}

// encodeCurrent clamps to [Min, MaxOf] and truncates. Clamping happens
// before the int conversion so huge inputs saturate.
func encodeCurrent(p Point, snap *Snapshot, value any) (any, error) {
	f, ok := AsFloat(value)
	if !ok {
		return nil, ErrInvalidValue
	}
	lo, hi := p.Min, math.Max(p.MaxOf(snap), p.Min)
	return Clamp(int(math.Max(lo, math.Min(f, hi))), int(lo), int(hi)), nil
}

func encodePrice(p Point, snap *Snapshot, value any) (any, error) {
	f, ok := AsFloat(value)
	if !ok {
		return nil, ErrInvalidValue
	}
	rounded := math.Round(f*100) / 100
	if rounded < p.Min || rounded > p.MaxOf(snap) {
		return nil, ErrOutOfRange
	}
	return rounded, nil
}

func encodeInt(p Point, snap *Snapshot, value any) (any, error) {
	f, ok := AsFloat(value)
	if !ok {
		return nil, ErrInvalidValue
	}
	f = math.Trunc(f)
	if f < p.Min || f > p.MaxOf(snap) {
		return nil, ErrOutOfRange
	}
	return int(f), nil
}

func encodeCurrency(p Point, snap *Snapshot, value any) (any, error) {
	iso, ok := value.(string)
	if !ok {
		return nil, ErrInvalidValue
	}
	code, ok := CurrencyCode(iso)
	if !ok {
		return nil, ErrUnknownCurrency
	}
	return code, nil
}
