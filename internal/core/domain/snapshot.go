package domain

import "time"

const (
	SECTION_STATUS      = "status"
	SECTION_SETTINGS    = "settings"
	SECTION_DIAGNOSTICS = "diagnostics"
	SECTION_TYPE_INFO   = "typeInfo"
)

// Section is a decoded device payload. Lookups never panic and report absence
// through the ok result.
type Section map[string]any

// Snapshot is the result of one successful refresh cycle.
type Snapshot struct {
	Status      Section
	Settings    Section
	Diagnostics Section
	TypeInfo    Section
	UpdatedAt   time.Time
}

func (s *Snapshot) Section(name string) Section {
	if s == nil {
		return Section{}
	}
	var sec Section
	switch name {
	case SECTION_STATUS:
		sec = s.Status
	case SECTION_SETTINGS:
		sec = s.Settings
	case SECTION_DIAGNOSTICS:
		sec = s.Diagnostics
	case SECTION_TYPE_INFO:
		sec = s.TypeInfo
	}
	if sec == nil {
		return Section{}
	}
	return sec
}

func (s Section) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (s Section) Float(key string) (float64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return AsFloat(v)
}

func (s Section) Int(key string) (int, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

func (s Section) Bool(key string) (bool, bool) {
	v, ok := s.Get(key)
	if !ok {
		return false, false
	}
	return AsBool(v)
}

func (s Section) String(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Object returns a nested object as a Section, or an empty Section.
func (s Section) Object(key string) Section {
	v, ok := s.Get(key)
	if !ok {
		return Section{}
	}
	return NormalizeSection(v)
}
