package synth

// AlarmIndex records the alarm keys emitted for functions, in emission
// order, so composites can be built after every function is compiled.
type AlarmIndex struct {
	// byName maps logical and base alarm names to keys.
	byName map[string][]string
	// emitted holds every recorded key.
	emitted map[string]struct{}
}

// NewAlarmIndex returns an empty index.
func NewAlarmIndex() *AlarmIndex {
	return &AlarmIndex{
		byName:  make(map[string][]string),
		emitted: make(map[string]struct{}),
	}
}

// Record adds key under the instance name and, when it differs, the
// definition base name.
func (x *AlarmIndex) Record(name, base, key string) {
	x.emitted[key] = struct{}{}
	x.byName[name] = append(x.byName[name], key)

	if base != "" && base != name {
		x.byName[base] = append(x.byName[base], key)
	}
}

// Keys returns the keys recorded under name in emission order.
func (x *AlarmIndex) Keys(name string) []string {
	return append([]string(nil), x.byName[name]...)
}

// Has reports whether key was recorded.
func (x *AlarmIndex) Has(key string) bool {
	_, ok := x.emitted[key]

	return ok
}
