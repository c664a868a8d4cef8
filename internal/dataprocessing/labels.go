package dataprocessing

import (
	"fmt"

	"fishintel/pkg/contracts/domain"
)

// LabelMap resolves a canonical fish key to its display label.
// It is built once per run and only read afterwards.
type LabelMap struct {
	labels map[string]string
}

// BuildLabelMap takes the first label seen for every key, scanning the
// sources in the given order, so an earlier source wins a collision
func BuildLabelMap(sources ...[]domain.FactRecord) *LabelMap {
	m := &LabelMap{labels: make(map[string]string)}
	for _, rows := range sources {
		for _, r := range rows {
			if _, seen := m.labels[r.FishKey]; !seen {
				m.labels[r.FishKey] = r.FishLabel
			}
		}
	}
	return m
}

// Lookup returns the label of key and whether the key was observed
func (m *LabelMap) Lookup(key string) (string, bool) {
	label, ok := m.labels[key]
	return label, ok
}

// Label returns the label of key. Every key that reaches an output table was
// observed while the map was built; a miss is a programming error and panics.
func (m *LabelMap) Label(key string) string {
	label, ok := m.labels[key]
	if !ok {
		panic(fmt.Sprintf("dataprocessing: no label for fish key %q", key))
	}
	return label
}

// Len returns the number of keys
func (m *LabelMap) Len() int {
	return len(m.labels)
}
