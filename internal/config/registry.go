package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"openaq-archiver/internal/quality"
)

// Station groups the sensors of one monitoring site, keyed by parameter label.
type Station struct {
	Sensors map[string]int64 `yaml:"sensors"`
}

// SortedLabels returns the station's parameter labels in stable order.
func (station Station) SortedLabels() []string {
	labels := make([]string, 0, len(station.Sensors))
	for label := range station.Sensors {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Registry is the read-only station configuration, loaded once per run.
// The optional bounds section overrides the default plausibility table.
type Registry struct {
	Stations map[string]Station `yaml:"stations"`
	Bounds   map[string]float64 `yaml:"bounds"`
}

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read station registry: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse station registry %s: %w", path, err)
	}

	if len(registry.Stations) == 0 {
		return nil, fmt.Errorf("station registry %s defines no stations", path)
	}

	return &registry, nil
}

func (registry *Registry) Station(name string) (Station, error) {
	station, ok := registry.Stations[name]
	if !ok {
		return Station{}, fmt.Errorf("unknown station %q (known: %v)", name, registry.StationNames())
	}
	return station, nil
}

func (registry *Registry) StationNames() []string {
	names := make([]string, 0, len(registry.Stations))
	for name := range registry.Stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KnownLabels returns every parameter label any station defines.
func (registry *Registry) KnownLabels() []string {
	seen := make(map[string]struct{})
	for _, station := range registry.Stations {
		for label := range station.Sensors {
			seen[label] = struct{}{}
		}
	}

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// PlausibilityBounds merges the registry's bounds section over the defaults.
func (registry *Registry) PlausibilityBounds() quality.Bounds {
	bounds := quality.DefaultBounds()
	for parameter, minimum := range registry.Bounds {
		bounds[parameter] = minimum
	}
	return bounds
}
