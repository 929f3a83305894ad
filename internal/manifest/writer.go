package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Write saves a manifest to a YAML file.
func Write(m *Manifest, path string) error {
	if m.Version == "" {
		m.Version = Version
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Read loads a manifest from a YAML file.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("манифест %s: %w", path, err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("манифест %s: нет заданий", path)
	}
	m.path = path
	return &m, nil
}
