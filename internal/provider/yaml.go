package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type providersFile struct {
	Providers []Descriptor `yaml:"providers"`
}

// LoadFile reads additional provider descriptors from a YAML file.
func LoadFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read providers file: %w", err)
	}

	var f providersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse providers file: %w", err)
	}

	return f.Providers, nil
}
