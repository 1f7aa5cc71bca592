package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/tadasana/internal/pose"
)

// LoadThresholds reads a thresholds YAML file. Keys missing from the file
// keep their default values.
func LoadThresholds(path string) (pose.Thresholds, error) {
	th := pose.DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("reading thresholds file: %w", err)
	}

	if err := yaml.Unmarshal(data, &th); err != nil {
		return th, fmt.Errorf("parsing thresholds file: %w", err)
	}

	if err := th.Validate(); err != nil {
		return th, fmt.Errorf("invalid thresholds in %s: %w", path, err)
	}

	return th, nil
}

// SaveThresholds writes th to path as YAML.
func SaveThresholds(path string, th pose.Thresholds) error {
	out, err := yaml.Marshal(&th)
	if err != nil {
		return fmt.Errorf("marshaling thresholds: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing thresholds file: %w", err)
	}

	return nil
}
