package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTimingConfig reads a yaml checkpoint schedule from path, applied over
// the given defaults. Fields absent from the file keep their default values;
// a checkpoints list in the file replaces the default schedule wholesale.
func LoadTimingConfig(path string, defaults TimingConfig) (TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TimingConfig{}, fmt.Errorf("failed to read timing config: %w", err)
	}

	config := defaults.Clone()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return TimingConfig{}, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return TimingConfig{}, fmt.Errorf("invalid timing config %s: %w", path, err)
	}

	return config, nil
}
